package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, invitation *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	// GetPending returns the single pending invitation for (wedding, email),
	// expired or not; lazy expiry is the caller's concern.
	GetPending(ctx context.Context, weddingID snowflake.ID, email string) (*Invitation, error)
	ListByWedding(ctx context.Context, weddingID snowflake.ID) ([]Invitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]Invitation, error)
	Update(ctx context.Context, invitation *Invitation) error
	// ExpireStale flips every pending row whose expires_at is before now.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
