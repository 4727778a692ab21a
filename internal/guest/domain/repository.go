package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, rsvp *GuestRSVP) error
	GetByID(ctx context.Context, id snowflake.ID) (*GuestRSVP, error)
	GetByWeddingEmail(ctx context.Context, weddingID snowflake.ID, email string) (*GuestRSVP, error)
	ListByWedding(ctx context.Context, weddingID snowflake.ID) ([]GuestRSVP, error)
	Update(ctx context.Context, rsvp *GuestRSVP) error
	Delete(ctx context.Context, id snowflake.ID) error
	LinkUser(ctx context.Context, weddingID snowflake.ID, email string, userID snowflake.ID) error
}
