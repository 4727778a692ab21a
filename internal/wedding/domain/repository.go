package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/policy"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wedding Wedding) error
	GetByID(ctx context.Context, id snowflake.ID) (*Wedding, error)
	Update(ctx context.Context, wedding *Wedding) error
	Delete(ctx context.Context, id snowflake.ID) error
	ListByUser(ctx context.Context, userID snowflake.ID, status string) ([]Wedding, error)
	ListAll(ctx context.Context, status string) ([]Wedding, error)

	AddMember(ctx context.Context, member WeddingMember) error
	RemoveMember(ctx context.Context, weddingID, userID snowflake.ID) error
	GetMember(ctx context.Context, weddingID, userID snowflake.ID) (*WeddingMember, error)
	ListMembers(ctx context.Context, weddingID snowflake.ID) ([]WeddingMember, error)

	// Snapshot loads the owner and co-admin set the policy evaluator needs,
	// fresh on every call.
	Snapshot(ctx context.Context, id snowflake.ID) (*policy.Wedding, error)
}
