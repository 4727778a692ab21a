package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, media *Media) error
	GetByID(ctx context.Context, id snowflake.ID) (*Media, error)
	// ListByWedding returns a wedding's media, newest first, optionally
	// filtered by status.
	ListByWedding(ctx context.Context, weddingID snowflake.ID, status string) ([]Media, error)
	// Approve flips one row to approved if it is still pending. Already
	// approved rows are left untouched and report success.
	Approve(ctx context.Context, id, approvedBy snowflake.ID) error
	// CountPendingByUploader counts one uploader's unapproved items in a
	// wedding.
	CountPendingByUploader(ctx context.Context, weddingID, uploadedBy snowflake.ID) (int64, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
