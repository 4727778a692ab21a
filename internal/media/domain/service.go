package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/evermore-app/evermore/internal/policy"
)

const (
	FilterAll      = "all"
	FilterApproved = "approved"
	FilterPending  = "pending"
)

type Service interface {
	// Upload stores the bytes with the media store collaborator and records
	// the metadata row. Uploads by owner or co-admins start approved;
	// guest uploads start pending.
	Upload(ctx context.Context, actor policy.Principal, req UploadRequest) (*MediaResponse, error)
	// List scopes visibility by standing: admins see everything and may
	// filter by status, guests see approved items plus their own pending.
	List(ctx context.Context, actor policy.Principal, weddingID, filter string) ([]MediaResponse, error)
	// Approve is idempotent: approving an approved item succeeds unchanged.
	Approve(ctx context.Context, actor policy.Principal, id string) (*MediaResponse, error)
	Delete(ctx context.Context, actor policy.Principal, id string) error
}

type UploadRequest struct {
	WeddingID   string
	FileName    string
	ContentType string
	SizeBytes   int64
	Caption     string
	// Metadata is an optional client-supplied JSON blob (dimensions, EXIF).
	Metadata []byte
	Body     io.Reader
}

type MediaResponse struct {
	ID          string     `json:"id"`
	WeddingID   string     `json:"wedding_id"`
	UploadedBy  string     `json:"uploaded_by"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	URL         string     `json:"url"`
	Caption     string     `json:"caption,omitempty"`
	Status      string     `json:"status"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

var (
	ErrNotFound        = errors.New("media_not_found")
	ErrTooLarge        = errors.New("media_too_large")
	ErrUnsupportedType = errors.New("unsupported_media_type")
	ErrInvalidFilter   = errors.New("invalid_media_filter")
	ErrInvalidRequest  = errors.New("invalid_media_request")
	ErrPendingQuota    = errors.New("pending_media_quota_reached")
)
