package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/policy"
)

type Service interface {
	Create(ctx context.Context, actor policy.Principal, req CreateWeddingRequest) (*WeddingResponse, error)
	GetByID(ctx context.Context, actor policy.Principal, id string) (*WeddingResponse, error)
	List(ctx context.Context, actor policy.Principal, status string) ([]WeddingResponse, error)
	Update(ctx context.Context, actor policy.Principal, id string, req UpdateWeddingRequest) (*WeddingResponse, error)
	Delete(ctx context.Context, actor policy.Principal, id string) error

	// Snapshot exposes the policy view of a wedding to sibling services.
	Snapshot(ctx context.Context, id snowflake.ID) (*policy.Wedding, error)
}

type CreateWeddingRequest struct {
	Name      string
	Venue     string
	EventDate *time.Time
}

type UpdateWeddingRequest struct {
	Name      *string
	Venue     *string
	Status    *string
	EventDate *time.Time
}

// WeddingResponse is the full admin view of a wedding.
type WeddingResponse struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id,omitempty"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Status    string     `json:"status,omitempty"`
	Venue     string     `json:"venue,omitempty"`
	EventDate *time.Time `json:"event_date,omitempty"`
	AdminIDs  []string   `json:"admin_ids,omitempty"`
}

var (
	ErrNotFound      = errors.New("wedding_not_found")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidStatus = errors.New("invalid_status")
)
