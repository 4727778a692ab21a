package domain

import (
	"context"
	"errors"

	"github.com/evermore-app/evermore/internal/policy"
)

type Service interface {
	Create(ctx context.Context, actor policy.Principal, req CreateGuestRequest) (*GuestResponse, error)
	List(ctx context.Context, actor policy.Principal, weddingID string) ([]GuestResponse, error)
	UpdateRSVP(ctx context.Context, actor policy.Principal, req UpdateRSVPRequest) (*GuestResponse, error)
	Delete(ctx context.Context, actor policy.Principal, id string) error
}

type CreateGuestRequest struct {
	WeddingID  string
	GuestEmail string
	Name       string
	PlusOnes   int
}

type UpdateRSVPRequest struct {
	ID           string
	RSVPStatus   string
	PlusOnes     *int
	DietaryNotes *string
}

type GuestResponse struct {
	ID           string `json:"id"`
	WeddingID    string `json:"wedding_id"`
	GuestEmail   string `json:"guest_email"`
	Name         string `json:"name,omitempty"`
	RSVPStatus   string `json:"rsvp_status"`
	PlusOnes     int    `json:"plus_ones"`
	DietaryNotes string `json:"dietary_notes,omitempty"`
}

var (
	ErrNotFound       = errors.New("guest_not_found")
	ErrInvalidEmail   = errors.New("invalid_guest_email")
	ErrInvalidStatus  = errors.New("invalid_rsvp_status")
	ErrInvalidRequest = errors.New("invalid_guest_request")
	ErrAlreadyInvited = errors.New("guest_already_invited")
)
