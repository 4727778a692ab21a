package domain

import (
	"context"
	"time"

	"github.com/evermore-app/evermore/internal/policy"
)

type Service interface {
	// Create issues a pending invitation and attempts the notification email.
	// A live pending invitation for the same (wedding, email) is a conflict.
	Create(ctx context.Context, actor policy.Principal, req CreateInvitationRequest) (*InvitationResponse, error)
	// Accept redeems an invitation by its public token on behalf of the
	// authenticated user. Accepting an already-accepted invitation is a
	// no-op success; an expired one fails without touching membership.
	Accept(ctx context.Context, actor policy.Principal, token string) (*InvitationResponse, error)
	// AcceptPendingForEmail consumes every live invitation addressed to the
	// user's email. Individual failures are logged and skipped.
	AcceptPendingForEmail(ctx context.Context, actor policy.Principal) int
	// List returns a wedding's invitations, expiring stale rows first.
	List(ctx context.Context, actor policy.Principal, weddingID string) ([]InvitationResponse, error)
}

type CreateInvitationRequest struct {
	WeddingID string
	Email     string
	Role      string
	// TTL overrides the configured invitation lifetime when positive.
	TTL time.Duration
}

type InvitationResponse struct {
	ID          string     `json:"id"`
	WeddingID   string     `json:"wedding_id"`
	Email       string     `json:"email"`
	RoleGranted string     `json:"role_granted"`
	Status      string     `json:"status"`
	Token       string     `json:"token,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}
