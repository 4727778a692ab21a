// Package domain contains persistence models for the invitation workflow.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusExpired  = "expired"
)

// Invitation is a pending grant of wedding membership keyed by email. The
// token is the public handle mailed to the invitee; the row itself moves
// pending → accepted or pending → expired and never leaves a terminal state.
type Invitation struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	WeddingID   snowflake.ID `gorm:"not null;index:ix_invitations_wedding_email,priority:1" json:"wedding_id"`
	Email       string       `gorm:"type:text;not null;index:ix_invitations_wedding_email,priority:2" json:"email"`
	RoleGranted string       `gorm:"column:role_granted;type:text;not null" json:"role_granted"`
	Status      string       `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Token       string       `gorm:"type:text;not null;uniqueIndex:ux_invitations_token" json:"-"`
	InvitedBy   snowflake.ID `gorm:"column:invited_by" json:"invited_by"`
	ExpiresAt   time.Time    `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "invitations" }

// Live reports whether the invitation is still pending and unexpired at t.
func (i *Invitation) Live(t time.Time) bool {
	return i.Status == StatusPending && t.Before(i.ExpiresAt)
}
