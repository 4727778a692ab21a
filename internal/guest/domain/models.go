// Package domain contains persistence models for the guest service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RSVPPending      = "pending"
	RSVPAttending    = "attending"
	RSVPNotAttending = "not_attending"
	RSVPMaybe        = "maybe"
)

// GuestRSVP is one invited guest's attendance record for a wedding. The row
// is created by an admin before the guest has an account; GuestUserID is
// linked once the guest accepts their invitation.
type GuestRSVP struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	WeddingID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_guest_wedding_email,priority:1" json:"wedding_id"`
	GuestEmail   string       `gorm:"type:text;not null;uniqueIndex:ux_guest_wedding_email,priority:2" json:"guest_email"`
	GuestUserID  snowflake.ID `gorm:"column:guest_user_id;index" json:"guest_user_id,omitempty"`
	Name         string       `gorm:"type:text" json:"name"`
	RSVPStatus   string       `gorm:"column:rsvp_status;type:text;not null;default:'pending'" json:"rsvp_status"`
	PlusOnes     int          `gorm:"column:plus_ones;not null;default:0" json:"plus_ones"`
	DietaryNotes string       `gorm:"column:dietary_notes;type:text" json:"dietary_notes"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (GuestRSVP) TableName() string { return "guest_rsvps" }

// ValidRSVPStatus reports whether the status is one of the known values.
func ValidRSVPStatus(status string) bool {
	switch status {
	case RSVPPending, RSVPAttending, RSVPNotAttending, RSVPMaybe:
		return true
	default:
		return false
	}
}
