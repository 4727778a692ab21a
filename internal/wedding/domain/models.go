// Package domain contains persistence models for the wedding service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Wedding represents a tenant: one couple's event and its media space.
type Wedding struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID   snowflake.ID `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_weddings_slug" json:"slug"`
	Status    string       `gorm:"type:text;not null;default:'draft'" json:"status"`
	Venue     string       `gorm:"type:text" json:"venue"`
	EventDate *time.Time   `gorm:"column:event_date" json:"event_date"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Wedding) TableName() string { return "weddings" }

const (
	MemberRoleAdmin = "admin"
	MemberRoleGuest = "guest"
)

// WeddingMember represents membership of a user in a wedding: the co-admin
// set and accepted guest memberships.
type WeddingMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	WeddingID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_wedding_user,priority:1" json:"wedding_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_wedding_user,priority:2" json:"user_id"`
	Role      string       `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (WeddingMember) TableName() string { return "wedding_members" }
