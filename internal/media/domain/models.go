// Package domain contains persistence models for the media service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Media is one uploaded photo or video. The bytes live in the media store;
// this row records metadata and the moderation state, which only ever moves
// pending → approved.
type Media struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	WeddingID   snowflake.ID   `gorm:"not null;index" json:"wedding_id"`
	UploadedBy  snowflake.ID   `gorm:"column:uploaded_by;not null;index" json:"uploaded_by"`
	FileName    string         `gorm:"column:file_name;type:text;not null" json:"file_name"`
	ContentType string         `gorm:"column:content_type;type:text;not null" json:"content_type"`
	SizeBytes   int64          `gorm:"column:size_bytes;not null" json:"size_bytes"`
	StorageKey  string         `gorm:"column:storage_key;type:text;not null;uniqueIndex:ux_media_storage_key" json:"-"`
	URL         string         `gorm:"type:text;not null" json:"url"`
	Caption     string         `gorm:"type:text" json:"caption,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	Status      string         `gorm:"type:text;not null;default:'pending';index" json:"status"`
	ApprovedBy  *snowflake.ID  `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Media) TableName() string { return "media" }
