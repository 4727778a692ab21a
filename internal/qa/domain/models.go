// Package domain contains persistence models for the question board.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Question is a prompt the couple asks their guests.
type Question struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	WeddingID snowflake.ID `gorm:"not null;index" json:"wedding_id"`
	CreatedBy snowflake.ID `gorm:"column:created_by;not null" json:"created_by"`
	Prompt    string       `gorm:"type:text;not null" json:"prompt"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Question) TableName() string { return "questions" }

// Answer is one principal's reply. The unique index holds the invariant
// that nobody answers the same question twice.
type Answer struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	QuestionID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_answers_question_author,priority:1" json:"question_id"`
	AnsweredBy snowflake.ID `gorm:"column:answered_by;not null;uniqueIndex:ux_answers_question_author,priority:2" json:"answered_by"`
	Body       string       `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Answer) TableName() string { return "answers" }
