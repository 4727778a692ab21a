package domain

import (
	"context"
	"errors"
	"time"

	"github.com/evermore-app/evermore/internal/policy"
)

type Service interface {
	CreateQuestion(ctx context.Context, actor policy.Principal, req CreateQuestionRequest) (*QuestionResponse, error)
	ListQuestions(ctx context.Context, actor policy.Principal, weddingID string) ([]QuestionResponse, error)
	DeleteQuestion(ctx context.Context, actor policy.Principal, id string) error
	// CreateAnswer records the actor's single answer to a question; a
	// second answer by the same principal is a conflict.
	CreateAnswer(ctx context.Context, actor policy.Principal, req CreateAnswerRequest) (*AnswerResponse, error)
	UpdateAnswer(ctx context.Context, actor policy.Principal, req UpdateAnswerRequest) (*AnswerResponse, error)
	DeleteAnswer(ctx context.Context, actor policy.Principal, id string) error
}

type CreateQuestionRequest struct {
	WeddingID string
	Prompt    string
}

type CreateAnswerRequest struct {
	QuestionID string
	Body       string
}

type UpdateAnswerRequest struct {
	ID   string
	Body string
}

type QuestionResponse struct {
	ID        string           `json:"id"`
	WeddingID string           `json:"wedding_id"`
	Prompt    string           `json:"prompt"`
	CreatedAt time.Time        `json:"created_at"`
	Answers   []AnswerResponse `json:"answers,omitempty"`
}

type AnswerResponse struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	AnsweredBy string    `json:"answered_by"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

var (
	ErrQuestionNotFound = errors.New("question_not_found")
	ErrAnswerNotFound   = errors.New("answer_not_found")
	ErrAlreadyAnswered  = errors.New("question_already_answered")
	ErrInvalidPrompt    = errors.New("invalid_question_prompt")
	ErrInvalidBody      = errors.New("invalid_answer_body")
)
