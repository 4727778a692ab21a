package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id snowflake.ID) (*Question, error)
	ListByWedding(ctx context.Context, weddingID snowflake.ID) ([]Question, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *Answer) error
	GetByID(ctx context.Context, id snowflake.ID) (*Answer, error)
	GetByQuestionAuthor(ctx context.Context, questionID, answeredBy snowflake.ID) (*Answer, error)
	ListByQuestion(ctx context.Context, questionID snowflake.ID) ([]Answer, error)
	Update(ctx context.Context, answer *Answer) error
	Delete(ctx context.Context, id snowflake.ID) error
}
