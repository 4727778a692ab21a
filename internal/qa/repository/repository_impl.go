package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/qa/domain"
	"gorm.io/gorm"
)

type questionRepository struct {
	db *gorm.DB
}

type answerRepository struct {
	db *gorm.DB
}

func New(db *gorm.DB) (domain.QuestionRepository, domain.AnswerRepository) {
	return &questionRepository{db: db}, &answerRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Question, error) {
	var question domain.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) ListByWedding(ctx context.Context, weddingID snowflake.ID) ([]domain.Question, error) {
	var questions []domain.Question
	err := r.db.WithContext(ctx).
		Where("wedding_id = ?", weddingID).
		Order("created_at ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&domain.Answer{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Question{}).Error
	})
}

func (r *answerRepository) Create(ctx context.Context, answer *domain.Answer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

func (r *answerRepository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Answer, error) {
	var answer domain.Answer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) GetByQuestionAuthor(ctx context.Context, questionID, answeredBy snowflake.ID) (*domain.Answer, error) {
	var answer domain.Answer
	err := r.db.WithContext(ctx).
		Where("question_id = ? AND answered_by = ?", questionID, answeredBy).
		First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) ListByQuestion(ctx context.Context, questionID snowflake.ID) ([]domain.Answer, error) {
	var answers []domain.Answer
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) Update(ctx context.Context, answer *domain.Answer) error {
	return r.db.WithContext(ctx).Save(answer).Error
}

func (r *answerRepository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Answer{}).Error
}
