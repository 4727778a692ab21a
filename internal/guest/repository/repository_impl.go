package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/guest/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rsvp *domain.GuestRSVP) error {
	return r.db.WithContext(ctx).Create(rsvp).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.GuestRSVP, error) {
	var rsvp domain.GuestRSVP
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rsvp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *repository) GetByWeddingEmail(ctx context.Context, weddingID snowflake.ID, email string) (*domain.GuestRSVP, error) {
	var rsvp domain.GuestRSVP
	err := r.db.WithContext(ctx).
		Where("wedding_id = ? AND guest_email = ?", weddingID, strings.ToLower(strings.TrimSpace(email))).
		First(&rsvp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *repository) ListByWedding(ctx context.Context, weddingID snowflake.ID) ([]domain.GuestRSVP, error) {
	var rsvps []domain.GuestRSVP
	err := r.db.WithContext(ctx).
		Where("wedding_id = ?", weddingID).
		Order("created_at ASC").
		Find(&rsvps).Error
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *repository) Update(ctx context.Context, rsvp *domain.GuestRSVP) error {
	return r.db.WithContext(ctx).Save(rsvp).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.GuestRSVP{}).Error
}

func (r *repository) LinkUser(ctx context.Context, weddingID snowflake.ID, email string, userID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&domain.GuestRSVP{}).
		Where("wedding_id = ? AND guest_email = ? AND guest_user_id = 0", weddingID, strings.ToLower(strings.TrimSpace(email))).
		Update("guest_user_id", userID).Error
}
