package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/media/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, media *domain.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Media, error) {
	var media domain.Media
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&media).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *repository) ListByWedding(ctx context.Context, weddingID snowflake.ID, status string) ([]domain.Media, error) {
	q := r.db.WithContext(ctx).Where("wedding_id = ?", weddingID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var items []domain.Media
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Approve(ctx context.Context, id, approvedBy snowflake.ID) error {
	now := time.Now().UTC()
	// Guarding on status makes concurrent approves converge: the second
	// UPDATE matches zero rows and that is fine.
	return r.db.WithContext(ctx).
		Model(&domain.Media{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":      domain.StatusApproved,
			"approved_by": approvedBy,
			"approved_at": now,
			"updated_at":  now,
		}).Error
}

func (r *repository) CountPendingByUploader(ctx context.Context, weddingID, uploadedBy snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Media{}).
		Where("wedding_id = ? AND uploaded_by = ? AND status = ?", weddingID, uploadedBy, domain.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Media{}).Error
}
