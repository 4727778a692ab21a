package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/wedding/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wedding domain.Wedding) error {
	return r.db.WithContext(ctx).Create(&wedding).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Wedding, error) {
	var wedding domain.Wedding
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wedding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wedding, nil
}

func (r *repository) Update(ctx context.Context, wedding *domain.Wedding) error {
	return r.db.WithContext(ctx).Save(wedding).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wedding_id = ?", id).Delete(&domain.WeddingMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Wedding{}).Error
	})
}

func (r *repository) ListByUser(ctx context.Context, userID snowflake.ID, status string) ([]domain.Wedding, error) {
	q := r.db.WithContext(ctx).
		Table("weddings").
		Joins("LEFT JOIN wedding_members m ON m.wedding_id = weddings.id AND m.user_id = ?", userID).
		Where("weddings.owner_id = ? OR m.user_id = ?", userID, userID).
		Order("weddings.created_at ASC").
		Distinct("weddings.*")
	if status != "" {
		q = q.Where("weddings.status = ?", status)
	}

	var weddings []domain.Wedding
	if err := q.Find(&weddings).Error; err != nil {
		return nil, err
	}
	return weddings, nil
}

func (r *repository) ListAll(ctx context.Context, status string) ([]domain.Wedding, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var weddings []domain.Wedding
	if err := q.Find(&weddings).Error; err != nil {
		return nil, err
	}
	return weddings, nil
}

func (r *repository) AddMember(ctx context.Context, member domain.WeddingMember) error {
	return r.db.WithContext(ctx).Create(&member).Error
}

func (r *repository) RemoveMember(ctx context.Context, weddingID, userID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("wedding_id = ? AND user_id = ?", weddingID, userID).
		Delete(&domain.WeddingMember{}).Error
}

func (r *repository) GetMember(ctx context.Context, weddingID, userID snowflake.ID) (*domain.WeddingMember, error) {
	var member domain.WeddingMember
	err := r.db.WithContext(ctx).
		Where("wedding_id = ? AND user_id = ?", weddingID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, weddingID snowflake.ID) ([]domain.WeddingMember, error) {
	var members []domain.WeddingMember
	err := r.db.WithContext(ctx).
		Where("wedding_id = ?", weddingID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) Snapshot(ctx context.Context, id snowflake.ID) (*policy.Wedding, error) {
	wedding, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var adminIDs []snowflake.ID
	err = r.db.WithContext(ctx).
		Model(&domain.WeddingMember{}).
		Where("wedding_id = ? AND role = ?", id, domain.MemberRoleAdmin).
		Pluck("user_id", &adminIDs).Error
	if err != nil {
		return nil, err
	}

	return &policy.Wedding{
		ID:       wedding.ID,
		OwnerID:  wedding.OwnerID,
		AdminIDs: adminIDs,
	}, nil
}
