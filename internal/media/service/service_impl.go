package service

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/config"
	"github.com/evermore-app/evermore/internal/media/domain"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/providers/mediastore"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	log      *zap.Logger
	repo     domain.Repository
	weddings weddingdomain.Repository
	store    mediastore.Store
	limits   *config.LimitsHolder
	genID    *snowflake.Node
}

func NewService(
	log *zap.Logger,
	repo domain.Repository,
	weddings weddingdomain.Repository,
	store mediastore.Store,
	limits *config.LimitsHolder,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:      log.Named("media.service"),
		repo:     repo,
		weddings: weddings,
		store:    store,
		limits:   limits,
		genID:    genID,
	}
}

func (s *service) Upload(ctx context.Context, actor policy.Principal, req domain.UploadRequest) (*domain.MediaResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(req.WeddingID))
	if err != nil {
		return nil, weddingdomain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMedia(actor, policy.ActionCreateChild, *snap, policy.Media{WeddingID: weddingID}) {
		return nil, policy.ErrForbidden
	}

	limits := s.limits.Get()
	if req.SizeBytes <= 0 || req.Body == nil {
		return nil, domain.ErrInvalidRequest
	}
	if req.SizeBytes > limits.MaxUploadBytes {
		return nil, domain.ErrTooLarge
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !allowedType(contentType, limits.AllowedMediaTypes) {
		return nil, domain.ErrUnsupportedType
	}
	if len(req.Metadata) > 0 && !json.Valid(req.Metadata) {
		return nil, domain.ErrInvalidRequest
	}

	status := domain.StatusPending
	if policy.InitialMediaStatusApproved(actor, *snap) {
		status = domain.StatusApproved
	}

	// Cap a guest's unapproved backlog before accepting any bytes.
	if status == domain.StatusPending {
		pending, err := s.repo.CountPendingByUploader(ctx, weddingID, actor.ID)
		if err != nil {
			return nil, err
		}
		if pending >= int64(limits.MaxPendingPerGuest) {
			return nil, domain.ErrPendingQuota
		}
	}

	key := weddingID.String() + "/" + ulid.Make().String() + strings.ToLower(filepath.Ext(req.FileName))
	url, err := s.store.Upload(ctx, key, contentType, io.LimitReader(req.Body, limits.MaxUploadBytes))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := domain.Media{
		ID:          s.genID.Generate(),
		WeddingID:   weddingID,
		UploadedBy:  actor.ID,
		FileName:    filepath.Base(strings.TrimSpace(req.FileName)),
		ContentType: contentType,
		SizeBytes:   req.SizeBytes,
		StorageKey:  key,
		URL:         url,
		Caption:     strings.TrimSpace(req.Caption),
		Metadata:    datatypes.JSON(req.Metadata),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == domain.StatusApproved {
		item.ApprovedBy = &actor.ID
		item.ApprovedAt = &now
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		// Orphaned bytes are cheaper than a dangling metadata row.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("orphan cleanup failed", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	return response(&item), nil
}

func (s *service) List(ctx context.Context, actor policy.Principal, weddingIDRaw, filter string) ([]domain.MediaResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(weddingIDRaw))
	if err != nil {
		return nil, weddingdomain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMedia(actor, policy.ActionRead, *snap, policy.Media{WeddingID: weddingID}) {
		return nil, policy.ErrForbidden
	}

	if filter == "" {
		filter = domain.FilterAll
	}

	moderator := policy.TierOf(actor, *snap) >= policy.TierCoAdmin
	var status string
	switch filter {
	case domain.FilterAll:
		status = ""
	case domain.FilterApproved:
		status = domain.StatusApproved
	case domain.FilterPending:
		if !moderator {
			return nil, policy.ErrForbidden
		}
		status = domain.StatusPending
	default:
		return nil, domain.ErrInvalidFilter
	}

	items, err := s.repo.ListByWedding(ctx, weddingID, status)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MediaResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		// Guests see approved items plus their own pending uploads.
		if !moderator && item.Status != domain.StatusApproved && item.UploadedBy != actor.ID {
			continue
		}
		out = append(out, *response(item))
	}
	return out, nil
}

func (s *service) Approve(ctx context.Context, actor policy.Principal, idRaw string) (*domain.MediaResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(idRaw))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, err := s.weddings.Snapshot(ctx, item.WeddingID)
	if err != nil {
		return nil, err
	}
	target := policy.Media{WeddingID: item.WeddingID, UploadedBy: item.UploadedBy}
	if !policy.CanMedia(actor, policy.ActionApprove, *snap, target) {
		return nil, policy.ErrForbidden
	}

	if err := s.repo.Approve(ctx, id, actor.ID); err != nil {
		return nil, err
	}

	item, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return response(item), nil
}

func (s *service) Delete(ctx context.Context, actor policy.Principal, idRaw string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(idRaw))
	if err != nil {
		return domain.ErrNotFound
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	snap, err := s.weddings.Snapshot(ctx, item.WeddingID)
	if err != nil {
		return err
	}
	target := policy.Media{WeddingID: item.WeddingID, UploadedBy: item.UploadedBy}
	if !policy.CanMedia(actor, policy.ActionDelete, *snap, target) {
		return policy.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, item.StorageKey); err != nil {
		s.log.Warn("deleting stored bytes failed", zap.String("key", item.StorageKey), zap.Error(err))
	}
	return nil
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if contentType == t {
			return true
		}
	}
	return false
}

func response(m *domain.Media) *domain.MediaResponse {
	return &domain.MediaResponse{
		ID:          m.ID.String(),
		WeddingID:   m.WeddingID.String(),
		UploadedBy:  m.UploadedBy.String(),
		FileName:    m.FileName,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		URL:         m.URL,
		Caption:     m.Caption,
		Status:      m.Status,
		ApprovedAt:  m.ApprovedAt,
		CreatedAt:   m.CreatedAt,
	}
}
