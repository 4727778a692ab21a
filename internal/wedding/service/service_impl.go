package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/evermore-app/evermore/pkg/db"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("wedding.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, actor policy.Principal, req domain.CreateWeddingRequest) (*domain.WeddingResponse, error) {
	if actor.Role != policy.RoleSuperAdmin && actor.Role != policy.RoleApplicationAdmin {
		return nil, policy.ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	wedding := domain.Wedding{
		ID:        s.genID.Generate(),
		OwnerID:   actor.ID,
		Name:      name,
		Slug:      slug.Make(name),
		Status:    domain.StatusDraft,
		Venue:     strings.TrimSpace(req.Venue),
		EventDate: req.EventDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.Create(ctx, wedding)
	if db.IsDuplicateKeyErr(err) {
		wedding.Slug = wedding.Slug + "-" + wedding.ID.String()
		err = s.repo.Create(ctx, wedding)
	}
	if err != nil {
		return nil, err
	}

	return s.response(ctx, &wedding, policy.TierOwner)
}

func (s *service) GetByID(ctx context.Context, actor policy.Principal, id string) (*domain.WeddingResponse, error) {
	weddingID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	wedding, err := s.repo.GetByID(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.repo.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	return s.response(ctx, wedding, policy.TierOf(actor, *snapshot))
}

func (s *service) List(ctx context.Context, actor policy.Principal, status string) ([]domain.WeddingResponse, error) {
	if status != "" && !validStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	var (
		weddings []domain.Wedding
		err      error
	)
	if actor.Role == policy.RoleApplicationAdmin {
		weddings, err = s.repo.ListAll(ctx, status)
	} else {
		weddings, err = s.repo.ListByUser(ctx, actor.ID, status)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]domain.WeddingResponse, 0, len(weddings))
	for i := range weddings {
		item, err := s.response(ctx, &weddings[i], s.listTier(ctx, actor, &weddings[i]))
		if err != nil {
			return nil, err
		}
		resp = append(resp, *item)
	}
	return resp, nil
}

// listTier decides the response shape per row without a full snapshot load.
// Guest members of a wedding still get the public view.
func (s *service) listTier(ctx context.Context, actor policy.Principal, w *domain.Wedding) policy.Tier {
	switch {
	case w.OwnerID == actor.ID:
		return policy.TierOwner
	case actor.Role == policy.RoleApplicationAdmin:
		return policy.TierCoAdmin
	case actor.Role == policy.RoleAdmin:
		member, err := s.repo.GetMember(ctx, w.ID, actor.ID)
		if err == nil && member.Role == domain.MemberRoleAdmin {
			return policy.TierCoAdmin
		}
	}
	return policy.TierGuest
}

func (s *service) Update(ctx context.Context, actor policy.Principal, id string, req domain.UpdateWeddingRequest) (*domain.WeddingResponse, error) {
	weddingID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	wedding, err := s.repo.GetByID(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.repo.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanWedding(actor, policy.ActionUpdateAny, *snapshot) {
		return nil, policy.ErrForbidden
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		wedding.Name = name
	}
	if req.Venue != nil {
		wedding.Venue = strings.TrimSpace(*req.Venue)
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		wedding.Status = *req.Status
	}
	if req.EventDate != nil {
		wedding.EventDate = req.EventDate
	}
	wedding.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, wedding); err != nil {
		return nil, err
	}

	return s.response(ctx, wedding, policy.TierOf(actor, *snapshot))
}

func (s *service) Delete(ctx context.Context, actor policy.Principal, id string) error {
	weddingID, err := parseID(id)
	if err != nil {
		return domain.ErrNotFound
	}

	snapshot, err := s.repo.Snapshot(ctx, weddingID)
	if err != nil {
		return err
	}
	if !policy.CanWedding(actor, policy.ActionDelete, *snapshot) {
		return policy.ErrForbidden
	}

	return s.repo.Delete(ctx, weddingID)
}

func (s *service) Snapshot(ctx context.Context, id snowflake.ID) (*policy.Wedding, error) {
	return s.repo.Snapshot(ctx, id)
}

// response shapes the wedding for the caller's tier: guests see public
// fields only.
func (s *service) response(ctx context.Context, w *domain.Wedding, tier policy.Tier) (*domain.WeddingResponse, error) {
	resp := &domain.WeddingResponse{
		ID:        w.ID.String(),
		Name:      w.Name,
		Slug:      w.Slug,
		Venue:     w.Venue,
		EventDate: w.EventDate,
	}
	if tier < policy.TierCoAdmin {
		return resp, nil
	}

	resp.OwnerID = w.OwnerID.String()
	resp.Status = w.Status

	members, err := s.repo.ListMembers(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Role == domain.MemberRoleAdmin {
			resp.AdminIDs = append(resp.AdminIDs, m.UserID.String())
		}
	}
	return resp, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func validStatus(status string) bool {
	switch status {
	case domain.StatusDraft, domain.StatusActive, domain.StatusArchived:
		return true
	default:
		return false
	}
}
