package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/config"
	"github.com/evermore-app/evermore/internal/guest/domain"
	"github.com/evermore-app/evermore/internal/policy"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/evermore-app/evermore/pkg/db"
	"go.uber.org/zap"
)

type service struct {
	log      *zap.Logger
	repo     domain.Repository
	weddings weddingdomain.Repository
	limits   *config.LimitsHolder
	genID    *snowflake.Node
}

func NewService(
	log *zap.Logger,
	repo domain.Repository,
	weddings weddingdomain.Repository,
	limits *config.LimitsHolder,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:      log.Named("guest.service"),
		repo:     repo,
		weddings: weddings,
		limits:   limits,
		genID:    genID,
	}
}

func (s *service) Create(ctx context.Context, actor policy.Principal, req domain.CreateGuestRequest) (*domain.GuestResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(req.WeddingID))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRSVP(actor, policy.ActionCreateChild, *snap, policy.RSVP{WeddingID: weddingID}) {
		return nil, policy.ErrForbidden
	}

	email, err := normalizeEmail(req.GuestEmail)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}

	plusOnes := req.PlusOnes
	if plusOnes < 0 || plusOnes > s.limits.Get().MaxPlusOnes {
		return nil, domain.ErrInvalidRequest
	}

	now := time.Now().UTC()
	rsvp := domain.GuestRSVP{
		ID:         s.genID.Generate(),
		WeddingID:  weddingID,
		GuestEmail: email,
		Name:       strings.TrimSpace(req.Name),
		RSVPStatus: domain.RSVPPending,
		PlusOnes:   plusOnes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.repo.Create(ctx, &rsvp)
	if db.IsDuplicateKeyErr(err) {
		return nil, domain.ErrAlreadyInvited
	}
	if err != nil {
		return nil, err
	}

	return response(&rsvp), nil
}

func (s *service) List(ctx context.Context, actor policy.Principal, weddingIDRaw string) ([]domain.GuestResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(weddingIDRaw))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	rsvps, err := s.repo.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.GuestResponse, 0, len(rsvps))
	for i := range rsvps {
		r := policy.RSVP{
			WeddingID:   rsvps[i].WeddingID,
			GuestUserID: rsvps[i].GuestUserID,
			GuestEmail:  rsvps[i].GuestEmail,
		}
		if !policy.CanRSVP(actor, policy.ActionRead, *snap, r) {
			continue
		}
		out = append(out, *response(&rsvps[i]))
	}
	return out, nil
}

func (s *service) UpdateRSVP(ctx context.Context, actor policy.Principal, req domain.UpdateRSVPRequest) (*domain.GuestResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	rsvp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, err := s.weddings.Snapshot(ctx, rsvp.WeddingID)
	if err != nil {
		return nil, err
	}

	target := policy.RSVP{
		WeddingID:   rsvp.WeddingID,
		GuestUserID: rsvp.GuestUserID,
		GuestEmail:  rsvp.GuestEmail,
	}
	allowed := policy.CanRSVP(actor, policy.ActionUpdateOwn, *snap, target) ||
		policy.CanRSVP(actor, policy.ActionUpdateAny, *snap, target)
	if !allowed {
		return nil, policy.ErrForbidden
	}

	if req.RSVPStatus != "" {
		if !domain.ValidRSVPStatus(req.RSVPStatus) {
			return nil, domain.ErrInvalidStatus
		}
		rsvp.RSVPStatus = req.RSVPStatus
	}
	if req.PlusOnes != nil {
		if *req.PlusOnes < 0 || *req.PlusOnes > s.limits.Get().MaxPlusOnes {
			return nil, domain.ErrInvalidRequest
		}
		rsvp.PlusOnes = *req.PlusOnes
	}
	if req.DietaryNotes != nil {
		rsvp.DietaryNotes = strings.TrimSpace(*req.DietaryNotes)
	}
	rsvp.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, rsvp); err != nil {
		return nil, err
	}
	return response(rsvp), nil
}

func (s *service) Delete(ctx context.Context, actor policy.Principal, idRaw string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(idRaw))
	if err != nil {
		return domain.ErrNotFound
	}

	rsvp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	snap, err := s.weddings.Snapshot(ctx, rsvp.WeddingID)
	if err != nil {
		return err
	}

	target := policy.RSVP{
		WeddingID:   rsvp.WeddingID,
		GuestUserID: rsvp.GuestUserID,
		GuestEmail:  rsvp.GuestEmail,
	}
	if !policy.CanRSVP(actor, policy.ActionDelete, *snap, target) {
		return policy.ErrForbidden
	}

	return s.repo.Delete(ctx, id)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.New("invalid_email")
	}
	return strings.ToLower(addr.Address), nil
}

func response(r *domain.GuestRSVP) *domain.GuestResponse {
	return &domain.GuestResponse{
		ID:           r.ID.String(),
		WeddingID:    r.WeddingID.String(),
		GuestEmail:   r.GuestEmail,
		Name:         r.Name,
		RSVPStatus:   r.RSVPStatus,
		PlusOnes:     r.PlusOnes,
		DietaryNotes: r.DietaryNotes,
	}
}
