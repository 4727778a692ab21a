package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/config"
	guestdomain "github.com/evermore-app/evermore/internal/guest/domain"
	"github.com/evermore-app/evermore/internal/invitation/domain"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/providers/email"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	log      *zap.Logger
	repo     domain.Repository
	weddings weddingdomain.Repository
	guests   guestdomain.Repository
	users    authdomain.Repository
	mailer   email.Provider
	limits   *config.LimitsHolder
	genID    *snowflake.Node
}

func NewService(
	log *zap.Logger,
	repo domain.Repository,
	weddings weddingdomain.Repository,
	guests guestdomain.Repository,
	users authdomain.Repository,
	mailer email.Provider,
	limits *config.LimitsHolder,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:      log.Named("invitation.service"),
		repo:     repo,
		weddings: weddings,
		guests:   guests,
		users:    users,
		mailer:   mailer,
		limits:   limits,
		genID:    genID,
	}
}

func (s *service) Create(ctx context.Context, actor policy.Principal, req domain.CreateInvitationRequest) (*domain.InvitationResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(req.WeddingID))
	if err != nil {
		return nil, weddingdomain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	granted := policy.ParseRole(req.Role)
	if granted != policy.RoleAdmin && granted != policy.RoleGuest {
		return nil, domain.ErrInvalidRole
	}
	if !policy.CanInvite(actor, *snap, granted) {
		return nil, policy.ErrForbidden
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	to := strings.ToLower(addr.Address)

	now := time.Now().UTC()

	// One live pending invitation per (wedding, email). A stale pending row
	// is flipped to expired and replaced rather than blocking the invite.
	existing, err := s.repo.GetPending(ctx, weddingID, to)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Live(now) {
			return nil, domain.ErrConflict
		}
		existing.Status = domain.StatusExpired
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.limits.Get().InviteTTL
	}

	inv := domain.Invitation{
		ID:          s.genID.Generate(),
		WeddingID:   weddingID,
		Email:       to,
		RoleGranted: string(granted),
		Status:      domain.StatusPending,
		Token:       ulid.Make().String(),
		InvitedBy:   actor.ID,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &inv); err != nil {
		return nil, err
	}

	s.notify(ctx, actor, snap.ID, &inv)

	return response(&inv, true), nil
}

// notify sends the invitation email. Email is a notification, not a
// consistency requirement: failure is logged and the invitation stands.
func (s *service) notify(ctx context.Context, actor policy.Principal, weddingID snowflake.ID, inv *domain.Invitation) {
	weddingName := ""
	if w, err := s.weddings.GetByID(ctx, weddingID); err == nil {
		weddingName = w.Name
	}

	templateName := "invite_guest"
	if inv.RoleGranted == string(policy.RoleAdmin) {
		templateName = "invite_admin"
	}

	err := s.mailer.SendTemplate(ctx, []string{inv.Email}, templateName, map[string]any{
		"wedding_name": weddingName,
		"inviter_name": actor.Name,
		"accept_url":   "/invitations/accept?token=" + inv.Token,
		"expires_at":   inv.ExpiresAt.Format(time.RFC1123),
	})
	if err != nil {
		s.log.Warn("invitation email failed",
			zap.String("invitation_id", inv.ID.String()),
			zap.String("email", inv.Email),
			zap.Error(err),
		)
	}
}

func (s *service) Accept(ctx context.Context, actor policy.Principal, token string) (*domain.InvitationResponse, error) {
	inv, err := s.repo.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if err := s.acceptOne(ctx, actor, inv); err != nil {
		return nil, err
	}
	return response(inv, false), nil
}

func (s *service) AcceptPendingForEmail(ctx context.Context, actor policy.Principal) int {
	invs, err := s.repo.ListPendingByEmail(ctx, actor.Email)
	if err != nil {
		s.log.Warn("listing pending invitations failed", zap.String("email", actor.Email), zap.Error(err))
		return 0
	}

	accepted := 0
	for i := range invs {
		if err := s.acceptOne(ctx, actor, &invs[i]); err != nil {
			if !errors.Is(err, domain.ErrExpired) {
				s.log.Warn("auto-accept failed",
					zap.String("invitation_id", invs[i].ID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		accepted++
	}
	return accepted
}

// acceptOne moves one invitation to a terminal state for the actor. Already
// accepted is a no-op success; stale pending rows are expired in place and
// never grant membership.
func (s *service) acceptOne(ctx context.Context, actor policy.Principal, inv *domain.Invitation) error {
	switch inv.Status {
	case domain.StatusAccepted:
		return nil
	case domain.StatusExpired:
		return domain.ErrExpired
	}

	now := time.Now().UTC()
	if now.After(inv.ExpiresAt) {
		inv.Status = domain.StatusExpired
		inv.UpdatedAt = now
		if err := s.repo.Update(ctx, inv); err != nil {
			return err
		}
		return domain.ErrExpired
	}

	if !strings.EqualFold(inv.Email, actor.Email) {
		return policy.ErrForbidden
	}

	memberRole := weddingdomain.MemberRoleGuest
	if inv.RoleGranted == string(policy.RoleAdmin) {
		memberRole = weddingdomain.MemberRoleAdmin
	}

	// Presence check makes double acceptance safe without external locking.
	_, err := s.weddings.GetMember(ctx, inv.WeddingID, actor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.weddings.AddMember(ctx, weddingdomain.WeddingMember{
			ID:        s.genID.Generate(),
			WeddingID: inv.WeddingID,
			UserID:    actor.ID,
			Role:      memberRole,
			CreatedAt: now,
		})
	}
	if err != nil {
		return err
	}

	// A membership row alone confers nothing: co-admin standing requires the
	// admin flat role as well, so an admin grant raises a guest account.
	if memberRole == weddingdomain.MemberRoleAdmin {
		if err := s.promote(ctx, actor.ID); err != nil {
			return err
		}
	}

	if memberRole == weddingdomain.MemberRoleGuest {
		if err := s.guests.LinkUser(ctx, inv.WeddingID, inv.Email, actor.ID); err != nil {
			s.log.Warn("linking guest rsvp failed",
				zap.String("invitation_id", inv.ID.String()),
				zap.Error(err),
			)
		}
	}

	inv.Status = domain.StatusAccepted
	inv.AcceptedAt = &now
	inv.UpdatedAt = now
	return s.repo.Update(ctx, inv)
}

// promote raises a guest account to the admin flat role. Accounts already
// holding admin or a platform role are left untouched, and principals without
// a backing user row (inline dev credentials) are skipped.
func (s *service) promote(ctx context.Context, userID snowflake.ID) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, authdomain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if policy.ParseRole(user.Role) != policy.RoleGuest {
		return nil
	}
	return s.users.UpdateFields(ctx, userID, map[string]any{
		"role":       string(policy.RoleAdmin),
		"updated_at": time.Now().UTC(),
	})
}

func (s *service) List(ctx context.Context, actor policy.Principal, weddingIDRaw string) ([]domain.InvitationResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(weddingIDRaw))
	if err != nil {
		return nil, weddingdomain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if policy.TierOf(actor, *snap) < policy.TierCoAdmin {
		return nil, policy.ErrForbidden
	}

	// Lazy expiry: stale rows flip on read, never on a schedule.
	if _, err := s.repo.ExpireStale(ctx, time.Now().UTC()); err != nil {
		return nil, err
	}

	invs, err := s.repo.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.InvitationResponse, 0, len(invs))
	for i := range invs {
		out = append(out, *response(&invs[i], false))
	}
	return out, nil
}

func response(inv *domain.Invitation, withToken bool) *domain.InvitationResponse {
	resp := &domain.InvitationResponse{
		ID:          inv.ID.String(),
		WeddingID:   inv.WeddingID.String(),
		Email:       inv.Email,
		RoleGranted: inv.RoleGranted,
		Status:      inv.Status,
		ExpiresAt:   inv.ExpiresAt,
		AcceptedAt:  inv.AcceptedAt,
	}
	if withToken {
		resp.Token = inv.Token
	}
	return resp
}
