package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	authrepo "github.com/evermore-app/evermore/internal/auth/repository"
	"github.com/evermore-app/evermore/internal/config"
	guestdomain "github.com/evermore-app/evermore/internal/guest/domain"
	guestrepo "github.com/evermore-app/evermore/internal/guest/repository"
	"github.com/evermore-app/evermore/internal/invitation/domain"
	"github.com/evermore-app/evermore/internal/invitation/repository"
	"github.com/evermore-app/evermore/internal/policy"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	weddingrepo "github.com/evermore-app/evermore/internal/wedding/repository"
	"github.com/evermore-app/evermore/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingMailer always errors, to prove sends are best-effort.
type failingMailer struct{ calls int }

func (m *failingMailer) Send(ctx context.Context, to []string, subject, body string) error {
	m.calls++
	return errors.New("smtp down")
}

func (m *failingMailer) SendTemplate(ctx context.Context, to []string, name string, data map[string]any) error {
	m.calls++
	return errors.New("smtp down")
}

type fixture struct {
	svc      domain.Service
	repo     domain.Repository
	weddings weddingdomain.Repository
	guests   guestdomain.Repository
	users    authdomain.Repository
	mailer   *failingMailer
	node     *snowflake.Node
	owner    policy.Principal
	wedding  weddingdomain.Wedding
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&weddingdomain.Wedding{}, &weddingdomain.WeddingMember{},
		&domain.Invitation{}, &guestdomain.GuestRSVP{},
		&authdomain.User{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	weddings := weddingrepo.NewRepository(dbConn)
	guests := guestrepo.NewRepository(dbConn)
	users, _ := authrepo.New(dbConn)
	repo := repository.NewRepository(dbConn)
	mailer := &failingMailer{}

	owner := policy.Principal{ID: node.Generate(), Email: "owner@example.com", Role: policy.RoleAdmin}
	wedding := weddingdomain.Wedding{
		ID:        node.Generate(),
		OwnerID:   owner.ID,
		Name:      "Ana & Ben",
		Slug:      "ana-and-ben",
		Status:    weddingdomain.StatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, weddings.Create(context.Background(), wedding))

	svc := NewService(
		zap.NewNop(), repo, weddings, guests, users, mailer,
		config.StaticLimits(config.DefaultLimits()), node,
	)

	return &fixture{
		svc: svc, repo: repo, weddings: weddings, guests: guests, users: users,
		mailer: mailer, node: node, owner: owner, wedding: wedding,
	}
}

// seedUser inserts a backing user row for a principal.
func (f *fixture) seedUser(t *testing.T, p policy.Principal) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &authdomain.User{
		ID:         p.ID,
		ExternalID: p.ID.String(),
		Email:      p.Email,
		Name:       p.Name,
		Role:       string(p.Role),
	}))
}

func TestCreateSurvivesEmailFailure(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(context.Background(), f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "Carol@Example.com",
		Role:      "guest",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, inv.Status)
	require.Equal(t, "carol@example.com", inv.Email)
	require.NotEmpty(t, inv.Token)
	require.Equal(t, 1, f.mailer.calls)
}

func TestCreateConflictOnLivePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "guest",
	}
	_, err := f.svc.Create(ctx, f.owner, req)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.owner, req)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateReplacesStalePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "guest",
		TTL:       time.Nanosecond,
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	second, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "guest",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	stale, err := f.repo.GetByToken(ctx, first.Token)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, stale.Status)
}

func TestCoAdminCannotInviteAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	coAdmin := policy.Principal{ID: f.node.Generate(), Email: "co@example.com", Role: policy.RoleAdmin}
	require.NoError(t, f.weddings.AddMember(ctx, weddingdomain.WeddingMember{
		ID:        f.node.Generate(),
		WeddingID: f.wedding.ID,
		UserID:    coAdmin.ID,
		Role:      weddingdomain.MemberRoleAdmin,
		CreatedAt: time.Now().UTC(),
	}))

	_, err := f.svc.Create(ctx, coAdmin, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "another@example.com",
		Role:      "admin",
	})
	require.ErrorIs(t, err, policy.ErrForbidden)

	_, err = f.svc.Create(ctx, coAdmin, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "another@example.com",
		Role:      "guest",
	})
	require.NoError(t, err)
}

func TestAcceptIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "admin",
	})
	require.NoError(t, err)

	carol := policy.Principal{ID: f.node.Generate(), Email: "carol@example.com", Role: policy.RoleAdmin}
	_, err = f.svc.Accept(ctx, carol, inv.Token)
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, carol, inv.Token)
	require.NoError(t, err)

	members, err := f.weddings.ListMembers(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, weddingdomain.MemberRoleAdmin, members[0].Role)

	snap, err := f.weddings.Snapshot(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Equal(t, policy.TierCoAdmin, policy.TierOf(carol, *snap))
}

func TestAcceptExpiredDoesNotMutateMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "guest",
		TTL:       time.Nanosecond,
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	carol := policy.Principal{ID: f.node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}
	_, err = f.svc.Accept(ctx, carol, inv.Token)
	require.ErrorIs(t, err, domain.ErrExpired)

	members, err := f.weddings.ListMembers(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Empty(t, members)

	row, err := f.repo.GetByToken(ctx, inv.Token)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, row.Status)
}

func TestAcceptWrongEmailForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "guest",
	})
	require.NoError(t, err)

	mallory := policy.Principal{ID: f.node.Generate(), Email: "mallory@example.com", Role: policy.RoleGuest}
	_, err = f.svc.Accept(ctx, mallory, inv.Token)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestGuestAcceptLinksRSVPRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.guests.Create(ctx, &guestdomain.GuestRSVP{
		ID:         f.node.Generate(),
		WeddingID:  f.wedding.ID,
		GuestEmail: "carol@example.com",
		RSVPStatus: guestdomain.RSVPPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}))

	inv, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "guest",
	})
	require.NoError(t, err)

	carol := policy.Principal{ID: f.node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}
	_, err = f.svc.Accept(ctx, carol, inv.Token)
	require.NoError(t, err)

	row, err := f.guests.GetByWeddingEmail(ctx, f.wedding.ID, "carol@example.com")
	require.NoError(t, err)
	require.Equal(t, carol.ID, row.GuestUserID)
}

func TestAcceptPendingForEmailConsumesAllLiveInvitations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := weddingdomain.Wedding{
		ID:        f.node.Generate(),
		OwnerID:   f.owner.ID,
		Name:      "Second Wedding",
		Slug:      "second-wedding",
		Status:    weddingdomain.StatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.weddings.Create(ctx, other))

	for _, weddingID := range []string{f.wedding.ID.String(), other.ID.String()} {
		_, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
			WeddingID: weddingID,
			Email:     "carol@example.com",
			Role:      "guest",
		})
		require.NoError(t, err)
	}

	carol := policy.Principal{ID: f.node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}
	accepted := f.svc.AcceptPendingForEmail(ctx, carol)
	require.Equal(t, 2, accepted)

	for _, weddingID := range []snowflake.ID{f.wedding.ID, other.ID} {
		_, err := f.weddings.GetMember(ctx, weddingID, carol.ID)
		require.NoError(t, err, "expected membership on wedding %s", weddingID)
	}
}

func TestListExpiresStaleRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "stale@example.com",
		Role:      "guest",
		TTL:       time.Nanosecond,
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "fresh@example.com",
		Role:      "guest",
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	invs, err := f.svc.List(ctx, f.owner, f.wedding.ID.String())
	require.NoError(t, err)
	require.Len(t, invs, 2)

	byEmail := map[string]string{}
	for _, inv := range invs {
		byEmail[inv.Email] = inv.Status
	}
	require.Equal(t, domain.StatusExpired, byEmail["stale@example.com"])
	require.Equal(t, domain.StatusPending, byEmail["fresh@example.com"])
}

func TestAdminAcceptPromotesGuestAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	carol := policy.Principal{ID: f.node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}
	f.seedUser(t, carol)

	inv, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "admin",
	})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, carol, inv.Token)
	require.NoError(t, err)

	// The membership row alone is not enough: the flat role must be raised
	// or the tier lattice never reaches co-admin.
	user, err := f.users.FindByID(ctx, carol.ID)
	require.NoError(t, err)
	require.Equal(t, string(policy.RoleAdmin), user.Role)

	promoted := policy.Principal{ID: carol.ID, Email: carol.Email, Role: policy.ParseRole(user.Role)}
	snap, err := f.weddings.Snapshot(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Equal(t, policy.TierCoAdmin, policy.TierOf(promoted, *snap))
}

func TestGuestAcceptLeavesFlatRoleAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	carol := policy.Principal{ID: f.node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}
	f.seedUser(t, carol)

	inv, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "carol@example.com",
		Role:      "guest",
	})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, carol, inv.Token)
	require.NoError(t, err)

	user, err := f.users.FindByID(ctx, carol.ID)
	require.NoError(t, err)
	require.Equal(t, string(policy.RoleGuest), user.Role)
}

func TestAdminAcceptNeverDemotesPlatformRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mod := policy.Principal{ID: f.node.Generate(), Email: "mod@example.com", Role: policy.RoleApplicationAdmin}
	f.seedUser(t, mod)

	inv, err := f.svc.Create(ctx, f.owner, domain.CreateInvitationRequest{
		WeddingID: f.wedding.ID.String(),
		Email:     "mod@example.com",
		Role:      "admin",
	})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, mod, inv.Token)
	require.NoError(t, err)

	user, err := f.users.FindByID(ctx, mod.ID)
	require.NoError(t, err)
	require.Equal(t, string(policy.RoleApplicationAdmin), user.Role)
}
