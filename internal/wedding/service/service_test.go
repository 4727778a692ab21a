package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/evermore-app/evermore/internal/wedding/repository"
	"github.com/evermore-app/evermore/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	repo  domain.Repository
	node  *snowflake.Node
	admin policy.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Wedding{}, &domain.WeddingMember{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := repository.NewRepository(dbConn)
	return &fixture{
		svc:   NewService(zap.NewNop(), repo, node),
		repo:  repo,
		node:  node,
		admin: policy.Principal{ID: node.Generate(), Email: "admin@example.com", Role: policy.RoleApplicationAdmin},
	}
}

func TestCreateRequiresPlatformAdmin(t *testing.T) {
	f := newFixture(t)

	regular := policy.Principal{ID: f.node.Generate(), Email: "user@example.com", Role: policy.RoleGuest}
	_, err := f.svc.Create(context.Background(), regular, domain.CreateWeddingRequest{Name: "Ana & Ben"})
	require.ErrorIs(t, err, policy.ErrForbidden)

	wedding, err := f.svc.Create(context.Background(), f.admin, domain.CreateWeddingRequest{Name: "Ana & Ben"})
	require.NoError(t, err)
	require.Equal(t, "ana-ben", wedding.Slug)
	require.Equal(t, domain.StatusDraft, wedding.Status)
}

func TestSlugCollisionGetsIDSuffix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.admin, domain.CreateWeddingRequest{Name: "Ana & Ben"})
	require.NoError(t, err)

	second, err := f.svc.Create(ctx, f.admin, domain.CreateWeddingRequest{Name: "Ana & Ben"})
	require.NoError(t, err)
	require.NotEqual(t, first.Slug, second.Slug)
	require.Contains(t, second.Slug, "ana-ben-")
}

func TestGuestSeesPublicViewOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, domain.CreateWeddingRequest{Name: "Ana & Ben", Venue: "Barn"})
	require.NoError(t, err)

	guest := policy.Principal{ID: f.node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}
	view, err := f.svc.GetByID(ctx, guest, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana & Ben", view.Name)
	require.Empty(t, view.OwnerID)
	require.Empty(t, view.Status)
	require.Empty(t, view.AdminIDs)

	ownerView, err := f.svc.GetByID(ctx, f.admin, created.ID)
	require.NoError(t, err)
	require.Equal(t, f.admin.ID.String(), ownerView.OwnerID)
	require.Equal(t, domain.StatusDraft, ownerView.Status)
}

func TestUpdateForbiddenForNonMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, domain.CreateWeddingRequest{Name: "Ana & Ben"})
	require.NoError(t, err)

	stranger := policy.Principal{ID: f.node.Generate(), Email: "mallory@example.com", Role: policy.RoleGuest}
	name := "Hijacked"
	_, err = f.svc.Update(ctx, stranger, created.ID, domain.UpdateWeddingRequest{Name: &name})
	require.ErrorIs(t, err, policy.ErrForbidden)

	status := domain.StatusActive
	updated, err := f.svc.Update(ctx, f.admin, created.ID, domain.UpdateWeddingRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, updated.Status)
}

func TestOnlyOwnerDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, domain.CreateWeddingRequest{Name: "Ana & Ben"})
	require.NoError(t, err)

	weddingID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	coAdmin := policy.Principal{ID: f.node.Generate(), Email: "co@example.com", Role: policy.RoleAdmin}
	require.NoError(t, f.repo.AddMember(ctx, domain.WeddingMember{
		ID:        f.node.Generate(),
		WeddingID: weddingID,
		UserID:    coAdmin.ID,
		Role:      domain.MemberRoleAdmin,
		CreatedAt: time.Now().UTC(),
	}))

	require.ErrorIs(t, f.svc.Delete(ctx, coAdmin, created.ID), policy.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.admin, created.ID))

	_, err = f.repo.GetMember(ctx, weddingID, coAdmin.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
