package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/config"
	"github.com/evermore-app/evermore/internal/media/domain"
	"github.com/evermore-app/evermore/internal/media/repository"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/providers/mediastore"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	weddingrepo "github.com/evermore-app/evermore/internal/wedding/repository"
	"github.com/evermore-app/evermore/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc     domain.Service
	node    *snowflake.Node
	owner   policy.Principal
	guest   policy.Principal
	wedding weddingdomain.Wedding
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithLimits(t, config.DefaultLimits())
}

func newFixtureWithLimits(t *testing.T, limits config.Limits) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&weddingdomain.Wedding{}, &weddingdomain.WeddingMember{}, &domain.Media{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	weddings := weddingrepo.NewRepository(dbConn)
	owner := policy.Principal{ID: node.Generate(), Email: "owner@example.com", Role: policy.RoleAdmin}
	guest := policy.Principal{ID: node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}

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
		zap.NewNop(),
		repository.NewRepository(dbConn),
		weddings,
		mediastore.NoOpStore{},
		config.StaticLimits(limits),
		node,
	)

	return &fixture{svc: svc, node: node, owner: owner, guest: guest, wedding: wedding}
}

func (f *fixture) upload(t *testing.T, actor policy.Principal, name string) *domain.MediaResponse {
	t.Helper()
	resp, err := f.svc.Upload(context.Background(), actor, domain.UploadRequest{
		WeddingID:   f.wedding.ID.String(),
		FileName:    name,
		ContentType: "image/jpeg",
		SizeBytes:   4,
		Body:        strings.NewReader("jpeg"),
	})
	require.NoError(t, err)
	return resp
}

func TestGuestUploadStartsPending(t *testing.T) {
	f := newFixture(t)

	item := f.upload(t, f.guest, "beach.jpg")
	require.Equal(t, domain.StatusPending, item.Status)
	require.NotEmpty(t, item.URL)
}

func TestOwnerUploadStartsApproved(t *testing.T) {
	f := newFixture(t)

	item := f.upload(t, f.owner, "ceremony.jpg")
	require.Equal(t, domain.StatusApproved, item.Status)
	require.NotNil(t, item.ApprovedAt)
}

func TestUploadRejectsOversizeAndBadType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, f.guest, domain.UploadRequest{
		WeddingID:   f.wedding.ID.String(),
		FileName:    "huge.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   config.DefaultLimits().MaxUploadBytes + 1,
		Body:        strings.NewReader("x"),
	})
	require.ErrorIs(t, err, domain.ErrTooLarge)

	_, err = f.svc.Upload(ctx, f.guest, domain.UploadRequest{
		WeddingID:   f.wedding.ID.String(),
		FileName:    "script.exe",
		ContentType: "application/octet-stream",
		SizeBytes:   4,
		Body:        strings.NewReader("mz90"),
	})
	require.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := f.upload(t, f.guest, "beach.jpg")

	first, err := f.svc.Approve(ctx, f.owner, item.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, first.Status)

	second, err := f.svc.Approve(ctx, f.owner, item.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, second.Status)
	require.Equal(t, first.ApprovedAt, second.ApprovedAt)
}

func TestGuestCannotApprove(t *testing.T) {
	f := newFixture(t)

	item := f.upload(t, f.guest, "beach.jpg")
	_, err := f.svc.Approve(context.Background(), f.guest, item.ID)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestListVisibilityByStanding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upload(t, f.owner, "approved.jpg")
	f.upload(t, f.guest, "mine-pending.jpg")

	dave := policy.Principal{ID: f.node.Generate(), Email: "dave@example.com", Role: policy.RoleGuest}
	f.upload(t, dave, "other-pending.jpg")

	all, err := f.svc.List(ctx, f.owner, f.wedding.ID.String(), domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 3)

	pending, err := f.svc.List(ctx, f.owner, f.wedding.ID.String(), domain.FilterPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	visible, err := f.svc.List(ctx, f.guest, f.wedding.ID.String(), domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	for _, item := range visible {
		if item.Status == domain.StatusPending {
			require.Equal(t, f.guest.ID.String(), item.UploadedBy)
		}
	}

	_, err = f.svc.List(ctx, f.guest, f.wedding.ID.String(), domain.FilterPending)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestGuestDeletesOwnUploadsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own := f.upload(t, f.guest, "mine.jpg")
	theirs := f.upload(t, f.owner, "theirs.jpg")

	require.NoError(t, f.svc.Delete(ctx, f.guest, own.ID))
	require.ErrorIs(t, f.svc.Delete(ctx, f.guest, theirs.ID), policy.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.owner, theirs.ID))
}

func TestGuestPendingBacklogIsCapped(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxPendingPerGuest = 2
	f := newFixtureWithLimits(t, limits)
	ctx := context.Background()

	f.upload(t, f.guest, "one.jpg")
	f.upload(t, f.guest, "two.jpg")

	_, err := f.svc.Upload(ctx, f.guest, domain.UploadRequest{
		WeddingID:   f.wedding.ID.String(),
		FileName:    "three.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   4,
		Body:        strings.NewReader("jpeg"),
	})
	require.ErrorIs(t, err, domain.ErrPendingQuota)

	// Admin uploads land approved, so the cap never applies to them.
	f.upload(t, f.owner, "four.jpg")
}
