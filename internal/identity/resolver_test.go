package identity

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/auth/repository"
	authservice "github.com/evermore-app/evermore/internal/auth/service"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(t *testing.T) (*Resolver, authdomain.Service) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	authsvc := authservice.New(zap.NewNop(), repo, sessionRepo, node)
	return NewResolver(zap.NewNop(), authsvc), authsvc
}

func TestParseCredentialInline(t *testing.T) {
	raw := `{"id":"123456789","email":"Eve@Example.com","name":"Eve","role":"admin"}`

	cred, err := ParseCredential(raw)
	require.NoError(t, err)

	inline, ok := cred.(InlineCredential)
	require.True(t, ok, "expected inline credential")
	assert.Equal(t, "eve@example.com", inline.Principal.Email)
	assert.Equal(t, policy.RoleAdmin, inline.Principal.Role)
}

func TestParseCredentialOpaque(t *testing.T) {
	cred, err := ParseCredential("  some-raw-token  ")
	require.NoError(t, err)

	opaque, ok := cred.(OpaqueCredential)
	require.True(t, ok, "expected opaque credential")
	assert.Equal(t, "some-raw-token", opaque.Token)
}

func TestParseCredentialRejectsMalformedInline(t *testing.T) {
	cases := []string{
		"",
		"{not-json",
		`{"id":"","email":"a@b.com","role":"guest"}`,
		`{"id":"1","email":"","role":"guest"}`,
		`{"id":"1","email":"a@b.com","role":"king"}`,
		`{"id":"1","email":"a@b.com","role":"guest","extra":"field"}`,
	}
	for i, raw := range cases {
		_, err := ParseCredential(raw)
		assert.ErrorIs(t, err, ErrUnauthenticated, "case %d: %q", i, raw)
	}
}

func TestResolveOpaqueToken(t *testing.T) {
	resolver, authsvc := newTestResolver(t)
	ctx := context.Background()

	user, err := authsvc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:    "frank@example.com",
		Password: "strong-password",
		Role:     "super_admin",
	})
	require.NoError(t, err)

	login, err := authsvc.Login(ctx, authdomain.LoginRequest{
		Email:    "frank@example.com",
		Password: "strong-password",
	})
	require.NoError(t, err)

	principal, err := resolver.Resolve(ctx, login.RawToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
	assert.Equal(t, policy.RoleSuperAdmin, principal.Role)
}

func TestResolveRevokedTokenUnauthenticated(t *testing.T) {
	resolver, authsvc := newTestResolver(t)
	ctx := context.Background()

	_, err := authsvc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:    "grace@example.com",
		Password: "strong-password",
	})
	require.NoError(t, err)

	login, err := authsvc.Login(ctx, authdomain.LoginRequest{
		Email:    "grace@example.com",
		Password: "strong-password",
	})
	require.NoError(t, err)
	require.NoError(t, authsvc.Logout(ctx, login.RawToken))

	_, err = resolver.Resolve(ctx, login.RawToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveUnknownTokenUnauthenticated(t *testing.T) {
	resolver, _ := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), "token-nobody-issued")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveInlinePassThrough(t *testing.T) {
	resolver, _ := newTestResolver(t)

	raw := fmt.Sprintf(`{"id":"%d","email":"dev@example.com","name":"Dev","role":"application_admin"}`, 42)
	principal, err := resolver.Resolve(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(42), principal.ID)
	assert.Equal(t, policy.RoleApplicationAdmin, principal.Role)
}
