// Package identity turns an opaque session credential into a Principal.
//
// Two credential shapes are accepted: an inline JSON payload carrying the
// principal directly (short-lived dev sessions) and an opaque token exchanged
// against the session store. The shape is decided once by ParseCredential;
// there is no parse-and-fall-through.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/policy"
	"go.uber.org/zap"
)

// ErrUnauthenticated is the single failure mode of the resolver. Malformed
// credentials, failed token exchange and missing user rows all collapse into
// it; callers never learn which.
var ErrUnauthenticated = errors.New("unauthenticated")

// Credential is the tagged union of accepted session credential shapes.
type Credential interface {
	isCredential()
}

// InlineCredential is a self-contained principal payload.
type InlineCredential struct {
	Principal policy.Principal
}

// OpaqueCredential is a token that must be exchanged for a session.
type OpaqueCredential struct {
	Token string
}

func (InlineCredential) isCredential() {}
func (OpaqueCredential) isCredential() {}

type inlinePayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// ParseCredential classifies a raw credential string. A payload starting
// with '{' must be a valid inline principal; anything else is treated as an
// opaque token.
func ParseCredential(raw string) (Credential, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrUnauthenticated
	}

	if !strings.HasPrefix(trimmed, "{") {
		return OpaqueCredential{Token: trimmed}, nil
	}

	var payload inlinePayload
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, ErrUnauthenticated
	}

	id, err := snowflake.ParseString(strings.TrimSpace(payload.ID))
	if err != nil || id == 0 {
		return nil, ErrUnauthenticated
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return nil, ErrUnauthenticated
	}
	role := policy.Role(strings.TrimSpace(payload.Role))
	if !role.Valid() {
		return nil, ErrUnauthenticated
	}

	return InlineCredential{Principal: policy.Principal{
		ID:    id,
		Email: email,
		Name:  strings.TrimSpace(payload.Name),
		Role:  role,
	}}, nil
}

// Resolver resolves request credentials into principals. Read-only: it
// never creates users and never fabricates a role.
type Resolver struct {
	log     *zap.Logger
	authsvc authdomain.Service
}

func NewResolver(log *zap.Logger, authsvc authdomain.Service) *Resolver {
	return &Resolver{
		log:     log.Named("identity.resolver"),
		authsvc: authsvc,
	}
}

// Resolve exchanges a raw credential for a Principal or ErrUnauthenticated.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*policy.Principal, error) {
	cred, err := ParseCredential(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	switch c := cred.(type) {
	case InlineCredential:
		p := c.Principal
		return &p, nil
	case OpaqueCredential:
		return r.resolveOpaque(ctx, c.Token)
	default:
		return nil, ErrUnauthenticated
	}
}

func (r *Resolver) resolveOpaque(ctx context.Context, token string) (*policy.Principal, error) {
	session, err := r.authsvc.Authenticate(ctx, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := r.authsvc.UserByID(ctx, session.UserID)
	if err != nil {
		// session exists but the user row is gone: no default role
		if !errors.Is(err, authdomain.ErrUserNotFound) {
			r.log.Warn("user lookup failed during resolve", zap.Error(err))
		}
		return nil, ErrUnauthenticated
	}

	return &policy.Principal{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  policy.ParseRole(user.Role),
	}, nil
}
