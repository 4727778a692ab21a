package server

import (
	"strings"

	"github.com/evermore-app/evermore/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID     = "X-Request-ID"
	contextPrincipalKey = "principal"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

// AuthRequired resolves the session cookie into a Principal. The cookie
// carries either an opaque session token or an inline credential blob; the
// resolver decides which and fails closed either way.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.resolver.Resolve(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, *principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) (policy.Principal, bool) {
	v, ok := c.Get(contextPrincipalKey)
	if !ok {
		return policy.Principal{}, false
	}
	p, ok := v.(policy.Principal)
	return p, ok
}

// mustPrincipal is for handlers behind AuthRequired; a missing principal
// there is a wiring bug surfaced as 401, not a panic.
func mustPrincipal(c *gin.Context) (policy.Principal, bool) {
	p, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
	}
	return p, ok
}
