package server

import (
	"errors"
	"net/http"

	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

func userResponse(u *authdomain.User) gin.H {
	return gin.H{"user": userPayload{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}}
}

// Signup creates the account, opens a session, and consumes any pending
// invitations addressed to the new user's email.
func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		// Bad email or short password on signup is malformed input, not an
		// authentication failure.
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			err = ErrInvalidRequest
		}
		AbortWithError(c, err)
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	accepted := s.invitationSvc.AcceptPendingForEmail(c.Request.Context(), policy.Principal{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  policy.ParseRole(user.Role),
	})
	if accepted > 0 {
		s.log.Info("invitations consumed on signup",
			zap.String("user_id", user.ID.String()),
			zap.Int("accepted", accepted),
		)
	}

	respond(c, http.StatusCreated, userResponse(user))
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	s.invitationSvc.AcceptPendingForEmail(c.Request.Context(), policy.Principal{
		ID:    result.User.ID,
		Email: result.User.Email,
		Name:  result.User.Name,
		Role:  policy.ParseRole(result.User.Role),
	})

	respond(c, http.StatusOK, userResponse(result.User))
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zap.Error(err))
		}
	}
	s.sessions.Clear(c)
	respond(c, http.StatusOK, nil)
}

func (s *Server) Me(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, gin.H{"user": userPayload{
		ID:    p.ID.String(),
		Email: p.Email,
		Name:  p.Name,
		Role:  string(p.Role),
	}})
}
