package server

import (
	"errors"
	"net/http"
	"strings"

	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser provisions an account with an explicit role. Signup only ever
// produces guests; owner and platform accounts are created here by an
// application admin.
func (s *Server) CreateUser(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if principal.Role != policy.RoleApplicationAdmin && principal.Role != policy.RoleSuperAdmin {
		AbortWithError(c, policy.ErrForbidden)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	role := policy.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = policy.RoleGuest
	}
	if !role.Valid() {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     string(role),
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			err = ErrInvalidRequest
		}
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, userResponse(user))
}
