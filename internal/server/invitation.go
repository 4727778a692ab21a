package server

import (
	"net/http"

	invitationdomain "github.com/evermore-app/evermore/internal/invitation/domain"
	"github.com/gin-gonic/gin"
)

type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

func (s *Server) CreateInvitation(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	inv, err := s.invitationSvc.Create(c.Request.Context(), p, invitationdomain.CreateInvitationRequest{
		WeddingID: c.Param("id"),
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"invitation": inv})
}

func (s *Server) ListInvitations(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	invs, err := s.invitationSvc.List(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"invitations": invs})
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	inv, err := s.invitationSvc.Accept(c.Request.Context(), p, req.Token)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"invitation": inv})
}
