package server

import (
	"net/http"

	guestdomain "github.com/evermore-app/evermore/internal/guest/domain"
	invitationdomain "github.com/evermore-app/evermore/internal/invitation/domain"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateGuestRequest struct {
	WeddingID  string `json:"weddingId"`
	GuestEmail string `json:"guestEmail"`
	Name       string `json:"name"`
	PlusOnes   int    `json:"plusOnes"`
	// Invite also issues a guest invitation so the RSVP row gets linked to
	// an account when the guest signs up.
	Invite bool `json:"invite"`
}

type UpdateRSVPRequest struct {
	ID           string  `json:"id"`
	RSVPStatus   string  `json:"rsvpStatus"`
	PlusOnes     *int    `json:"plusOnes"`
	DietaryNotes *string `json:"dietaryNotes"`
}

func (s *Server) CreateGuest(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	guest, err := s.guestSvc.Create(c.Request.Context(), p, guestdomain.CreateGuestRequest{
		WeddingID:  req.WeddingID,
		GuestEmail: req.GuestEmail,
		Name:       req.Name,
		PlusOnes:   req.PlusOnes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Invite {
		_, err := s.invitationSvc.Create(c.Request.Context(), p, invitationdomain.CreateInvitationRequest{
			WeddingID: req.WeddingID,
			Email:     req.GuestEmail,
			Role:      string(policy.RoleGuest),
		})
		if err != nil {
			s.log.Warn("guest invitation alongside rsvp failed",
				zap.String("wedding_id", req.WeddingID),
				zap.Error(err),
			)
		}
	}

	respond(c, http.StatusCreated, gin.H{"guest": guest})
}

func (s *Server) ListGuests(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	guests, err := s.guestSvc.List(c.Request.Context(), p, c.Query("weddingId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"guests": guests})
}

func (s *Server) UpdateRSVP(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req UpdateRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	guest, err := s.guestSvc.UpdateRSVP(c.Request.Context(), p, guestdomain.UpdateRSVPRequest{
		ID:           req.ID,
		RSVPStatus:   req.RSVPStatus,
		PlusOnes:     req.PlusOnes,
		DietaryNotes: req.DietaryNotes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"guest": guest})
}

func (s *Server) DeleteGuest(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	if err := s.guestSvc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
