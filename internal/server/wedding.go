package server

import (
	"net/http"
	"time"

	invitationdomain "github.com/evermore-app/evermore/internal/invitation/domain"
	"github.com/evermore-app/evermore/internal/policy"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateWeddingRequest struct {
	Name      string     `json:"name"`
	Venue     string     `json:"venue"`
	EventDate *time.Time `json:"event_date"`
	// AdminEmail, when set, invites the wedding's first co-admin alongside
	// creation.
	AdminEmail string `json:"admin_email"`
}

type UpdateWeddingRequest struct {
	Name      *string    `json:"name"`
	Venue     *string    `json:"venue"`
	Status    *string    `json:"status"`
	EventDate *time.Time `json:"event_date"`
}

func (s *Server) CreateWedding(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req CreateWeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	wedding, err := s.weddingSvc.Create(c.Request.Context(), p, weddingdomain.CreateWeddingRequest{
		Name:      req.Name,
		Venue:     req.Venue,
		EventDate: req.EventDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The admin invitation rides along best-effort: the wedding exists
	// either way and the invite can be reissued.
	if req.AdminEmail != "" {
		_, err := s.invitationSvc.Create(c.Request.Context(), p, invitationdomain.CreateInvitationRequest{
			WeddingID: wedding.ID,
			Email:     req.AdminEmail,
			Role:      string(policy.RoleAdmin),
		})
		if err != nil {
			s.log.Warn("admin invitation on wedding create failed",
				zap.String("wedding_id", wedding.ID),
				zap.Error(err),
			)
		}
	}

	respond(c, http.StatusCreated, gin.H{"wedding": wedding})
}

func (s *Server) ListWeddings(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	weddings, err := s.weddingSvc.List(c.Request.Context(), p, c.Query("status"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"weddings": weddings})
}

func (s *Server) GetWedding(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	wedding, err := s.weddingSvc.GetByID(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"wedding": wedding})
}

func (s *Server) UpdateWedding(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req UpdateWeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	wedding, err := s.weddingSvc.Update(c.Request.Context(), p, c.Param("id"), weddingdomain.UpdateWeddingRequest{
		Name:      req.Name,
		Venue:     req.Venue,
		Status:    req.Status,
		EventDate: req.EventDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"wedding": wedding})
}

func (s *Server) DeleteWedding(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	if err := s.weddingSvc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
