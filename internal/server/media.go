package server

import (
	"net/http"

	mediadomain "github.com/evermore-app/evermore/internal/media/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) UploadMedia(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	defer src.Close()

	item, err := s.mediaSvc.Upload(c.Request.Context(), p, mediadomain.UploadRequest{
		WeddingID:   c.PostForm("weddingId"),
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		SizeBytes:   file.Size,
		Caption:     c.PostForm("caption"),
		Metadata:    []byte(c.PostForm("metadata")),
		Body:        src,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"media": item})
}

func (s *Server) ListMedia(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	items, err := s.mediaSvc.List(c.Request.Context(), p, c.Query("weddingId"), c.Query("filter"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"media": items})
}

func (s *Server) ApproveMedia(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	item, err := s.mediaSvc.Approve(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"media": item})
}

func (s *Server) DeleteMedia(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	if err := s.mediaSvc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
