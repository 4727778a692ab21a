package server

import (
	"net/http"

	qadomain "github.com/evermore-app/evermore/internal/qa/domain"
	"github.com/gin-gonic/gin"
)

type CreateQuestionRequest struct {
	WeddingID string `json:"weddingId"`
	Prompt    string `json:"prompt"`
}

type CreateAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Body       string `json:"body"`
}

type UpdateAnswerRequest struct {
	Body string `json:"body"`
}

func (s *Server) CreateQuestion(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	question, err := s.qaSvc.CreateQuestion(c.Request.Context(), p, qadomain.CreateQuestionRequest{
		WeddingID: req.WeddingID,
		Prompt:    req.Prompt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"question": question})
}

func (s *Server) ListQuestions(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	questions, err := s.qaSvc.ListQuestions(c.Request.Context(), p, c.Query("weddingId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) DeleteQuestion(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	if err := s.qaSvc.DeleteQuestion(c.Request.Context(), p, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (s *Server) CreateAnswer(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	answer, err := s.qaSvc.CreateAnswer(c.Request.Context(), p, qadomain.CreateAnswerRequest{
		QuestionID: req.QuestionID,
		Body:       req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"answer": answer})
}

func (s *Server) UpdateAnswer(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req UpdateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	answer, err := s.qaSvc.UpdateAnswer(c.Request.Context(), p, qadomain.UpdateAnswerRequest{
		ID:   c.Param("id"),
		Body: req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"answer": answer})
}

func (s *Server) DeleteAnswer(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	if err := s.qaSvc.DeleteAnswer(c.Request.Context(), p, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
