package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/qa/domain"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/evermore-app/evermore/pkg/db"
	"go.uber.org/zap"
)

type service struct {
	log       *zap.Logger
	questions domain.QuestionRepository
	answers   domain.AnswerRepository
	weddings  weddingdomain.Repository
	genID     *snowflake.Node
}

func NewService(
	log *zap.Logger,
	questions domain.QuestionRepository,
	answers domain.AnswerRepository,
	weddings weddingdomain.Repository,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:       log.Named("qa.service"),
		questions: questions,
		answers:   answers,
		weddings:  weddings,
		genID:     genID,
	}
}

func (s *service) CreateQuestion(ctx context.Context, actor policy.Principal, req domain.CreateQuestionRequest) (*domain.QuestionResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(req.WeddingID))
	if err != nil {
		return nil, weddingdomain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanQuestion(actor, policy.ActionCreateChild, *snap) {
		return nil, policy.ErrForbidden
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidPrompt
	}

	now := time.Now().UTC()
	question := domain.Question{
		ID:        s.genID.Generate(),
		WeddingID: weddingID,
		CreatedBy: actor.ID,
		Prompt:    prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.questions.Create(ctx, &question); err != nil {
		return nil, err
	}
	return questionResponse(&question, nil), nil
}

func (s *service) ListQuestions(ctx context.Context, actor policy.Principal, weddingIDRaw string) ([]domain.QuestionResponse, error) {
	weddingID, err := snowflake.ParseString(strings.TrimSpace(weddingIDRaw))
	if err != nil {
		return nil, weddingdomain.ErrNotFound
	}

	snap, err := s.weddings.Snapshot(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanQuestion(actor, policy.ActionRead, *snap) {
		return nil, policy.ErrForbidden
	}

	questions, err := s.questions.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.QuestionResponse, 0, len(questions))
	for i := range questions {
		answers, err := s.answers.ListByQuestion(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *questionResponse(&questions[i], answers))
	}
	return out, nil
}

func (s *service) DeleteQuestion(ctx context.Context, actor policy.Principal, idRaw string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(idRaw))
	if err != nil {
		return domain.ErrQuestionNotFound
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return err
	}

	snap, err := s.weddings.Snapshot(ctx, question.WeddingID)
	if err != nil {
		return err
	}
	if !policy.CanQuestion(actor, policy.ActionDelete, *snap) {
		return policy.ErrForbidden
	}

	return s.questions.Delete(ctx, id)
}

func (s *service) CreateAnswer(ctx context.Context, actor policy.Principal, req domain.CreateAnswerRequest) (*domain.AnswerResponse, error) {
	questionID, err := snowflake.ParseString(strings.TrimSpace(req.QuestionID))
	if err != nil {
		return nil, domain.ErrQuestionNotFound
	}

	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.ErrInvalidBody
	}

	// Pre-check keeps the common duplicate friendly; the unique index
	// catches the race.
	if _, err := s.answers.GetByQuestionAuthor(ctx, questionID, actor.ID); err == nil {
		return nil, domain.ErrAlreadyAnswered
	} else if !errors.Is(err, domain.ErrAnswerNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	answer := domain.Answer{
		ID:         s.genID.Generate(),
		QuestionID: questionID,
		AnsweredBy: actor.ID,
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = s.answers.Create(ctx, &answer)
	if db.IsDuplicateKeyErr(err) {
		return nil, domain.ErrAlreadyAnswered
	}
	if err != nil {
		return nil, err
	}
	return answerResponse(&answer), nil
}

func (s *service) UpdateAnswer(ctx context.Context, actor policy.Principal, req domain.UpdateAnswerRequest) (*domain.AnswerResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrAnswerNotFound
	}

	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAnswer(actor, policy.ActionUpdateOwn, policy.Answer{AnsweredBy: answer.AnsweredBy}) {
		return nil, policy.ErrForbidden
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.ErrInvalidBody
	}

	answer.Body = body
	answer.UpdatedAt = time.Now().UTC()
	if err := s.answers.Update(ctx, answer); err != nil {
		return nil, err
	}
	return answerResponse(answer), nil
}

func (s *service) DeleteAnswer(ctx context.Context, actor policy.Principal, idRaw string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(idRaw))
	if err != nil {
		return domain.ErrAnswerNotFound
	}

	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanAnswer(actor, policy.ActionDelete, policy.Answer{AnsweredBy: answer.AnsweredBy}) {
		return policy.ErrForbidden
	}

	return s.answers.Delete(ctx, id)
}

func questionResponse(q *domain.Question, answers []domain.Answer) *domain.QuestionResponse {
	resp := &domain.QuestionResponse{
		ID:        q.ID.String(),
		WeddingID: q.WeddingID.String(),
		Prompt:    q.Prompt,
		CreatedAt: q.CreatedAt,
	}
	for i := range answers {
		resp.Answers = append(resp.Answers, *answerResponse(&answers[i]))
	}
	return resp
}

func answerResponse(a *domain.Answer) *domain.AnswerResponse {
	return &domain.AnswerResponse{
		ID:         a.ID.String(),
		QuestionID: a.QuestionID.String(),
		AnsweredBy: a.AnsweredBy.String(),
		Body:       a.Body,
		CreatedAt:  a.CreatedAt,
	}
}
