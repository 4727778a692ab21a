package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/evermore-app/evermore/internal/qa/domain"
	"github.com/evermore-app/evermore/internal/qa/repository"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	weddingrepo "github.com/evermore-app/evermore/internal/wedding/repository"
	"github.com/evermore-app/evermore/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc     domain.Service
	node    *snowflake.Node
	owner   policy.Principal
	guest   policy.Principal
	wedding weddingdomain.Wedding
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&weddingdomain.Wedding{}, &weddingdomain.WeddingMember{},
		&domain.Question{}, &domain.Answer{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	weddings := weddingrepo.NewRepository(dbConn)
	owner := policy.Principal{ID: node.Generate(), Email: "owner@example.com", Role: policy.RoleAdmin}
	guest := policy.Principal{ID: node.Generate(), Email: "carol@example.com", Role: policy.RoleGuest}

	wedding := weddingdomain.Wedding{
		ID:        node.Generate(),
		OwnerID:   owner.ID,
		Name:      "Ana & Ben",
		Slug:      "ana-and-ben",
		Status:    weddingdomain.StatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, weddings.Create(context.Background(), wedding))

	questions, answers := repository.New(dbConn)
	svc := NewService(zap.NewNop(), questions, answers, weddings, node)

	return &fixture{svc: svc, node: node, owner: owner, guest: guest, wedding: wedding}
}

func TestGuestCannotCreateQuestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateQuestion(context.Background(), f.guest, domain.CreateQuestionRequest{
		WeddingID: f.wedding.ID.String(),
		Prompt:    "Song requests?",
	})
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestOneAnswerPerPrincipal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	question, err := f.svc.CreateQuestion(ctx, f.owner, domain.CreateQuestionRequest{
		WeddingID: f.wedding.ID.String(),
		Prompt:    "Song requests?",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateAnswer(ctx, f.guest, domain.CreateAnswerRequest{
		QuestionID: question.ID,
		Body:       "Dancing Queen",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateAnswer(ctx, f.guest, domain.CreateAnswerRequest{
		QuestionID: question.ID,
		Body:       "Mr. Brightside",
	})
	require.ErrorIs(t, err, domain.ErrAlreadyAnswered)

	dave := policy.Principal{ID: f.node.Generate(), Email: "dave@example.com", Role: policy.RoleGuest}
	_, err = f.svc.CreateAnswer(ctx, dave, domain.CreateAnswerRequest{
		QuestionID: question.ID,
		Body:       "Mr. Brightside",
	})
	require.NoError(t, err)
}

func TestAuthorKeepsRightsOverOwnAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	question, err := f.svc.CreateQuestion(ctx, f.owner, domain.CreateQuestionRequest{
		WeddingID: f.wedding.ID.String(),
		Prompt:    "Dietary restrictions?",
	})
	require.NoError(t, err)

	answer, err := f.svc.CreateAnswer(ctx, f.guest, domain.CreateAnswerRequest{
		QuestionID: question.ID,
		Body:       "None",
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateAnswer(ctx, f.guest, domain.UpdateAnswerRequest{
		ID:   answer.ID,
		Body: "Vegetarian",
	})
	require.NoError(t, err)
	require.Equal(t, "Vegetarian", updated.Body)

	// The wedding owner is not the author and cannot edit it.
	_, err = f.svc.UpdateAnswer(ctx, f.owner, domain.UpdateAnswerRequest{
		ID:   answer.ID,
		Body: "Overwritten",
	})
	require.ErrorIs(t, err, policy.ErrForbidden)

	require.NoError(t, f.svc.DeleteAnswer(ctx, f.guest, answer.ID))
}

func TestDeleteQuestionCascadesAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	question, err := f.svc.CreateQuestion(ctx, f.owner, domain.CreateQuestionRequest{
		WeddingID: f.wedding.ID.String(),
		Prompt:    "Plus ones?",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateAnswer(ctx, f.guest, domain.CreateAnswerRequest{
		QuestionID: question.ID,
		Body:       "Just me",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteQuestion(ctx, f.owner, question.ID))

	listed, err := f.svc.ListQuestions(ctx, f.owner, f.wedding.ID.String())
	require.NoError(t, err)
	require.Empty(t, listed)
}
