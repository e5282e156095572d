package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-backend/internal/app"
	"quiz-backend/internal/domain"
	"quiz-backend/internal/infra/memory"
)

type resultFixture struct {
	service   *app.ResultService
	store     *memory.Store
	category  domain.Category
	questions []domain.Question
	userID    uuid.UUID
}

func newResultFixture(t *testing.T) *resultFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	cache := memory.NewQuestionCache(store, time.Minute)

	category, err := store.Create(ctx, domain.Category{Name: "Math", TimerMinutes: 5})
	require.NoError(t, err)

	questions := []domain.Question{
		{ID: uuid.New(), CategoryID: category.ID, Text: "Q1", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: "4"},
		{ID: uuid.New(), CategoryID: category.ID, Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
	}
	require.NoError(t, store.InsertBatch(ctx, questions))

	return &resultFixture{
		service:   app.NewResultService(store, cache, store.Results()),
		store:     store,
		category:  category,
		questions: questions,
		userID:    uuid.New(),
	}
}

func (f *resultFixture) submit(t *testing.T, answers []domain.AnswerSubmission) domain.Result {
	t.Helper()
	result, err := f.service.Submit(context.Background(), f.userID, f.category.ID, answers)
	require.NoError(t, err)
	return result
}

func TestSubmitAllCorrect(t *testing.T) {
	f := newResultFixture(t)

	result := f.submit(t, []domain.AnswerSubmission{
		{QuestionID: f.questions[0].ID, Answer: "4"},
		{QuestionID: f.questions[1].ID, Answer: "b"},
	})

	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 100, result.Percentage())
}

func TestSubmitEmptyAnswerList(t *testing.T) {
	f := newResultFixture(t)

	result := f.submit(t, nil)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Answers, 2)
	for _, record := range result.Answers {
		assert.Nil(t, record.SelectedAnswer)
		assert.False(t, record.IsCorrect)
	}
}

func TestSubmitPartialAndUnanswered(t *testing.T) {
	f := newResultFixture(t)

	result := f.submit(t, []domain.AnswerSubmission{
		{QuestionID: f.questions[0].ID, Answer: "4"},
	})

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 2, result.Total)

	byQuestion := map[uuid.UUID]domain.AnswerRecord{}
	for _, record := range result.Answers {
		byQuestion[record.QuestionID] = record
	}
	answered := byQuestion[f.questions[0].ID]
	require.NotNil(t, answered.SelectedAnswer)
	assert.Equal(t, "4", *answered.SelectedAnswer)
	assert.True(t, answered.IsCorrect)

	unanswered := byQuestion[f.questions[1].ID]
	assert.Nil(t, unanswered.SelectedAnswer)
	assert.False(t, unanswered.IsCorrect)
}

func TestSubmitStoredSetIsAuthoritative(t *testing.T) {
	f := newResultFixture(t)

	// An entry for an unknown question cannot grow the scored set.
	result := f.submit(t, []domain.AnswerSubmission{
		{QuestionID: uuid.New(), Answer: "4"},
	})

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Answers, 2)
}

func TestSubmitMatchIsCaseSensitive(t *testing.T) {
	f := newResultFixture(t)

	result := f.submit(t, []domain.AnswerSubmission{
		{QuestionID: f.questions[1].ID, Answer: "B"},
	})

	assert.Equal(t, 0, result.Score)
}

func TestHistoryNewestFirstWithCategoryNames(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	f.submit(t, nil)
	time.Sleep(2 * time.Millisecond)
	f.submit(t, []domain.AnswerSubmission{{QuestionID: f.questions[0].ID, Answer: "4"}})

	history, err := f.service.History(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, 1, history[0].Score)
	assert.Equal(t, 0, history[1].Score)
	assert.True(t, !history[0].CreatedAt.Before(history[1].CreatedAt))
	for _, r := range history {
		assert.Equal(t, "Math", r.CategoryName)
	}
}

func TestRecentIsPrefixOfHistory(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		f.submit(t, nil)
		time.Sleep(2 * time.Millisecond)
	}

	recent, err := f.service.Recent(ctx, f.userID, 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	history, err := f.service.History(ctx, f.userID)
	require.NoError(t, err)
	for i, summary := range recent {
		assert.Equal(t, history[i].ID, summary.ID)
		assert.Equal(t, history[i].Percentage(), summary.Percentage)
	}
}

func TestByIDEnforcesOwnership(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	result := f.submit(t, nil)

	// The owner reads it fine.
	got, err := f.service.ByID(ctx, f.userID, result.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math", got.CategoryName)

	// Someone else gets access denied, not a 404-style miss.
	_, err = f.service.ByID(ctx, uuid.New(), result.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = f.service.ByID(ctx, f.userID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}

func TestSubmitLeavesQuestionsUntouched(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	f.submit(t, []domain.AnswerSubmission{{QuestionID: f.questions[0].ID, Answer: "4"}})

	stored, err := f.store.FindByCategory(ctx, f.category.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	answers := map[uuid.UUID]string{}
	for _, q := range stored {
		answers[q.ID] = q.CorrectAnswer
	}
	assert.Equal(t, "4", answers[f.questions[0].ID])
	assert.Equal(t, "b", answers[f.questions[1].ID])
}
