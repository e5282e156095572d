package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"quiz-backend/internal/domain"
)

type countingSource struct {
	QuestionSource
	calls int
}

func (s *countingSource) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Question, error) {
	s.calls++
	return s.QuestionSource.FindByCategory(ctx, categoryID)
}

func seedStore(t *testing.T) (*Store, uuid.UUID) {
	t.Helper()
	store := NewStore()
	category, err := store.Create(context.Background(), domain.Category{Name: "Math", TimerMinutes: 5})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	err = store.InsertBatch(context.Background(), []domain.Question{
		{ID: uuid.New(), CategoryID: category.ID, Text: "Q1", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: "4"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return store, category.ID
}

func TestQuestionCacheCaches(t *testing.T) {
	store, categoryID := seedStore(t)
	source := &countingSource{QuestionSource: store}
	cache := NewQuestionCache(source, time.Minute)

	if _, err := cache.QuestionsByCategory(context.Background(), categoryID); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source once, got %d", source.calls)
	}

	if _, err := cache.QuestionsByCategory(context.Background(), categoryID); err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
}

func TestQuestionCacheInvalidate(t *testing.T) {
	store, categoryID := seedStore(t)
	source := &countingSource{QuestionSource: store}
	cache := NewQuestionCache(source, time.Minute)

	if _, err := cache.QuestionsByCategory(context.Background(), categoryID); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if err := cache.Invalidate(context.Background(), categoryID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if _, err := cache.QuestionsByCategory(context.Background(), categoryID); err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected reload after invalidate, source calls %d", source.calls)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	store, categoryID := seedStore(t)
	source := &countingSource{QuestionSource: store}
	cache := NewQuestionCache(source, time.Millisecond)

	if _, err := cache.QuestionsByCategory(context.Background(), categoryID); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := cache.QuestionsByCategory(context.Background(), categoryID); err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected reload after expiry, source calls %d", source.calls)
	}
}
