package app

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-backend/internal/domain"
)

// QuizService delivers randomized, answer-free question sets to quiz takers.
type QuizService struct {
	categories CategoryRepository
	questions  QuestionCache

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewQuizService builds the delivery service. rnd may be nil, in which case a
// time-seeded source is used; tests inject a fixed seed to pin the order.
func NewQuizService(categories CategoryRepository, questions QuestionCache, rnd *rand.Rand) *QuizService {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuizService{categories: categories, questions: questions, rnd: rnd}
}

// Deliver resolves the category by storage id or by name, strips the correct
// answers, and returns the questions in randomized order with the category
// timer. Order is not reproducible across calls.
func (s *QuizService) Deliver(ctx context.Context, identifier string) (domain.QuizPayload, error) {
	category, err := s.resolve(ctx, identifier)
	if err != nil {
		return domain.QuizPayload{}, err
	}

	questions, err := s.questions.QuestionsByCategory(ctx, category.ID)
	if err != nil {
		return domain.QuizPayload{}, err
	}

	views := make([]domain.QuestionView, len(questions))
	for i, q := range questions {
		views[i] = q.View()
	}
	s.shuffle(views)

	return domain.QuizPayload{Questions: views, TimerMinutes: category.TimerMinutes}, nil
}

// resolve tries the identifier as a storage id first, then as an exact name,
// then as a trimmed lower-cased name.
func (s *QuizService) resolve(ctx context.Context, identifier string) (domain.Category, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.Category{}, domain.ErrCategoryNotFound
	}

	if id, err := uuid.Parse(identifier); err == nil {
		category, err := s.categories.FindByID(ctx, id)
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.Category{}, err
		}
	}

	category, err := s.categories.FindByName(ctx, identifier)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		return domain.Category{}, err
	}

	return s.categories.FindByNameInsensitive(ctx, strings.ToLower(identifier))
}

func (s *QuizService) shuffle(views []domain.QuestionView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(views), func(i, j int) {
		views[i], views[j] = views[j], views[i]
	})
}
