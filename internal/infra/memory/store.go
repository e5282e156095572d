package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-backend/internal/app"
	"quiz-backend/internal/domain"
)

// Store is an in-memory implementation of every repository the services need.
// It backs demo mode (start without a postgres URL) and the unit tests.
type Store struct {
	mu         sync.RWMutex
	clock      func() time.Time
	categories map[uuid.UUID]domain.Category
	questions  map[uuid.UUID]domain.Question
	results    map[uuid.UUID]domain.Result
	users      map[uuid.UUID]domain.User
}

func NewStore() *Store {
	return &Store{
		clock:      time.Now,
		categories: make(map[uuid.UUID]domain.Category),
		questions:  make(map[uuid.UUID]domain.Question),
		results:    make(map[uuid.UUID]domain.Result),
		users:      make(map[uuid.UUID]domain.User),
	}
}

func (s *Store) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return domain.Category{}, app.ErrDuplicateCategory
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = s.clock()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.categories[id]; ok {
		return c, nil
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

func (s *Store) FindByName(_ context.Context, name string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

func (s *Store) FindByNameInsensitive(_ context.Context, name string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

func (s *Store) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if c, ok := s.categories[id]; ok {
			names[id] = c.Name
		}
	}
	return names, nil
}

func (s *Store) List(_ context.Context) ([]domain.CategorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]domain.CategorySummary, 0, len(s.categories))
	for _, c := range s.categories {
		count := 0
		for _, q := range s.questions {
			if q.CategoryID == c.ID {
				count++
			}
		}
		summaries = append(summaries, domain.CategorySummary{
			ID:            c.ID,
			Name:          c.Name,
			TimerMinutes:  c.TimerMinutes,
			QuestionCount: count,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(s.categories, id)
	for qid, q := range s.questions {
		if q.CategoryID == id {
			delete(s.questions, qid)
		}
	}
	return nil
}

func (s *Store) InsertBatch(_ context.Context, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for _, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.CreatedAt = now
		s.questions[q.ID] = q
	}
	return nil
}

func (s *Store) FindByCategory(_ context.Context, categoryID uuid.UUID) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := []domain.Question{}
	for _, q := range s.questions {
		if q.CategoryID == categoryID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		if !questions[i].CreatedAt.Equal(questions[j].CreatedAt) {
			return questions[i].CreatedAt.Before(questions[j].CreatedAt)
		}
		return questions[i].ID.String() < questions[j].ID.String()
	})
	return questions, nil
}

func (s *Store) DeleteByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for qid, q := range s.questions {
		if q.CategoryID == categoryID {
			delete(s.questions, qid)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) CreateResult(ctx context.Context, r domain.Result) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = s.clock()
	s.results[r.ID] = r
	return r, nil
}

func (s *Store) FindResultByID(_ context.Context, id uuid.UUID) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.results[id]; ok {
		return r, nil
	}
	return domain.Result{}, domain.ErrResultNotFound
}

func (s *Store) FindResultsByUser(_ context.Context, userID uuid.UUID) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := []domain.Result{}
	for _, r := range s.results {
		if r.UserID == userID {
			results = append(results, r)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	return results, nil
}

func (s *Store) FindRecentResultsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Result, error) {
	results, err := s.FindResultsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) FindUserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) UpsertUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.users {
		if existing.Email == u.Email {
			u.ID = id
			u.CreatedAt = existing.CreatedAt
			s.users[id] = u
			return u, nil
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = s.clock()
	s.users[u.ID] = u
	return u, nil
}

// Results exposes the store through the result repository contract.
func (s *Store) Results() app.ResultRepository { return resultView{s} }

// Users exposes the store through the user repository contract.
func (s *Store) Users() app.UserRepository { return userView{s} }

type resultView struct{ *Store }

func (v resultView) Create(ctx context.Context, r domain.Result) (domain.Result, error) {
	return v.CreateResult(ctx, r)
}

func (v resultView) FindByID(ctx context.Context, id uuid.UUID) (domain.Result, error) {
	return v.FindResultByID(ctx, id)
}

func (v resultView) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Result, error) {
	return v.FindResultsByUser(ctx, userID)
}

func (v resultView) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Result, error) {
	return v.FindRecentResultsByUser(ctx, userID, limit)
}

type userView struct{ *Store }

func (v userView) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return v.FindUserByID(ctx, id)
}

func (v userView) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return v.FindUserByEmail(ctx, email)
}

func (v userView) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	return v.UpsertUser(ctx, u)
}
