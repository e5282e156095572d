package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"quiz-backend/internal/domain"
)

// ErrDuplicateCategory is returned by CategoryRepository.Create when the name
// is already taken. The resolver treats it as "someone else won the race" and
// re-reads instead of failing the upload.
var ErrDuplicateCategory = errors.New("category name already exists")

// CategoryRepository persists categories. Create must rely on a uniqueness
// constraint on the name, not a read-then-write check.
type CategoryRepository interface {
	Create(ctx context.Context, c domain.Category) (domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
	FindByName(ctx context.Context, name string) (domain.Category, error)
	FindByNameInsensitive(ctx context.Context, name string) (domain.Category, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	List(ctx context.Context) ([]domain.CategorySummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionRepository persists questions. InsertBatch attempts the whole batch
// as one operation; a failure is reported as a single outcome.
type QuestionRepository interface {
	InsertBatch(ctx context.Context, questions []domain.Question) error
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Question, error)
	DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// QuestionCache fronts QuestionRepository reads with a TTL cache. Writers must
// call Invalidate after changing a category's question set.
type QuestionCache interface {
	QuestionsByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Question, error)
	Invalidate(ctx context.Context, categoryID uuid.UUID) error
}

// ResultRepository persists scored attempts. Results are append-only.
type ResultRepository interface {
	Create(ctx context.Context, r domain.Result) (domain.Result, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Result, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Result, error)
	FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Result, error)
}

// UserRepository reads users owned by the auth collaborator. Upsert exists
// only for the one-time admin seeding hook.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
}
