package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-backend/internal/app"
	"quiz-backend/internal/domain"
)

// CategoryRepository persists categories in Postgres. The unique index on
// name makes find-or-create safe under concurrent first-time uploads.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, timer_minutes)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, timer_minutes, created_at`,
		c.ID, c.Name, c.TimerMinutes)

	created, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, app.ErrDuplicateCategory
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, timer_minutes, created_at FROM categories WHERE id = $1`, id)
	return r.found(row)
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (domain.Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, timer_minutes, created_at FROM categories WHERE name = $1`, name)
	return r.found(row)
}

// FindByNameInsensitive is the user-facing fallback lookup; the input is
// matched against lower-cased stored names.
func (r *CategoryRepository) FindByNameInsensitive(ctx context.Context, name string) (domain.Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, timer_minutes, created_at FROM categories WHERE lower(name) = lower($1)`, name)
	return r.found(row)
}

func (r *CategoryRepository) found(row pgx.Row) (domain.Category, error) {
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name FROM categories WHERE id::text = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("category names: %w", err)
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var (
			id   uuid.UUID
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan category name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.CategorySummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.timer_minutes, COUNT(q.id)
		FROM categories c
		LEFT JOIN questions q ON q.category_id = c.id
		GROUP BY c.id, c.name, c.timer_minutes
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	summaries := []domain.CategorySummary{}
	for rows.Next() {
		var s domain.CategorySummary
		if err := rows.Scan(&s.ID, &s.Name, &s.TimerMinutes, &s.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.TimerMinutes, &c.CreatedAt)
	return c, err
}
