package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-backend/internal/domain"
)

// ResultRepository persists scored attempts. The answers breakdown is a JSONB
// document; rows are never updated after insert.
type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func (r *ResultRepository) Create(ctx context.Context, result domain.Result) (domain.Result, error) {
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.Result{}, fmt.Errorf("marshal answers: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO results (id, user_id, category_id, score, total, answers)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		result.ID, result.UserID, result.CategoryID, result.Score, result.Total, answers)
	if err := row.Scan(&result.CreatedAt); err != nil {
		return domain.Result{}, fmt.Errorf("create result: %w", err)
	}
	return result, nil
}

func (r *ResultRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Result, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, category_id, score, total, answers, created_at
		FROM results WHERE id = $1`, id)

	result, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("find result: %w", err)
	}
	return result, nil
}

func (r *ResultRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Result, error) {
	return r.query(ctx, `
		SELECT id, user_id, category_id, score, total, answers, created_at
		FROM results WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
}

func (r *ResultRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Result, error) {
	return r.query(ctx, `
		SELECT id, user_id, category_id, score, total, answers, created_at
		FROM results WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
}

func (r *ResultRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Result, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []domain.Result{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanResult(row pgx.Row) (domain.Result, error) {
	var (
		result domain.Result
		raw    []byte
	)
	if err := row.Scan(&result.ID, &result.UserID, &result.CategoryID, &result.Score, &result.Total, &raw, &result.CreatedAt); err != nil {
		return domain.Result{}, err
	}
	if err := json.Unmarshal(raw, &result.Answers); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return result, nil
}
