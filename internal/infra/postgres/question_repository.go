package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-backend/internal/domain"
)

// QuestionRepository persists questions in Postgres. Options are stored as a
// JSONB array to keep their order.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// InsertBatch writes the whole batch inside one transaction; any failure rolls
// everything back and is reported as a single error.
func (r *QuestionRepository) InsertBatch(ctx context.Context, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO questions (id, category_id, question_text, options, correct_answer)
			VALUES ($1, $2, $3, $4, $5)`,
			q.ID, q.CategoryID, q.Text, options, q.CorrectAnswer); err != nil {
			return fmt.Errorf("insert question batch: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert batch: %w", err)
	}
	return nil
}

func (r *QuestionRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category_id, question_text, options, correct_answer, created_at
		FROM questions
		WHERE category_id = $1
		ORDER BY created_at, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.CategoryID, &q.Text, &raw, &q.CorrectAnswer, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete questions: %w", err)
	}
	return tag.RowsAffected(), nil
}
