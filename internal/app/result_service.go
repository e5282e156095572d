package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"quiz-backend/internal/domain"
)

const defaultRecentLimit = 2

// ResultService scores submissions against the stored question set and serves
// a user's result history.
type ResultService struct {
	categories CategoryRepository
	questions  QuestionCache
	results    ResultRepository
}

func NewResultService(categories CategoryRepository, questions QuestionCache, results ResultRepository) *ResultService {
	return &ResultService{categories: categories, questions: questions, results: results}
}

// Submit grades the answers against the category's stored questions and
// persists an immutable result. The stored set is authoritative: submitted
// entries for unknown questions are ignored, and stored questions without a
// matching entry count as unanswered.
func (s *ResultService) Submit(ctx context.Context, userID, categoryID uuid.UUID, answers []domain.AnswerSubmission) (domain.Result, error) {
	questions, err := s.questions.QuestionsByCategory(ctx, categoryID)
	if err != nil {
		return domain.Result{}, err
	}

	submitted := make(map[uuid.UUID]string, len(answers))
	for _, a := range answers {
		if _, ok := submitted[a.QuestionID]; !ok {
			submitted[a.QuestionID] = a.Answer
		}
	}

	score := 0
	records := make([]domain.AnswerRecord, 0, len(questions))
	for _, q := range questions {
		record := domain.AnswerRecord{QuestionID: q.ID}
		if answer, ok := submitted[q.ID]; ok {
			record.SelectedAnswer = &answer
			record.IsCorrect = answer == q.CorrectAnswer
		}
		if record.IsCorrect {
			score++
		}
		records = append(records, record)
	}

	return s.results.Create(ctx, domain.Result{
		UserID:     userID,
		CategoryID: categoryID,
		Score:      score,
		Total:      len(questions),
		Answers:    records,
	})
}

// History returns all of a user's results, newest first, with category names
// attached.
func (s *ResultService) History(ctx context.Context, userID uuid.UUID) ([]domain.Result, error) {
	results, err := s.results.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCategoryNames(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// Recent returns the user's latest results as summaries, capped at limit
// (default 2).
func (s *ResultService) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ResultSummary, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	results, err := s.results.FindRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.attachCategoryNames(ctx, results); err != nil {
		return nil, err
	}

	summaries := make([]domain.ResultSummary, len(results))
	for i, r := range results {
		summaries[i] = r.Summary()
	}
	return summaries, nil
}

// ByID returns one result with its full breakdown. Existence is confirmed
// first; a result owned by someone else fails with ErrAccessDenied, not
// ErrResultNotFound.
func (s *ResultService) ByID(ctx context.Context, userID, resultID uuid.UUID) (domain.Result, error) {
	result, err := s.results.FindByID(ctx, resultID)
	if err != nil {
		return domain.Result{}, err
	}
	if result.UserID != userID {
		return domain.Result{}, domain.ErrAccessDenied
	}

	results := []domain.Result{result}
	if err := s.attachCategoryNames(ctx, results); err != nil {
		return domain.Result{}, err
	}
	return results[0], nil
}

// attachCategoryNames resolves category names in one batch. A deleted category
// leaves the name empty rather than failing the read.
func (s *ResultService) attachCategoryNames(ctx context.Context, results []domain.Result) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(results))
	ids := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.CategoryID]; !ok {
			seen[r.CategoryID] = struct{}{}
			ids = append(ids, r.CategoryID)
		}
	}

	names, err := s.categories.NamesByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil
		}
		return err
	}
	for i := range results {
		results[i].CategoryName = names[results[i].CategoryID]
	}
	return nil
}
