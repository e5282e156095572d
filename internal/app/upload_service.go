package app

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quiz-backend/internal/domain"
)

// ManualQuestion is one entry of a manual (non-CSV) upload. CorrectOption is
// an index into Options.
type ManualQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// UploadService covers the admin side: category creation, question ingestion
// (CSV and manual), listing, and cascade deletion.
type UploadService struct {
	categories   CategoryRepository
	questions    QuestionRepository
	cache        QuestionCache
	defaultTimer int
	log          *logrus.Entry
}

func NewUploadService(categories CategoryRepository, questions QuestionRepository, cache QuestionCache, defaultTimer int, log *logrus.Entry) *UploadService {
	if defaultTimer <= 0 {
		defaultTimer = 2
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &UploadService{
		categories:   categories,
		questions:    questions,
		cache:        cache,
		defaultTimer: defaultTimer,
		log:          log,
	}
}

// CreateCategory creates a category explicitly. The name must be unused
// (case-sensitive) and the timer positive.
func (s *UploadService) CreateCategory(ctx context.Context, name string, timerMinutes int) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.Validationf("category name is required")
	}
	if timerMinutes <= 0 {
		return domain.Category{}, domain.Validationf("timer (in minutes) must be a positive integer")
	}

	created, err := s.categories.Create(ctx, domain.Category{Name: name, TimerMinutes: timerMinutes})
	if errors.Is(err, ErrDuplicateCategory) {
		return domain.Category{}, domain.Validationf("category %q already exists", name)
	}
	if err != nil {
		return domain.Category{}, err
	}
	return created, nil
}

// UploadCSV resolves the category, parses the upload, and bulk-inserts every
// valid row. Rejected rows are logged and dropped; they never fail the request
// unless nothing valid remains.
func (s *UploadService) UploadCSV(ctx context.Context, categoryName string, timerMinutes int, file io.Reader) (int, error) {
	categoryName = strings.TrimSpace(categoryName)
	if categoryName == "" {
		return 0, domain.Validationf("category is required")
	}
	if timerMinutes <= 0 {
		return 0, domain.Validationf("timer (in minutes) is required for the category")
	}

	category, err := s.resolveCategory(ctx, categoryName, timerMinutes)
	if err != nil {
		return 0, err
	}

	questions, rejected, err := ParseQuestionsCSV(category.ID, file)
	if err != nil {
		return 0, err
	}
	if rejected > 0 {
		s.log.WithFields(logrus.Fields{
			"category": category.Name,
			"rejected": rejected,
			"inserted": len(questions),
		}).Warn("skipped invalid csv rows")
	}

	if err := s.questions.InsertBatch(ctx, questions); err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx, category.ID); err != nil {
		s.log.WithError(err).Warn("question cache invalidation failed")
	}
	return len(questions), nil
}

// ManualUpload ingests an explicit question list. Every entry is validated
// before anything is inserted, so a bad correctOption index rejects the whole
// request instead of leaving a partial batch behind.
func (s *UploadService) ManualUpload(ctx context.Context, categoryName string, timerMinutes int, items []ManualQuestion) (int, error) {
	categoryName = strings.TrimSpace(categoryName)
	if categoryName == "" {
		return 0, domain.Validationf("category is required")
	}
	if len(items) == 0 {
		return 0, domain.Validationf("questions are required")
	}
	if timerMinutes <= 0 {
		timerMinutes = s.defaultTimer
	}

	category, err := s.resolveCategory(ctx, categoryName, timerMinutes)
	if err != nil {
		return 0, err
	}

	questions := make([]domain.Question, 0, len(items))
	for _, item := range items {
		if item.Text == "" {
			return 0, domain.Validationf("question text is required")
		}
		if len(item.Options) != 4 {
			return 0, domain.Validationf("question %q must have exactly 4 options", item.Text)
		}
		if item.CorrectOption < 0 || item.CorrectOption >= len(item.Options) {
			return 0, domain.Validationf("invalid correctOption for question %q", item.Text)
		}
		if anyEmpty(item.Options) {
			return 0, domain.Validationf("question %q has an empty option", item.Text)
		}
		questions = append(questions, domain.Question{
			ID:            uuid.New(),
			CategoryID:    category.ID,
			Text:          item.Text,
			Options:       item.Options,
			CorrectAnswer: item.Options[item.CorrectOption],
		})
	}

	if err := s.questions.InsertBatch(ctx, questions); err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx, category.ID); err != nil {
		s.log.WithError(err).Warn("question cache invalidation failed")
	}
	return len(questions), nil
}

// ListCategories returns every category with its question count.
func (s *UploadService) ListCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	return s.categories.List(ctx)
}

// DeleteCategory removes a category by exact name together with its questions
// and returns how many questions were deleted.
func (s *UploadService) DeleteCategory(ctx context.Context, name string) (int64, error) {
	category, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return 0, err
	}

	deleted, err := s.questions.DeleteByCategory(ctx, category.ID)
	if err != nil {
		return 0, err
	}
	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx, category.ID); err != nil {
		s.log.WithError(err).Warn("question cache invalidation failed")
	}
	return deleted, nil
}

// resolveCategory finds a category by exact name, creating it with the given
// timer when absent. The create goes through the uniqueness constraint; losing
// the race to a concurrent upload degrades to a find, and an existing timer is
// never overwritten.
func (s *UploadService) resolveCategory(ctx context.Context, name string, timerMinutes int) (domain.Category, error) {
	category, err := s.categories.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		return domain.Category{}, err
	}

	created, err := s.categories.Create(ctx, domain.Category{Name: name, TimerMinutes: timerMinutes})
	if errors.Is(err, ErrDuplicateCategory) {
		return s.categories.FindByName(ctx, name)
	}
	if err != nil {
		return domain.Category{}, err
	}
	return created, nil
}
