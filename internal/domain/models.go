package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Roles recognized by the admin gate.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Category groups questions under a name and carries the quiz timer shown to clients.
// The timer is advisory display data, not an enforced deadline.
type Category struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	TimerMinutes int       `json:"timerMinutes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CategorySummary is the admin listing view with a question count attached.
type CategorySummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	TimerMinutes  int       `json:"timerMinutes"`
	QuestionCount int       `json:"questionCount"`
}

// Question is one multiple-choice item. CorrectAnswer must be byte-equal to one
// of Options; both upload paths enforce this before insert.
type Question struct {
	ID            uuid.UUID `json:"id"`
	CategoryID    uuid.UUID `json:"categoryId"`
	Text          string    `json:"questionText"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correctAnswer"`
	CreatedAt     time.Time `json:"createdAt"`
}

// QuestionView is the user-facing shape of a question. It has no CorrectAnswer
// field at all, so the answer cannot leak through serialization.
type QuestionView struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"questionText"`
	Options []string  `json:"options"`
}

// View strips the correct answer from a question.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Text: q.Text, Options: q.Options}
}

// QuizPayload is what a quiz-taking client receives: answer-free questions in
// randomized order plus the category timer.
type QuizPayload struct {
	Questions    []QuestionView `json:"questions"`
	TimerMinutes int            `json:"timerMinutes"`
}

// AnswerSubmission is one submitted answer keyed by question id.
type AnswerSubmission struct {
	QuestionID uuid.UUID `json:"questionId"`
	Answer     string    `json:"answer"`
}

// AnswerRecord is the per-question breakdown persisted with a result.
// SelectedAnswer is nil when the question was left unanswered.
type AnswerRecord struct {
	QuestionID     uuid.UUID `json:"questionId"`
	SelectedAnswer *string   `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
}

// Result is an immutable record of one scored attempt. CategoryName is
// resolved at read time and not stored.
type Result struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"userId"`
	CategoryID   uuid.UUID      `json:"categoryId"`
	CategoryName string         `json:"categoryName,omitempty"`
	Score        int            `json:"score"`
	Total        int            `json:"total"`
	Answers      []AnswerRecord `json:"answers"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Percentage returns the rounded score percentage, 0 for an empty quiz.
func (r Result) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return int(math.Round(float64(r.Score) / float64(r.Total) * 100))
}

// ResultSummary is the compact recent-results view.
type ResultSummary struct {
	ID           uuid.UUID `json:"id"`
	CategoryName string    `json:"categoryName"`
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	Percentage   int       `json:"percentage"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary builds the compact view of a result.
func (r Result) Summary() ResultSummary {
	return ResultSummary{
		ID:           r.ID,
		CategoryName: r.CategoryName,
		Score:        r.Score,
		Total:        r.Total,
		Percentage:   r.Percentage(),
		CreatedAt:    r.CreatedAt,
	}
}

// User is owned by the auth collaborator; this core only reads it for
// ownership checks and admin gating.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
