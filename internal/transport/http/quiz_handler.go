package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"quiz-backend/internal/app"
	"quiz-backend/internal/domain"
)

// maxUploadBytes bounds CSV uploads held in memory.
const maxUploadBytes = 10 << 20

// QuizHandler serves the admin ingestion endpoints and quiz delivery.
type QuizHandler struct {
	uploads  *app.UploadService
	quizzes  *app.QuizService
	validate *validator.Validate
	log      *logrus.Entry
}

func NewQuizHandler(uploads *app.UploadService, quizzes *app.QuizService, log *logrus.Entry) *QuizHandler {
	return &QuizHandler{
		uploads:  uploads,
		quizzes:  quizzes,
		validate: validator.New(),
		log:      log,
	}
}

type createCategoryRequest struct {
	Name         string `json:"name" validate:"required"`
	TimerMinutes int    `json:"timerMinutes" validate:"required,gt=0"`
}

// CreateCategory handles POST /api/quiz/category.
func (h *QuizHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "name and a positive timerMinutes are required")
		return
	}

	category, err := h.uploads.CreateCategory(r.Context(), req.Name, req.TimerMinutes)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UploadCSV handles POST /api/quiz/upload (multipart form: category, timer, file).
func (h *QuizHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	categoryName := r.FormValue("category")
	if categoryName == "" {
		writeMessage(w, http.StatusBadRequest, "category is required")
		return
	}
	timerRaw := r.FormValue("timer")
	if timerRaw == "" {
		writeMessage(w, http.StatusBadRequest, "timer (in minutes) is required for the category")
		return
	}
	timer, err := strconv.Atoi(timerRaw)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "timer must be an integer")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer file.Close()

	count, err := h.uploads.UploadCSV(r.Context(), categoryName, timer, file)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "questions uploaded successfully",
		"count":   count,
	})
}

type manualUploadRequest struct {
	Category     string               `json:"category" validate:"required"`
	TimerMinutes int                  `json:"timerMinutes"`
	Questions    []app.ManualQuestion `json:"questions" validate:"required,min=1"`
}

// ManualUpload handles POST /api/quiz/manual-upload.
func (h *QuizHandler) ManualUpload(w http.ResponseWriter, r *http.Request) {
	var req manualUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "category and a non-empty questions list are required")
		return
	}

	count, err := h.uploads.ManualUpload(r.Context(), req.Category, req.TimerMinutes, req.Questions)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "questions uploaded successfully",
		"count":   count,
	})
}

// ListCategories handles GET /api/quiz/categories.
func (h *QuizHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.uploads.ListCategories(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// DeleteCategory handles DELETE /api/quiz/category/{name}.
func (h *QuizHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	deleted, err := h.uploads.DeleteCategory(r.Context(), name)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "category deleted",
		"deletedQuestions": deleted,
	})
}

// GetQuizQuestions handles GET /api/quiz/questions/{category}; the path
// segment may be a category id or a name.
func (h *QuizHandler) GetQuizQuestions(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["category"]
	payload, err := h.quizzes.Deliver(r.Context(), identifier)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if payload.Questions == nil {
		payload.Questions = []domain.QuestionView{}
	}
	writeJSON(w, http.StatusOK, payload)
}
