package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"quiz-backend/internal/app"
	"quiz-backend/internal/domain"
)

// ResultHandler serves quiz submission and result history.
type ResultHandler struct {
	results *app.ResultService
	log     *logrus.Entry
}

func NewResultHandler(results *app.ResultService, log *logrus.Entry) *ResultHandler {
	return &ResultHandler{results: results, log: log}
}

type submitRequest struct {
	CategoryID uuid.UUID                 `json:"categoryId"`
	Answers    []domain.AnswerSubmission `json:"answers"`
}

// Submit handles POST /api/result/submit.
func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CategoryID == uuid.Nil {
		writeMessage(w, http.StatusBadRequest, "categoryId is required")
		return
	}

	result, err := h.results.Submit(r.Context(), user.ID, req.CategoryID, req.Answers)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "quiz submitted successfully",
		"resultId": result.ID,
		"score":    result.Score,
		"total":    result.Total,
	})
}

// History handles GET /api/result/history.
func (h *ResultHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authorized")
		return
	}

	results, err := h.results.History(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Recent handles GET /api/result/recent with an optional ?limit.
func (h *ResultHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	summaries, err := h.results.Recent(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// ByID handles GET /api/result/{id}. Reading someone else's result is a 403,
// not a 404.
func (h *ResultHandler) ByID(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authorized")
		return
	}

	resultID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, domain.ErrResultNotFound)
		return
	}

	result, err := h.results.ByID(r.Context(), user.ID, resultID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
