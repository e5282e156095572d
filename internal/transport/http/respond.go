package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"quiz-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps domain errors onto the response taxonomy: validation 400,
// not found 404, ownership 403, everything else a generic 500.
func writeError(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch {
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrMalformedCSV),
		errors.Is(err, domain.ErrNoValidQuestions):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrResultNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		writeMessage(w, http.StatusForbidden, err.Error())
	default:
		log.WithError(err).Error("request failed")
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
