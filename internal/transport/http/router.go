package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"quiz-backend/internal/app"
)

// RouterDeps collects everything the HTTP surface needs.
type RouterDeps struct {
	Uploads   *app.UploadService
	Quizzes   *app.QuizService
	Results   *app.ResultService
	Users     app.UserRepository
	JWTSecret string
	Log       *logrus.Entry
}

// NewRouter wires the REST surface: health and metrics are open, everything
// under /api requires a Bearer token, and admin routes additionally require
// the admin role.
func NewRouter(deps RouterDeps) *mux.Router {
	quizHandler := NewQuizHandler(deps.Uploads, deps.Quizzes, deps.Log)
	resultHandler := NewResultHandler(deps.Results, deps.Log)

	r := mux.NewRouter()
	r.Use(MetricsMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(deps.Users, deps.JWTSecret, deps.Log))

	api.HandleFunc("/quiz/categories", quizHandler.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/quiz/questions/{category}", quizHandler.GetQuizQuestions).Methods(http.MethodGet)

	admin := api.PathPrefix("/quiz").Subrouter()
	admin.Use(RequireAdmin)
	admin.HandleFunc("/category", quizHandler.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/category/{name}", quizHandler.DeleteCategory).Methods(http.MethodDelete)
	admin.HandleFunc("/upload", quizHandler.UploadCSV).Methods(http.MethodPost)
	admin.HandleFunc("/manual-upload", quizHandler.ManualUpload).Methods(http.MethodPost)

	api.HandleFunc("/result/submit", resultHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/result/history", resultHandler.History).Methods(http.MethodGet)
	// recent must be registered before the {id} catch-all
	api.HandleFunc("/result/recent", resultHandler.Recent).Methods(http.MethodGet)
	api.HandleFunc("/result/{id}", resultHandler.ByID).Methods(http.MethodGet)

	return r
}
