package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-backend/internal/app"
	"quiz-backend/internal/domain"
	"quiz-backend/internal/infra/memory"
)

const testSecret = "router-test-secret"

type routerFixture struct {
	server *httptest.Server
	store  *memory.Store
	admin  domain.User
	player domain.User
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	store := memory.NewStore()
	cache := memory.NewQuestionCache(store, time.Minute)

	log := logrus.NewEntry(func() *logrus.Logger {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}())

	uploads := app.NewUploadService(store, store, cache, 2, log)
	quizzes := app.NewQuizService(store, cache, rand.New(rand.NewSource(1)))
	results := app.NewResultService(store, cache, store.Results())

	router := NewRouter(RouterDeps{
		Uploads:   uploads,
		Quizzes:   quizzes,
		Results:   results,
		Users:     store.Users(),
		JWTSecret: testSecret,
		Log:       log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	admin, err := store.UpsertUser(context.Background(), domain.User{Email: "admin@example.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	player, err := store.UpsertUser(context.Background(), domain.User{Email: "player@example.com", Role: domain.RoleUser})
	require.NoError(t, err)

	return &routerFixture{server: server, store: store, admin: admin, player: player}
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (f *routerFixture) do(t *testing.T, user domain.User, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, body)
	require.NoError(t, err)
	if user.ID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+signToken(t, user.ID))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func csvUploadRequest(t *testing.T, category, timer, csvBody string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("category", category))
	require.NoError(t, writer.WriteField("timer", timer))
	part, err := writer.CreateFormFile("file", "questions.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestRouterRejectsMissingToken(t *testing.T) {
	f := newRouterFixture(t)

	resp, err := http.Get(f.server.URL + "/api/quiz/categories")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterRejectsBadToken(t *testing.T) {
	f := newRouterFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/quiz/categories", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterAdminGate(t *testing.T) {
	f := newRouterFixture(t)

	body := strings.NewReader(`{"name":"Science","timerMinutes":3}`)
	resp := f.do(t, f.player, http.MethodPost, "/api/quiz/category", body, "application/json")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body = strings.NewReader(`{"name":"Science","timerMinutes":3}`)
	resp = f.do(t, f.admin, http.MethodPost, "/api/quiz/category", body, "application/json")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRouterUploadDeliverSubmitFlow(t *testing.T) {
	f := newRouterFixture(t)

	csvBody := "questionText,option1,option2,option3,option4,correctAnswer\n" +
		"What is 2+2?,1,2,3,4,4\n" +
		"What is 3+3?,4,5,6,7,6\n"
	body, contentType := csvUploadRequest(t, "Math", "5", csvBody)
	resp := f.do(t, f.admin, http.MethodPost, "/api/quiz/upload", body, contentType)
	var uploaded struct {
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &uploaded)
	assert.Equal(t, 2, uploaded.Count)

	resp = f.do(t, f.player, http.MethodGet, "/api/quiz/categories", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []domain.CategorySummary
	decodeBody(t, resp, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, 2, categories[0].QuestionCount)
	categoryID := categories[0].ID

	resp = f.do(t, f.player, http.MethodGet, "/api/quiz/questions/Math", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correctAnswer")

	var payload domain.QuizPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload.Questions, 2)
	assert.Equal(t, 5, payload.TimerMinutes)

	answers := make([]domain.AnswerSubmission, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		correct := "4"
		if q.Text == "What is 3+3?" {
			correct = "6"
		}
		answers = append(answers, domain.AnswerSubmission{QuestionID: q.ID, Answer: correct})
	}
	submitBody, err := json.Marshal(map[string]any{
		"categoryId": categoryID,
		"answers":    answers,
	})
	require.NoError(t, err)

	resp = f.do(t, f.player, http.MethodPost, "/api/result/submit", bytes.NewReader(submitBody), "application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var submitted struct {
		ResultID uuid.UUID `json:"resultId"`
		Score    int       `json:"score"`
		Total    int       `json:"total"`
	}
	decodeBody(t, resp, &submitted)
	assert.Equal(t, 2, submitted.Score)
	assert.Equal(t, 2, submitted.Total)

	resp = f.do(t, f.player, http.MethodGet, "/api/result/history", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []domain.Result
	decodeBody(t, resp, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "Math", history[0].CategoryName)

	resp = f.do(t, f.player, http.MethodGet, "/api/result/recent?limit=1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recent []domain.ResultSummary
	decodeBody(t, resp, &recent)
	require.Len(t, recent, 1)
	assert.Equal(t, 100, recent[0].Percentage)
}

func TestRouterResultOwnership(t *testing.T) {
	f := newRouterFixture(t)

	categoryID := uuid.New()
	_, err := f.store.Create(context.Background(), domain.Category{ID: categoryID, Name: "History", TimerMinutes: 2})
	require.NoError(t, err)
	result, err := f.store.Results().Create(context.Background(), domain.Result{
		UserID:     f.player.ID,
		CategoryID: categoryID,
		Score:      1,
		Total:      2,
	})
	require.NoError(t, err)

	resp := f.do(t, f.player, http.MethodGet, "/api/result/"+result.ID.String(), nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, f.admin, http.MethodGet, "/api/result/"+result.ID.String(), nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, f.player, http.MethodGet, "/api/result/"+uuid.NewString(), nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouterHealthz(t *testing.T) {
	f := newRouterFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
