package handlers

// Тесты HTTP-хендлеров news-portal.
// Подход как в транспортных тестах сервисов:
//  - gomock для слоя storage ниже сервиса;
//  - реальный service.Service поверх моков;
//  - хендлер вызывается через chi, чтобы работали URL-параметры;
//  - субъект запроса кладётся в контекст напрямую (middleware.WithIdentity).

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-news-portal/internal/config"
	"github.com/pribylovaa/go-news-portal/internal/http/middleware"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
	"github.com/pribylovaa/go-news-portal/mocks"
	"github.com/stretchr/testify/require"
)

const (
	articleID = "652f1f77bcf86cd799439011"
	authorID  = "652f1f77bcf86cd799439012"
	readerID  = "652f1f77bcf86cd799439013"
	commentID = "652f1f77bcf86cd799439014"
)

var ts = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testCfg() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "unit-secret",
			Issuer:         "news-portal",
			AccessTokenTTL: time.Hour,
			BcryptCost:     4,
		},
		Upload: config.UploadConfig{
			MaxSizeBytes:        1024,
			AllowedContentTypes: []string{"image/jpeg", "image/png"},
		},
		Limits: config.LimitsConfig{
			Default:  10,
			Max:      50,
			Comments: 20,
			Featured: 5,
			Trending: 10,
			Related:  5,
		},
	}
}

// newHandlersWithMocks: хендлеры поверх реального сервиса и мок-хранилища.
func newHandlersWithMocks(t *testing.T) (*Handlers, *service.Service, *mocks.MockStorage) {
	t.Helper()

	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	svc := service.New(ms, testCfg())

	return New(svc), svc, ms
}

var (
	reader = &models.Identity{UserID: readerID, Role: models.RoleUser}
	admin  = &models.Identity{UserID: authorID, Role: models.RoleAdmin}
)

// serve регистрирует хендлер на pattern и выполняет запрос.
func serve(h http.HandlerFunc, method, pattern, target, body string, id *models.Identity) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *id))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decode разбирает JSON-ответ в map.
func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func requireError(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())

	out := decode(t, rr)
	require.Equal(t, false, out["success"])
	require.Equal(t, msg, out["message"])
}

func authorUser() models.User {
	return models.User{ID: authorID, Name: "Admin", Email: "admin@news.com", Avatar: "/a.png", Role: models.RoleAdmin}
}

func publishedArticle() models.Article {
	pub := ts
	return models.Article{
		ID:          articleID,
		Title:       "Hello",
		Slug:        "hello-1709294400000",
		Content:     "body",
		Category:    "technology",
		Tags:        []string{"go"},
		AuthorID:    authorID,
		Status:      models.StatusPublished,
		Likes:       []string{readerID},
		LikesCount:  1,
		PublishedAt: &pub,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestHealthAndNotFound(t *testing.T) {
	h, _, _ := newHandlersWithMocks(t)

	rr := serve(h.Health, http.MethodGet, "/health", "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)
	require.Equal(t, true, out["success"])
	require.Equal(t, "API is running", out["message"])

	rr = httptest.NewRecorder()
	h.NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	requireError(t, rr, http.StatusNotFound, "Route not found")
}

func TestPageRequest_LenientParsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/news?page=abc&limit=7", nil)
	require.Equal(t, service.PageRequest{Page: 0, Limit: 7}, pageRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/news?page=3", nil)
	require.Equal(t, service.PageRequest{Page: 3, Limit: 0}, pageRequest(req))
}

func TestDecodeJSON_BadBody(t *testing.T) {
	h, _, _ := newHandlersWithMocks(t)

	rr := serve(h.Login, http.MethodPost, "/auth/login", "/auth/login", "{not json", nil)
	requireError(t, rr, http.StatusBadRequest, "Invalid request body")
}
