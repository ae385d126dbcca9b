package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-news-portal/internal/config"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/pribylovaa/go-news-portal/mocks"
	"github.com/stretchr/testify/require"
)

const readerID = "652f1f77bcf86cd799439013"

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockStorage) {
	t.Helper()

	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)

	svc := service.New(ms, config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "router-secret",
			Issuer:         "news-portal",
			AccessTokenTTL: time.Hour,
			BcryptCost:     4,
		},
		Limits: config.LimitsConfig{Default: 10, Max: 50, Comments: 20, Featured: 5, Trending: 10, Related: 5},
	})

	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return NewRouter(svc, Options{Logger: logger, Timeout: time.Second, BasePath: "/api"}), ms
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func do(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func body(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

// register выпускает токен читателя через реальный маршрут регистрации.
func register(t *testing.T, h http.Handler, ms *mocks.MockStorage, role models.Role) string {
	t.Helper()

	ms.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
	ms.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (*models.User, error) {
			u.ID = readerID
			return &u, nil
		})

	rr := do(h, http.MethodPost, "/api/auth/register", `{"name":"Ann","email":"ann@news.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	token, _ := body(t, rr)["token"].(string)
	require.NotEmpty(t, token)

	// Роль берётся из хранилища при каждой аутентификации.
	ms.EXPECT().UserByID(gomock.Any(), readerID).
		Return(&models.User{ID: readerID, Name: "Ann", Role: role, Favorites: []string{}}, nil).AnyTimes()

	return token
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := do(h, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "API is running", body(t, rr)["message"])
	require.Len(t, rr.Header().Get("X-Request-Id"), 32)

	for _, target := range []string{"/api/nope", "/nope", "/api/news/x/unknown"} {
		rr = do(h, http.MethodGet, target, "", "")
		require.Equal(t, http.StatusNotFound, rr.Code, target)
		require.Equal(t, "Route not found", body(t, rr)["message"], target)
	}
}

func TestRouter_AuthGroups(t *testing.T) {
	h, ms := newTestRouter(t)

	// Защищённый маршрут без токена.
	rr := do(h, http.MethodGet, "/api/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Not authorized, no token", body(t, rr)["message"])

	// Битый токен.
	rr = do(h, http.MethodGet, "/api/auth/me", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Not authorized, token failed", body(t, rr)["message"])

	token := register(t, h, ms, models.RoleUser)

	rr = do(h, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "Ann", body(t, rr)["data"].(map[string]any)["name"])

	// Читатель не проходит в админку.
	rr = do(h, http.MethodGet, "/api/admin/stats", "", token)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "Not authorized as an admin", body(t, rr)["message"])

	rr = do(h, http.MethodPost, "/api/auth/register-admin", `{"name":"X","email":"x@news.com","password":"secret1"}`, token)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_AdminAccess(t *testing.T) {
	h, ms := newTestRouter(t)

	token := register(t, h, ms, models.RoleAdmin)

	ms.EXPECT().ToggleFeatured(gomock.Any(), "652f1f77bcf86cd799439011").
		Return(&models.Article{ID: "652f1f77bcf86cd799439011", IsFeatured: true}, nil)

	rr := do(h, http.MethodPatch, "/api/admin/news/652f1f77bcf86cd799439011/featured", "", token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRouter_PublicRoutesIgnoreBadToken(t *testing.T) {
	h, ms := newTestRouter(t)

	ms.EXPECT().CategoryCounts(gomock.Any(), models.StatusPublished).Return(nil, nil)

	rr := do(h, http.MethodGet, "/api/news/categories", "", "garbage")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, true, body(t, rr)["success"])
}

func TestRouter_SameParamAcrossGroups(t *testing.T) {
	h, ms := newTestRouter(t)

	const id = "652f1f77bcf86cd799439011"

	// GET комментариев публичный, POST требует токен.
	ms.EXPECT().ListTopLevel(gomock.Any(), id, int64(0), int64(20)).Return(nil, int64(0), nil)

	rr := do(h, http.MethodGet, "/api/news/"+id+"/comments", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []any{}, body(t, rr)["data"])

	rr = do(h, http.MethodPost, "/api/news/"+id+"/comments", `{"content":"hi"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	// Статический сегмент имеет приоритет над {id}.
	rr = do(h, http.MethodGet, "/api/news/user/favorites", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
