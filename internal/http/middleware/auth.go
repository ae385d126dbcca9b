package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-news-portal/internal/http/apierrors"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
	logctx "github.com/pribylovaa/go-news-portal/pkg/log"
	"github.com/pribylovaa/go-news-portal/pkg/redact"
)

// Authenticator проверяет access-токен и возвращает субъекта запроса.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

type identityKey struct{}

// WithIdentity кладёт субъекта в контекст.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom достаёт субъекта из контекста; false для анонимного запроса.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok && id.UserID != ""
}

// Identify: необязательная аутентификация для публичных маршрутов.
// Валидный токен добавляет субъекта в контекст; отсутствующий или битый
// токен не мешает запросу и обслуживается как анонимный.
func Identify(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := a.Authenticate(r.Context(), token)
			if err != nil {
				logctx.From(r.Context()).Debug("optional_auth_ignored", slog.String("err", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth требует валидный Bearer-токен, иначе 401.
func RequireAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apierrors.WriteError(w, r, service.ErrNoToken)
				return
			}

			id, err := a.Authenticate(r.Context(), token)
			if err != nil {
				logctx.From(r.Context()).Warn("auth_token_rejected",
					slog.String("token", redact.Token(token)),
					slog.String("err", err.Error()),
				)
				if !errors.Is(err, service.ErrUnauthorized) && !errors.Is(err, service.ErrInternal) {
					err = fmt.Errorf("%w: %w", service.ErrUnauthorized, err)
				}
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin пропускает только администраторов. Ставится после RequireAuth.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				apierrors.WriteError(w, r, service.ErrNoToken)
				return
			}

			if !id.IsAdmin() {
				logctx.From(r.Context()).Warn("admin_required",
					slog.String("user_id", id.UserID),
					slog.String("path", r.URL.Path),
				)
				apierrors.WriteError(w, r, service.ErrNotAdmin)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization: Bearer <token>.
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "

	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}
