package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-news-portal/internal/http/handlers"
	"github.com/pribylovaa/go-news-portal/internal/http/middleware"
	"github.com/pribylovaa/go-news-portal/internal/service"
)

// Options: параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой: роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // счётчики и латентность по шаблону маршрута
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	root.NotFound(h.NotFound)
	root.MethodNotAllowed(h.NotFound)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		sub.NotFound(h.NotFound)
		sub.MethodNotAllowed(h.NotFound)
		registerRoutes(sub, h, svc)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes: единая точка регистрации всех REST-эндпойнтов.
// Группы: публичные (с необязательной аутентификацией), для вошедших
// пользователей и для администраторов.
func registerRoutes(r chi.Router, h *handlers.Handlers, auth middleware.Authenticator) {
	r.Get("/health", h.Health)

	// auth
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// public
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(auth))

		r.Get("/news", h.ListNews)
		r.Get("/news/categories", h.Categories)
		r.Get("/news/featured", h.Featured)
		r.Get("/news/trending", h.Trending)
		r.Get("/news/category/{category}", h.ByCategory)
		r.Get("/news/{id}/related", h.Related)
		r.Get("/news/{id}/comments", h.ListComments)
		r.Get("/news/{id}", h.GetBySlug)
	})

	// authenticated
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth))

		r.Get("/auth/me", h.Me)
		r.Put("/auth/profile", h.UpdateProfile)
		r.Put("/auth/password", h.ChangePassword)

		r.Get("/news/user/favorites", h.Favorites)
		r.Post("/news/{id}/like", h.ToggleLike)
		r.Post("/news/{id}/favorite", h.ToggleFavorite)
		r.Post("/news/{id}/comments", h.AddComment)

		r.Put("/comments/{id}", h.UpdateComment)
		r.Delete("/comments/{id}", h.DeleteComment)
		r.Post("/comments/{id}/like", h.ToggleCommentLike)
	})

	// admin
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth), middleware.RequireAdmin())

		r.Post("/auth/register-admin", h.RegisterAdmin)

		r.Get("/admin/stats", h.Stats)
		r.Get("/admin/news", h.AdminListNews)
		r.Post("/admin/news", h.CreateNews)
		r.Get("/admin/news/{id}", h.AdminGetNews)
		r.Put("/admin/news/{id}", h.UpdateNews)
		r.Delete("/admin/news/{id}", h.DeleteNews)
		r.Patch("/admin/news/{id}/featured", h.ToggleFeatured)
		r.Post("/admin/upload", h.UploadImage)
	})
}
