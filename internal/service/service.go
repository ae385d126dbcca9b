// service содержит бизнес-логику news-portal:
// жизненный цикл статей, публичные выборки, лайки/избранное,
// комментарии с одним уровнем ответов, сводку для админки и аутентификацию.
//
// Экземпляр Service не хранит состояние запроса и безопасен для конкурентного
// использования при условии, что переданные хранилища потокобезопасны.
// Ошибки возвращаются обёрнутыми сервисными sentinel-ами и далее маппятся
// HTTP-слоем (internal/http/apierrors) в статус и конверт ответа.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-news-portal/internal/cache"
	"github.com/pribylovaa/go-news-portal/internal/config"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/pribylovaa/go-news-portal/pkg/log"
)

var (
	// ErrInvalidArgument: неверные входные параметры. HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound: сущность отсутствует. HTTP 404.
	ErrNotFound = errors.New("not found")
	// ErrArticleNotFound/ErrCommentNotFound/ErrUserNotFound/ErrParentNotFound
	// уточняют ErrNotFound (errors.Is(err, ErrNotFound) == true).
	ErrArticleNotFound = fmt.Errorf("news article %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrParentNotFound  = fmt.Errorf("parent comment %w", ErrNotFound)

	// ErrForbidden: субъект аутентифицирован, но не вправе выполнять операцию. HTTP 403.
	ErrForbidden = errors.New("not authorized to perform this action")

	// ErrNotAdmin: операция требует роли admin. HTTP 403.
	ErrNotAdmin = fmt.Errorf("not authorized as an admin: %w", ErrForbidden)

	// ErrUnauthorized: неверный токен. HTTP 401.
	ErrUnauthorized = errors.New("not authorized, token failed")
	// ErrNoToken: токен не передан. HTTP 401.
	ErrNoToken = fmt.Errorf("not authorized, no token: %w", ErrUnauthorized)
	// ErrInvalidCredentials: неверная пара email/пароль. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict: нарушение уникальности (slug). HTTP 400.
	ErrConflict = errors.New("duplicate field value entered")
	// ErrEmailTaken: email уже занят. HTTP 400.
	ErrEmailTaken = fmt.Errorf("user already exists: %w", ErrConflict)

	// ErrUploadsDisabled: хранилище изображений не сконфигурировано. HTTP 503.
	ErrUploadsDisabled = errors.New("image uploads are disabled")

	// ErrInternal: внутренняя ошибка (хранилище/БД/контекст). HTTP 500.
	ErrInternal = errors.New("internal")
)

// ValidationError: ошибка валидации с человекочитаемым сообщением.
// errors.Is(err, ErrInvalidArgument) == true.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// InternalError: непредвиденная ошибка хранилища или окружения.
// errors.Is(err, ErrInternal) == true; Cause доступна для сообщения клиенту.
type InternalError struct {
	Op    string
	Cause error
}

func (e *InternalError) Error() string {
	return e.Op + ": " + ErrInternal.Error() + ": " + e.Cause.Error()
}

func (e *InternalError) Unwrap() []error { return []error{ErrInternal, e.Cause} }

func internal(op string, err error) error { return &InternalError{Op: op, Cause: err} }

// Service описывает бизнес-логику news-portal.
type Service struct {
	storage storage.Storage
	cfg     config.Config
	images  storage.ImageStorage  // может быть nil, если S3 не сконфигурирован
	cats    cache.CategoriesCache // может быть nil, если Redis не сконфигурирован
	now     func() time.Time
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, cfg config.Config) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetImageStorage устанавливает хранилище изображений (опционально).
func (s *Service) SetImageStorage(images storage.ImageStorage) {
	s.images = images
}

// SetCategoriesCache устанавливает кэш категорий (опционально).
func (s *Service) SetCategoriesCache(c cache.CategoriesCache) {
	s.cats = c
}

// PageRequest: номер страницы (с 1) и её размер.
type PageRequest struct {
	Page  int
	Limit int
}

// normalize приводит страницу к >= 1, а размер: к [def, Max].
func (s *Service) normalize(p PageRequest, def int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}

	if p.Limit <= 0 {
		p.Limit = def
	}

	if s.cfg.Limits.Max > 0 && p.Limit > s.cfg.Limits.Max {
		p.Limit = s.cfg.Limits.Max
	}

	return p
}

func (p PageRequest) offset() int64 { return int64(p.Page-1) * int64(p.Limit) }

// clampLimit: то же для выборок без страниц (featured/trending/related).
func (s *Service) clampLimit(limit, def int) int64 {
	if limit <= 0 {
		limit = def
	}

	if s.cfg.Limits.Max > 0 && limit > s.cfg.Limits.Max {
		limit = s.cfg.Limits.Max
	}

	return int64(limit)
}

// invalidateCategories сбрасывает кэш категорий после изменения статей.
// Ошибка кэша не влияет на результат операции.
func (s *Service) invalidateCategories(ctx context.Context, op string) {
	if s.cats == nil {
		return
	}

	if err := s.cats.Invalidate(ctx); err != nil {
		log.Op(ctx, op).Warn("categories_cache_invalidate_failed", slog.String("err", err.Error()))
	}
}
