package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/pribylovaa/go-news-portal/pkg/log"
)

// PublicListQuery: фильтры публичной ленты.
type PublicListQuery struct {
	Category string
	Tag      string
	Search   string
	PageRequest
}

// AdminListQuery: фильтры админского списка.
type AdminListQuery struct {
	Status   models.Status
	Category string
	Search   string
	PageRequest
}

// ListPublished возвращает страницу опубликованных статей (published_at DESC) без текста.
func (s *Service) ListPublished(ctx context.Context, q PublicListQuery) (*models.Page[models.Article], error) {
	const op = "service.queries.ListPublished"

	p := s.normalize(q.PageRequest, s.cfg.Limits.Default)

	return s.listPage(ctx, op, models.ArticleFilter{
		Status:   models.StatusPublished,
		Category: strings.TrimSpace(q.Category),
		Tag:      strings.TrimSpace(q.Tag),
		Search:   q.Search,
		Sort:     models.SortPublishedDesc,
	}, p, false)
}

// ListAdmin возвращает страницу статей в любых статусах (created_at DESC) с текстом.
func (s *Service) ListAdmin(ctx context.Context, q AdminListQuery) (*models.Page[models.Article], error) {
	const op = "service.queries.ListAdmin"

	if q.Status != "" && !q.Status.Valid() {
		log.Op(ctx, op).Warn("list_admin_invalid_status", slog.String("status", string(q.Status)))
		return nil, fmt.Errorf("%s: %w", op, invalid("Invalid status"))
	}

	p := s.normalize(q.PageRequest, s.cfg.Limits.Default)

	return s.listPage(ctx, op, models.ArticleFilter{
		Status:      q.Status,
		Category:    strings.TrimSpace(q.Category),
		Search:      q.Search,
		Sort:        models.SortCreatedDesc,
		WithContent: true,
	}, p, true)
}

// ListByCategory возвращает опубликованные статьи рубрики.
func (s *Service) ListByCategory(ctx context.Context, category string, pr PageRequest) (*models.Page[models.Article], error) {
	const op = "service.queries.ListByCategory"

	if !models.ValidCategory(category) {
		log.Op(ctx, op).Warn("list_by_category_invalid", slog.String("category", category))
		return nil, fmt.Errorf("%s: %w", op, invalid("Invalid category"))
	}

	p := s.normalize(pr, s.cfg.Limits.Default)

	return s.listPage(ctx, op, models.ArticleFilter{
		Status:   models.StatusPublished,
		Category: category,
		Sort:     models.SortPublishedDesc,
	}, p, false)
}

// ListFavorites возвращает опубликованные статьи из избранного пользователя.
func (s *Service) ListFavorites(ctx context.Context, userID string, pr PageRequest) (*models.Page[models.Article], error) {
	const op = "service.queries.ListFavorites"

	u, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Op(ctx, op).Warn("user_not_found", slog.String("user_id", userID))
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Op(ctx, op).Error("user_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	p := s.normalize(pr, s.cfg.Limits.Default)

	return s.listPage(ctx, op, models.ArticleFilter{
		Status: models.StatusPublished,
		IDs:    append([]string{}, u.Favorites...),
		Sort:   models.SortPublishedDesc,
	}, p, false)
}

// ArticleBySlug: публичная карточка статьи.
//
// Правила:
//   - видны только опубликованные статьи, иначе ErrArticleNotFound;
//   - каждый вызов увеличивает просмотры на 1;
//   - для известного читателя проставляются IsLiked/IsFavorited, для анонима: false.
func (s *Service) ArticleBySlug(ctx context.Context, slug string, viewer *models.Identity) (*models.ArticleDetail, error) {
	const op = "service.queries.ArticleBySlug"

	lg := log.Op(ctx, op).With(slog.String("slug", slug))

	a, err := s.storage.PublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("article_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		lg.Error("article_by_slug_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if err := s.attachArticleAuthors(ctx, []*models.Article{a}, false); err != nil {
		return nil, internal(op, err)
	}

	out := &models.ArticleDetail{Article: *a}

	if viewer != nil && viewer.UserID != "" {
		out.IsLiked = a.HasLike(viewer.UserID)

		u, err := s.storage.UserByID(ctx, viewer.UserID)
		switch {
		case err == nil:
			out.IsFavorited = u.HasFavorite(a.ID)
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("viewer_not_found", slog.String("user_id", viewer.UserID))
		default:
			lg.Error("viewer_lookup_failed", slog.String("err", err.Error()))
			return nil, internal(op, err)
		}
	}

	return out, nil
}

// Featured: опубликованные «избранные редакцией» статьи (published_at DESC).
func (s *Service) Featured(ctx context.Context, limit int) ([]models.Article, error) {
	const op = "service.queries.Featured"

	return s.list(ctx, op, models.ArticleFilter{
		Status:       models.StatusPublished,
		FeaturedOnly: true,
		Sort:         models.SortPublishedDesc,
		Limit:        s.clampLimit(limit, s.cfg.Limits.Featured),
	})
}

// Trending: опубликованные статьи по просмотрам, затем по лайкам.
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Article, error) {
	const op = "service.queries.Trending"

	return s.list(ctx, op, models.ArticleFilter{
		Status: models.StatusPublished,
		Sort:   models.SortTrending,
		Limit:  s.clampLimit(limit, s.cfg.Limits.Trending),
	})
}

// Related: опубликованные статьи той же рубрики или с общими тегами, без исходной.
func (s *Service) Related(ctx context.Context, id string, limit int) ([]models.Article, error) {
	const op = "service.queries.Related"

	src, err := s.storage.ArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Op(ctx, op).Warn("article_not_found", slog.String("id", id))
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		log.Op(ctx, op).Error("article_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	return s.list(ctx, op, models.ArticleFilter{
		Status:    models.StatusPublished,
		ExcludeID: src.ID,
		Related:   &models.Related{Category: src.Category, Tags: src.Tags},
		Sort:      models.SortPublishedDesc,
		Limit:     s.clampLimit(limit, s.cfg.Limits.Related),
	})
}

// Categories: рубрики опубликованных статей с количеством (count DESC).
// При наличии кэша результат берётся из Redis; ошибки кэша не фатальны.
func (s *Service) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	const op = "service.queries.Categories"

	lg := log.Op(ctx, op)

	if s.cats != nil {
		list, ok, err := s.cats.Get(ctx)
		switch {
		case err != nil:
			lg.Warn("categories_cache_get_failed", slog.String("err", err.Error()))
		case ok:
			return list, nil
		}
	}

	list, err := s.storage.CategoryCounts(ctx, models.StatusPublished)
	if err != nil {
		lg.Error("categories_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if s.cats != nil {
		if err := s.cats.Set(ctx, list, s.cfg.Redis.CategoriesTTL); err != nil {
			lg.Warn("categories_cache_set_failed", slog.String("err", err.Error()))
		}
	}

	return list, nil
}

// listPage: общая часть постраничных выборок.
func (s *Service) listPage(ctx context.Context, op string, f models.ArticleFilter, p PageRequest, withEmail bool) (*models.Page[models.Article], error) {
	f.Offset = p.offset()
	f.Limit = int64(p.Limit)

	items, total, err := s.storage.ListArticles(ctx, f)
	if err != nil {
		log.Op(ctx, op).Error("list_articles_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if err := s.attachAuthorsToSlice(ctx, items, withEmail); err != nil {
		return nil, internal(op, err)
	}

	return models.NewPage(items, total, p.Page, p.Limit), nil
}

// list: общая часть выборок без страниц.
func (s *Service) list(ctx context.Context, op string, f models.ArticleFilter) ([]models.Article, error) {
	items, _, err := s.storage.ListArticles(ctx, f)
	if err != nil {
		log.Op(ctx, op).Error("list_articles_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if err := s.attachAuthorsToSlice(ctx, items, false); err != nil {
		return nil, internal(op, err)
	}

	if items == nil {
		items = []models.Article{}
	}

	return items, nil
}

func (s *Service) attachAuthorsToSlice(ctx context.Context, items []models.Article, withEmail bool) error {
	ptrs := make([]*models.Article, 0, len(items))
	for i := range items {
		ptrs = append(ptrs, &items[i])
	}

	return s.attachArticleAuthors(ctx, ptrs, withEmail)
}
