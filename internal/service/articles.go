package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/pribylovaa/go-news-portal/pkg/log"
)

const (
	maxTitleLen   = 200
	maxSummaryLen = 500
)

// ArticleInput: поля новой статьи.
// Tags: строка через запятую; пустой Status означает draft.
type ArticleInput struct {
	Title      string
	Content    string
	Summary    string
	Category   string
	Tags       string
	Image      string
	Status     models.Status
	IsFeatured bool
}

// ArticlePatch: частичное обновление статьи; nil означает «не менять».
type ArticlePatch struct {
	Title      *string
	Content    *string
	Summary    *string
	Category   *string
	Tags       *string
	Image      *string
	Status     *models.Status
	IsFeatured *bool
}

// CreateArticle создаёт статью от имени authorID.
//
// Правила:
//   - title, content, category обязательны; category из фиксированного набора;
//   - slug = slugify(title) + "-" + unix millis;
//   - статус по умолчанию draft; published сразу проставляет PublishedAt.
//
// Ошибки: ValidationError, ErrConflict, ErrInternal.
func (s *Service) CreateArticle(ctx context.Context, authorID string, in ArticleInput) (*models.Article, error) {
	const op = "service.articles.CreateArticle"

	lg := log.Op(ctx, op).With(slog.String("author_id", authorID))

	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Summary = strings.TrimSpace(in.Summary)

	if err := validateArticleFields(&in.Title, &in.Content, &in.Summary, &in.Category); err != nil {
		lg.Warn("article_create_invalid", slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Status == "" {
		in.Status = models.StatusDraft
	}

	if !in.Status.Valid() {
		lg.Warn("article_create_invalid", slog.String("reason", "status"))
		return nil, fmt.Errorf("%s: %w", op, invalid("Invalid status"))
	}

	now := s.now()
	a := models.Article{
		Title:      in.Title,
		Slug:       slugify(in.Title, now.UnixMilli()),
		Content:    in.Content,
		Summary:    in.Summary,
		Category:   in.Category,
		Tags:       splitTags(in.Tags),
		Image:      strings.TrimSpace(in.Image),
		AuthorID:   authorID,
		Status:     in.Status,
		IsFeatured: in.IsFeatured,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if a.Status == models.StatusPublished {
		a.PublishedAt = &now
	}

	out, err := s.storage.CreateArticle(ctx, a)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			lg.Warn("article_create_conflict", slog.String("slug", a.Slug))
			return nil, fmt.Errorf("%s: %w", op, ErrConflict)
		}

		lg.Error("article_create_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if err := s.attachArticleAuthors(ctx, []*models.Article{out}, true); err != nil {
		return nil, internal(op, err)
	}

	s.invalidateCategories(ctx, op)

	lg.Info("article_created",
		slog.String("id", out.ID),
		slog.String("slug", out.Slug),
		slog.String("status", string(out.Status)),
	)

	return out, nil
}

// UpdateArticle применяет частичное обновление.
//
// Правила:
//   - slug пересчитывается только при фактической смене заголовка;
//   - PublishedAt ставится при первой публикации и больше не меняется;
//   - присланная строка тегов (даже пустая) заменяет набор, отсутствующая: не трогает;
//   - UpdatedAt обновляется всегда.
//
// Ошибки: ErrArticleNotFound, ValidationError, ErrConflict, ErrInternal.
func (s *Service) UpdateArticle(ctx context.Context, id string, p ArticlePatch) (*models.Article, error) {
	const op = "service.articles.UpdateArticle"

	lg := log.Op(ctx, op).With(slog.String("id", id))

	cur, err := s.storage.ArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("article_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		lg.Error("article_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if err := validatePatch(&p); err != nil {
		lg.Warn("article_update_invalid", slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	upd := models.ArticleUpdate{
		Title:      p.Title,
		Content:    p.Content,
		Summary:    p.Summary,
		Category:   p.Category,
		Image:      p.Image,
		Status:     p.Status,
		IsFeatured: p.IsFeatured,
		UpdatedAt:  now,
	}

	if p.Title != nil && *p.Title != cur.Title {
		slug := slugify(*p.Title, now.UnixMilli())
		upd.Slug = &slug
	}

	if p.Tags != nil {
		tags := splitTags(*p.Tags)
		upd.Tags = &tags
	}

	if p.Status != nil && *p.Status == models.StatusPublished &&
		cur.Status != models.StatusPublished && cur.PublishedAt == nil {
		upd.PublishedAt = &now
	}

	out, err := s.storage.UpdateArticle(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("article_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		case errors.Is(err, storage.ErrConflict):
			lg.Warn("article_update_conflict")
			return nil, fmt.Errorf("%s: %w", op, ErrConflict)
		default:
			lg.Error("article_update_failed", slog.String("err", err.Error()))
			return nil, internal(op, err)
		}
	}

	if err := s.attachArticleAuthors(ctx, []*models.Article{out}, true); err != nil {
		return nil, internal(op, err)
	}

	s.invalidateCategories(ctx, op)

	lg.Info("article_updated",
		slog.String("status", string(out.Status)),
		slog.Bool("slug_changed", upd.Slug != nil),
		slog.Bool("first_publish", upd.PublishedAt != nil),
	)

	return out, nil
}

// DeleteArticle удаляет статью вместе с комментариями.
// Повторное удаление возвращает ErrArticleNotFound.
func (s *Service) DeleteArticle(ctx context.Context, id string) error {
	const op = "service.articles.DeleteArticle"

	lg := log.Op(ctx, op).With(slog.String("id", id))

	if err := s.storage.DeleteArticle(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("article_not_found")
			return fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		lg.Error("article_delete_failed", slog.String("err", err.Error()))
		return internal(op, err)
	}

	s.invalidateCategories(ctx, op)
	lg.Info("article_deleted")

	return nil
}

// ToggleFeatured инвертирует флаг «избранной» статьи и возвращает новое состояние.
func (s *Service) ToggleFeatured(ctx context.Context, id string) (*models.Article, error) {
	const op = "service.articles.ToggleFeatured"

	lg := log.Op(ctx, op).With(slog.String("id", id))

	out, err := s.storage.ToggleFeatured(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("article_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		lg.Error("article_toggle_featured_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	lg.Info("article_featured_toggled", slog.Bool("is_featured", out.IsFeatured))

	return out, nil
}

// AdminArticleByID возвращает статью в любом статусе без учёта просмотра.
func (s *Service) AdminArticleByID(ctx context.Context, id string) (*models.Article, error) {
	const op = "service.articles.AdminArticleByID"

	out, err := s.storage.ArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Op(ctx, op).Warn("article_not_found", slog.String("id", id))
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		log.Op(ctx, op).Error("article_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if err := s.attachArticleAuthors(ctx, []*models.Article{out}, true); err != nil {
		return nil, internal(op, err)
	}

	return out, nil
}

// attachArticleAuthors подтягивает авторов одним запросом.
// withEmail: админская проекция (имя и email), иначе публичная (имя и аватар).
// Удалённый автор остаётся ссылкой только с ID.
func (s *Service) attachArticleAuthors(ctx context.Context, items []*models.Article, withEmail bool) error {
	ids := make([]string, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.AuthorID)
	}

	authors, err := s.authorsByID(ctx, ids, withEmail)
	if err != nil {
		return err
	}

	for _, a := range items {
		if au, ok := authors[a.AuthorID]; ok {
			a.Author = au
		} else {
			a.Author = &models.Author{ID: a.AuthorID}
		}
	}

	return nil
}

func (s *Service) authorsByID(ctx context.Context, ids []string, withEmail bool) (map[string]*models.Author, error) {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	out := make(map[string]*models.Author, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	users, err := s.storage.UsersByIDs(ctx, uniq)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	for i := range users {
		au := users[i].AsAuthor()
		if withEmail {
			au.Avatar = ""
		} else {
			au.Email = ""
		}
		out[users[i].ID] = au
	}

	return out, nil
}

// validateArticleFields проверяет обязательные поля новой статьи.
func validateArticleFields(title, content, summary, category *string) error {
	switch {
	case *title == "":
		return invalid("Title is required")
	case utf8.RuneCountInString(*title) > maxTitleLen:
		return invalid("Title cannot be more than 200 characters")
	case *content == "":
		return invalid("Content is required")
	case utf8.RuneCountInString(*summary) > maxSummaryLen:
		return invalid("Summary cannot be more than 500 characters")
	case *category == "":
		return invalid("Category is required")
	case !models.ValidCategory(*category):
		return invalid("Invalid category")
	}

	return nil
}

// validatePatch нормализует и проверяет присланные поля.
func validatePatch(p *ArticlePatch) error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
		if t == "" {
			return invalid("Title is required")
		}
		if utf8.RuneCountInString(t) > maxTitleLen {
			return invalid("Title cannot be more than 200 characters")
		}
	}

	if p.Content != nil {
		c := strings.TrimSpace(*p.Content)
		p.Content = &c
		if c == "" {
			return invalid("Content is required")
		}
	}

	if p.Summary != nil {
		sm := strings.TrimSpace(*p.Summary)
		p.Summary = &sm
		if utf8.RuneCountInString(sm) > maxSummaryLen {
			return invalid("Summary cannot be more than 500 characters")
		}
	}

	if p.Category != nil && !models.ValidCategory(*p.Category) {
		return invalid("Invalid category")
	}

	if p.Status != nil && !p.Status.Valid() {
		return invalid("Invalid status")
	}

	if p.Image != nil {
		img := strings.TrimSpace(*p.Image)
		p.Image = &img
	}

	return nil
}

// slugify: нижний регистр, только [a-z0-9 ], пробельные серии -> "-", суффикс "-<ts>".
// Заголовок без латиницы и цифр даёт основу "article".
func slugify(title string, ts int64) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}

	base := strings.Join(strings.Fields(b.String()), "-")
	if base == "" {
		base = "article"
	}

	return base + "-" + strconv.FormatInt(ts, 10)
}

// splitTags разбивает строку по запятым, обрезает пробелы,
// выкидывает пустые и повторяющиеся значения с сохранением порядка.
func splitTags(raw string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})

	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}

		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}
