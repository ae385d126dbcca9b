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

// AddCommentInput: параметры нового комментария.
// ParentID пустой для корневого комментария.
type AddCommentInput struct {
	ArticleID string
	AuthorID  string
	Content   string
	ParentID  string
}

// AddComment добавляет комментарий к статье.
//
// Правила:
//   - статья должна существовать, иначе ErrArticleNotFound;
//   - родитель должен существовать в той же статье, иначе ErrParentNotFound;
//   - ответ на ответ привязывается к корню ветки;
//   - автор возвращается проекцией (имя, аватар).
func (s *Service) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	const op = "service.comments.AddComment"

	lg := log.Op(ctx, op).With(
		slog.String("article_id", in.ArticleID),
		slog.String("author_id", in.AuthorID),
	)

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("comment_create_invalid", slog.String("reason", "empty_content"))
		return nil, fmt.Errorf("%s: %w", op, invalid("Comment content is required"))
	}

	if _, err := s.storage.ArticleByID(ctx, in.ArticleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("article_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		lg.Error("article_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	c, err := s.storage.CreateComment(ctx, models.Comment{
		ArticleID: in.ArticleID,
		ParentID:  strings.TrimSpace(in.ParentID),
		AuthorID:  in.AuthorID,
		Content:   in.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			lg.Warn("parent_comment_not_found", slog.String("parent_id", in.ParentID))
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("article_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		default:
			lg.Error("comment_create_failed", slog.String("err", err.Error()))
			return nil, internal(op, err)
		}
	}

	if err := s.attachCommentUsers(ctx, []*models.Comment{c}); err != nil {
		return nil, internal(op, err)
	}

	lg.Info("comment_created", slog.String("id", c.ID), slog.Bool("reply", !c.IsTopLevel()))

	return c, nil
}

// ListComments возвращает страницу корневых комментариев (новые сверху),
// к каждому приложены все его ответы (старые сверху).
func (s *Service) ListComments(ctx context.Context, articleID string, pr PageRequest) (*models.Page[models.Comment], error) {
	const op = "service.comments.ListComments"

	lg := log.Op(ctx, op).With(slog.String("article_id", articleID))

	p := s.normalize(pr, s.cfg.Limits.Comments)

	roots, total, err := s.storage.ListTopLevel(ctx, articleID, p.offset(), int64(p.Limit))
	if err != nil {
		lg.Error("list_comments_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	ids := make([]string, 0, len(roots))
	for i := range roots {
		ids = append(ids, roots[i].ID)
	}

	var replies []models.Comment
	if len(ids) > 0 {
		replies, err = s.storage.ListReplies(ctx, ids)
		if err != nil {
			lg.Error("list_replies_failed", slog.String("err", err.Error()))
			return nil, internal(op, err)
		}
	}

	all := make([]*models.Comment, 0, len(roots)+len(replies))
	for i := range roots {
		all = append(all, &roots[i])
	}
	for i := range replies {
		all = append(all, &replies[i])
	}

	if err := s.attachCommentUsers(ctx, all); err != nil {
		return nil, internal(op, err)
	}

	byParent := make(map[string][]models.Comment, len(roots))
	for _, r := range replies {
		byParent[r.ParentID] = append(byParent[r.ParentID], r)
	}

	for i := range roots {
		roots[i].Replies = byParent[roots[i].ID]
		if roots[i].Replies == nil {
			roots[i].Replies = []models.Comment{}
		}
	}

	return models.NewPage(roots, total, p.Page, p.Limit), nil
}

// UpdateComment меняет текст комментария. Разрешено только автору.
func (s *Service) UpdateComment(ctx context.Context, id, content, actorID string) (*models.Comment, error) {
	const op = "service.comments.UpdateComment"

	lg := log.Op(ctx, op).With(slog.String("id", id), slog.String("actor_id", actorID))

	content = strings.TrimSpace(content)
	if content == "" {
		lg.Warn("comment_update_invalid", slog.String("reason", "empty_content"))
		return nil, fmt.Errorf("%s: %w", op, invalid("Comment content is required"))
	}

	cur, err := s.commentByID(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if cur.AuthorID != actorID {
		lg.Warn("comment_update_forbidden")
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	out, err := s.storage.UpdateCommentContent(ctx, id, content)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrCommentNotFound)
		}

		lg.Error("comment_update_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if err := s.attachCommentUsers(ctx, []*models.Comment{out}); err != nil {
		return nil, internal(op, err)
	}

	lg.Info("comment_updated")

	return out, nil
}

// DeleteComment удаляет комментарий вместе с ответами.
// Разрешено автору или администратору.
func (s *Service) DeleteComment(ctx context.Context, id string, actor models.Identity) error {
	const op = "service.comments.DeleteComment"

	lg := log.Op(ctx, op).With(slog.String("id", id), slog.String("actor_id", actor.UserID))

	cur, err := s.commentByID(ctx, op, id)
	if err != nil {
		return err
	}

	if cur.AuthorID != actor.UserID && !actor.IsAdmin() {
		lg.Warn("comment_delete_forbidden")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.DeleteCommentThread(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment_not_found")
			return fmt.Errorf("%s: %w", op, ErrCommentNotFound)
		}

		lg.Error("comment_delete_failed", slog.String("err", err.Error()))
		return internal(op, err)
	}

	lg.Info("comment_deleted", slog.Bool("by_admin", cur.AuthorID != actor.UserID))

	return nil
}

func (s *Service) commentByID(ctx context.Context, op, id string) (*models.Comment, error) {
	c, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Op(ctx, op).Warn("comment_not_found", slog.String("id", id))
			return nil, fmt.Errorf("%s: %w", op, ErrCommentNotFound)
		}

		log.Op(ctx, op).Error("comment_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	return c, nil
}

// attachCommentUsers подтягивает авторов комментариев (имя и аватар) одним запросом.
func (s *Service) attachCommentUsers(ctx context.Context, items []*models.Comment) error {
	ids := make([]string, 0, len(items))
	for _, c := range items {
		ids = append(ids, c.AuthorID)
	}

	authors, err := s.authorsByID(ctx, ids, false)
	if err != nil {
		return err
	}

	for _, c := range items {
		if au, ok := authors[c.AuthorID]; ok {
			c.User = au
		} else {
			c.User = &models.Author{ID: c.AuthorID}
		}
	}

	return nil
}
