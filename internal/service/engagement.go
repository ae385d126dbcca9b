package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/pribylovaa/go-news-portal/pkg/log"
)

// ToggleArticleLike переключает лайк пользователя на статье.
// Возвращает новое состояние и likesCount, равный размеру множества лайков.
func (s *Service) ToggleArticleLike(ctx context.Context, articleID, userID string) (models.Toggle, error) {
	const op = "service.engagement.ToggleArticleLike"

	lg := log.Op(ctx, op).With(slog.String("article_id", articleID), slog.String("user_id", userID))

	t, err := s.storage.ToggleArticleLike(ctx, articleID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("article_not_found")
			return models.Toggle{}, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		lg.Error("article_like_toggle_failed", slog.String("err", err.Error()))
		return models.Toggle{}, internal(op, err)
	}

	lg.Debug("article_like_toggled", slog.Bool("liked", t.Active), slog.Int("likes_count", t.Count))

	return t, nil
}

// ToggleFavorite переключает статью в избранном пользователя.
// Статья должна существовать; изменяется запись пользователя.
func (s *Service) ToggleFavorite(ctx context.Context, userID, articleID string) (models.Toggle, error) {
	const op = "service.engagement.ToggleFavorite"

	lg := log.Op(ctx, op).With(slog.String("article_id", articleID), slog.String("user_id", userID))

	if _, err := s.storage.ArticleByID(ctx, articleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("article_not_found")
			return models.Toggle{}, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
		}

		lg.Error("article_lookup_failed", slog.String("err", err.Error()))
		return models.Toggle{}, internal(op, err)
	}

	t, err := s.storage.ToggleFavorite(ctx, userID, articleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user_not_found")
			return models.Toggle{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("favorite_toggle_failed", slog.String("err", err.Error()))
		return models.Toggle{}, internal(op, err)
	}

	lg.Debug("favorite_toggled", slog.Bool("favorited", t.Active))

	return t, nil
}

// ToggleCommentLike переключает лайк пользователя на комментарии.
func (s *Service) ToggleCommentLike(ctx context.Context, commentID, userID string) (models.Toggle, error) {
	const op = "service.engagement.ToggleCommentLike"

	lg := log.Op(ctx, op).With(slog.String("comment_id", commentID), slog.String("user_id", userID))

	t, err := s.storage.ToggleCommentLike(ctx, commentID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment_not_found")
			return models.Toggle{}, fmt.Errorf("%s: %w", op, ErrCommentNotFound)
		}

		lg.Error("comment_like_toggle_failed", slog.String("err", err.Error()))
		return models.Toggle{}, internal(op, err)
	}

	lg.Debug("comment_like_toggled", slog.Bool("liked", t.Active), slog.Int("likes_count", t.Count))

	return t, nil
}
