package service

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/pkg/log"
	"golang.org/x/sync/errgroup"
)

const recentArticlesLimit = 5

// Stats собирает сводку для админки.
// Подсчёты независимы и выполняются параллельно, без общей транзакции.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	const op = "service.stats.Stats"

	var (
		out    models.Stats
		recent []models.Article
	)

	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, f models.ArticleFilter) {
		g.Go(func() error {
			n, err := s.storage.CountArticles(gctx, f)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&out.TotalNews, models.ArticleFilter{})
	count(&out.PublishedNews, models.ArticleFilter{Status: models.StatusPublished})
	count(&out.DraftNews, models.ArticleFilter{Status: models.StatusDraft})
	count(&out.FeaturedNews, models.ArticleFilter{FeaturedOnly: true})

	g.Go(func() error {
		list, err := s.storage.CategoryCounts(gctx, "")
		if err != nil {
			return err
		}
		out.NewsByCategory = list
		return nil
	})

	g.Go(func() error {
		e, err := s.storage.EngagementTotals(gctx)
		if err != nil {
			return err
		}
		out.Engagement = e
		return nil
	})

	g.Go(func() error {
		list, _, err := s.storage.ListArticles(gctx, models.ArticleFilter{
			Sort:  models.SortCreatedDesc,
			Limit: recentArticlesLimit,
		})
		if err != nil {
			return err
		}
		recent = list
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Op(ctx, op).Error("stats_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if out.NewsByCategory == nil {
		out.NewsByCategory = []models.CategoryCount{}
	}

	out.RecentNews = make([]models.RecentArticle, 0, len(recent))
	for _, a := range recent {
		out.RecentNews = append(out.RecentNews, models.RecentArticle{
			ID:         a.ID,
			Title:      a.Title,
			Status:     a.Status,
			CreatedAt:  a.CreatedAt,
			Views:      a.Views,
			LikesCount: a.LikesCount,
		})
	}

	return &out, nil
}
