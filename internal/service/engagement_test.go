package service

import (
	"context"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/stretchr/testify/require"
)

// setToggle: эталонная модель переключателя над множеством:
// состав меняется на симметричную разность, счётчик равен размеру множества.
type setToggle struct {
	mu  sync.Mutex
	set map[string]struct{}
}

func (s *setToggle) toggle(_ context.Context, _ string, id string) (models.Toggle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.set[id]; ok {
		delete(s.set, id)
		return models.Toggle{Active: false, Count: len(s.set)}, nil
	}

	s.set[id] = struct{}{}
	return models.Toggle{Active: true, Count: len(s.set)}, nil
}

func TestToggleArticleLike_DoubleToggleRestores(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	model := &setToggle{set: map[string]struct{}{"other": {}}}
	ms.EXPECT().ToggleArticleLike(gomock.Any(), articleID, readerID).DoAndReturn(
		func(ctx context.Context, a, u string) (models.Toggle, error) { return model.toggle(ctx, a, u) },
	).Times(2)

	on, err := s.ToggleArticleLike(context.Background(), articleID, readerID)
	require.NoError(t, err)
	require.True(t, on.Active)
	require.Equal(t, 2, on.Count)

	off, err := s.ToggleArticleLike(context.Background(), articleID, readerID)
	require.NoError(t, err)
	require.False(t, off.Active)
	require.Equal(t, 1, off.Count)
	require.Len(t, model.set, 1)
}

func TestToggleArticleLike_Errors(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().ToggleArticleLike(gomock.Any(), articleID, readerID).Return(models.Toggle{}, storage.ErrNotFound)
	_, err := s.ToggleArticleLike(context.Background(), articleID, readerID)
	require.ErrorIs(t, err, ErrArticleNotFound)

	ms.EXPECT().ToggleArticleLike(gomock.Any(), articleID, readerID).Return(models.Toggle{}, errDB)
	_, err = s.ToggleArticleLike(context.Background(), articleID, readerID)
	require.ErrorIs(t, err, ErrInternal)
}

func TestToggleFavorite(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	// Статья должна существовать.
	ms.EXPECT().ArticleByID(gomock.Any(), articleID).Return(nil, storage.ErrNotFound)
	_, err := s.ToggleFavorite(context.Background(), readerID, articleID)
	require.ErrorIs(t, err, ErrArticleNotFound)

	ms.EXPECT().ArticleByID(gomock.Any(), articleID).Return(&models.Article{ID: articleID}, nil)
	ms.EXPECT().ToggleFavorite(gomock.Any(), readerID, articleID).Return(models.Toggle{Active: true}, nil)
	tg, err := s.ToggleFavorite(context.Background(), readerID, articleID)
	require.NoError(t, err)
	require.True(t, tg.Active)

	ms.EXPECT().ArticleByID(gomock.Any(), articleID).Return(&models.Article{ID: articleID}, nil)
	ms.EXPECT().ToggleFavorite(gomock.Any(), readerID, articleID).Return(models.Toggle{}, storage.ErrNotFound)
	_, err = s.ToggleFavorite(context.Background(), readerID, articleID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggleCommentLike(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	model := &setToggle{set: map[string]struct{}{}}
	ms.EXPECT().ToggleCommentLike(gomock.Any(), commentID, gomock.Any()).DoAndReturn(
		func(ctx context.Context, c, u string) (models.Toggle, error) { return model.toggle(ctx, c, u) },
	).Times(8)

	// Конкурентные переключения разных пользователей: счётчик = размер множества.
	var wg sync.WaitGroup
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	errs := make(chan error, len(users))
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := s.ToggleCommentLike(context.Background(), commentID, u)
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, model.set, len(users))

	tg, err := s.ToggleCommentLike(context.Background(), commentID, "u1")
	require.NoError(t, err)
	require.False(t, tg.Active)
	require.Equal(t, len(users)-1, tg.Count)

	tg, err = s.ToggleCommentLike(context.Background(), commentID, "u1")
	require.NoError(t, err)
	require.True(t, tg.Active)
	require.Equal(t, len(users), tg.Count)
}

func TestToggleCommentLike_NotFound(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().ToggleCommentLike(gomock.Any(), commentID, readerID).Return(models.Toggle{}, storage.ErrNotFound)
	_, err := s.ToggleCommentLike(context.Background(), commentID, readerID)
	require.ErrorIs(t, err, ErrCommentNotFound)
}
