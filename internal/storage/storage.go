// storage описывает контракты хранилищ news-portal и общие ошибки.
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/pribylovaa/go-news-portal/internal/models"
)

var (
	// ErrNotFound: сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict: конфликт уникальности (slug, email).
	ErrConflict = errors.New("conflict")
	// ErrParentNotFound: указан parent_id, но родитель не найден в этой статье.
	ErrParentNotFound = errors.New("parent not found")
)

// ArticleStorage описывает операции над статьями.
type ArticleStorage interface {
	// CreateArticle сохраняет новую статью. ID проставляется хранилищем.
	// Возможные ошибки: ErrConflict (повтор slug).
	CreateArticle(ctx context.Context, a models.Article) (*models.Article, error)

	// ArticleByID возвращает статью в любом статусе.
	// Некорректный id трактуется как ErrNotFound.
	ArticleByID(ctx context.Context, id string) (*models.Article, error)

	// UpdateArticle применяет частичное обновление и возвращает новое состояние.
	// Возможные ошибки: ErrNotFound, ErrConflict.
	UpdateArticle(ctx context.Context, id string, upd models.ArticleUpdate) (*models.Article, error)

	// DeleteArticle удаляет статью вместе с её комментариями.
	// Если запись не найдена: ErrNotFound.
	DeleteArticle(ctx context.Context, id string) error

	// ToggleFeatured атомарно инвертирует флаг is_featured.
	ToggleFeatured(ctx context.Context, id string) (*models.Article, error)

	// PublishedBySlug возвращает опубликованную статью по slug
	// и атомарно увеличивает счётчик просмотров на 1.
	PublishedBySlug(ctx context.Context, slug string) (*models.Article, error)

	// ListArticles возвращает выборку по фильтру и общее число подходящих записей.
	ListArticles(ctx context.Context, f models.ArticleFilter) ([]models.Article, int64, error)

	// CountArticles возвращает число записей по фильтру (сортировка/пагинация игнорируются).
	CountArticles(ctx context.Context, f models.ArticleFilter) (int64, error)

	// CategoryCounts группирует статьи по категориям (count DESC).
	// Пустой status: все статьи.
	CategoryCounts(ctx context.Context, status models.Status) ([]models.CategoryCount, error)

	// EngagementTotals суммирует просмотры и лайки по всем статьям.
	EngagementTotals(ctx context.Context) (models.Engagement, error)

	// ToggleArticleLike атомарно добавляет/убирает пользователя из множества лайков.
	ToggleArticleLike(ctx context.Context, articleID, userID string) (models.Toggle, error)
}

// CommentStorage описывает операции над комментариями.
type CommentStorage interface {
	// CreateComment сохраняет комментарий. Для ответа проверяет, что родитель
	// существует и относится к той же статье; ответ на ответ привязывается к корню.
	// Возможные ошибки: ErrParentNotFound.
	CreateComment(ctx context.Context, c models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий. Если не найден: ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.Comment, error)

	// ListTopLevel возвращает корневые комментарии статьи (created_at DESC) и их общее число.
	ListTopLevel(ctx context.Context, articleID string, offset, limit int64) ([]models.Comment, int64, error)

	// ListReplies возвращает ответы на перечисленные комментарии (created_at ASC).
	ListReplies(ctx context.Context, parentIDs []string) ([]models.Comment, error)

	// UpdateCommentContent заменяет текст и выставляет is_edited=true.
	UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error)

	// DeleteCommentThread удаляет ответы комментария, затем сам комментарий.
	// Если комментарий не найден: ErrNotFound.
	DeleteCommentThread(ctx context.Context, id string) error

	// ToggleCommentLike атомарно добавляет/убирает пользователя из множества лайков.
	ToggleCommentLike(ctx context.Context, commentID, userID string) (models.Toggle, error)
}

// UserStorage описывает операции над учётными записями.
type UserStorage interface {
	// CreateUser сохраняет пользователя. Повтор email: ErrConflict.
	CreateUser(ctx context.Context, u models.User) (*models.User, error)

	// UserByID/UserByEmail возвращают пользователя или ErrNotFound.
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// UsersByIDs возвращает найденных пользователей; отсутствующие пропускаются.
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)

	// UpdateProfile меняет имя и/или аватар (nil: не менять).
	UpdateProfile(ctx context.Context, id string, name, avatar *string) (*models.User, error)

	// UpdatePassword заменяет хэш пароля.
	UpdatePassword(ctx context.Context, id, hash string) error

	// ToggleFavorite атомарно добавляет/убирает статью из избранного пользователя.
	ToggleFavorite(ctx context.Context, userID, articleID string) (models.Toggle, error)

	// DeleteUserByEmail удаляет учётную запись (используется сидером).
	DeleteUserByEmail(ctx context.Context, email string) error
}

// Storage: полный контракт документного хранилища.
type Storage interface {
	ArticleStorage
	CommentStorage
	UserStorage

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}

// ImageStorage: хранилище изображений статей.
type ImageStorage interface {
	// PutImage сохраняет объект и возвращает имя и публичный путь.
	PutImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.StoredImage, error)
}
