// mongo реализует storage.Storage поверх MongoDB.
// mongo.go: подключение, индексы и транзакционная обёртка;
// articles.go/comments.go/users.go: операции по коллекциям;
// documents.go: BSON-представления и конвертация в доменные модели.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-news-portal/internal/config"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	articlesCollection = "articles"
	commentsCollection = "comments"
	usersCollection    = "users"
	defaultDBName      = "news_portal"
)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	cfg      *config.Config
	client   *mongodriver.Client
	db       *mongodriver.Database
	articles *mongodriver.Collection
	comments *mongodriver.Collection
	users    *mongodriver.Collection
}

// New подключается к MongoDB, проверяет его, подготавливает коллекции и обеспечивает индексацию.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(cfg.DB.URL))

	m := &Mongo{
		cfg:      cfg,
		client:   cli,
		db:       db,
		articles: db.Collection(articlesCollection),
		comments: db.Collection(commentsCollection),
		users:    db.Collection(usersCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

// Close отключает клиента.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping проверяет доступность primary (используется readiness-пробой).
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// ensureIndexes создаёт индексы всех коллекций:
//   - articles: уникальный slug, текстовый индекс title/content/tags,
//     выдачи по статусу с сортировкой по published_at/views, админская по created_at;
//   - comments: корни статьи (news + parent_comment + created_at desc), ответы (parent_comment + created_at asc);
//   - users: уникальный email.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	articleIdx := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "content", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("text_title_content_tags"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: -1}},
			Options: options.Index().SetName("status_published_desc"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "published_at", Value: -1}},
			Options: options.Index().SetName("status_category_published_desc"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "views", Value: -1}, {Key: "likes_count", Value: -1}},
			Options: options.Index().SetName("status_trending"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
	}

	if _, err := m.articles.Indexes().CreateMany(ctx, articleIdx); err != nil {
		return fmt.Errorf("mongo ensure indexes (articles): %w", err)
	}

	commentIdx := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "news", Value: 1}, {Key: "parent_comment", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("news_parent_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "parent_comment", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("parent_created_asc"),
		},
	}

	if _, err := m.comments.Indexes().CreateMany(ctx, commentIdx); err != nil {
		return fmt.Errorf("mongo ensure indexes (comments): %w", err)
	}

	userIdx := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	}

	if _, err := m.users.Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("mongo ensure indexes (users): %w", err)
	}

	return nil
}

// withTx выполняет fn в многодокументной транзакции, если она включена конфигом.
// Без транзакций шаги выполняются последовательно; сбой между шагами оставляет
// «сирот», которые не видны в выдаче.
func (m *Mongo) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.cfg.DB.Transactions {
		return fn(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongodriver.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает разумное значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Storage = (*Mongo)(nil)
