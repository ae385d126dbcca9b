package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// errInvalidReference: ссылка на автора/пользователя не является ObjectID.
var errInvalidReference = errors.New("invalid reference id")

// CreateArticle вставляет статью. Множество лайков и счётчики начинаются с нуля.
// Повтор slug: storage.ErrConflict.
func (m *Mongo) CreateArticle(ctx context.Context, a models.Article) (*models.Article, error) {
	const op = "storage/mongo/CreateArticle"

	doc, err := articleToDoc(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.articles.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	out := doc.toModel()

	return &out, nil
}

// ArticleByID возвращает статью в любом статусе.
func (m *Mongo) ArticleByID(ctx context.Context, id string) (*models.Article, error) {
	const op = "storage/mongo/ArticleByID"

	oid, ok := parseOID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc articleDoc
	if err := m.articles.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// UpdateArticle применяет $set только для непустых полей ArticleUpdate.
func (m *Mongo) UpdateArticle(ctx context.Context, id string, upd models.ArticleUpdate) (*models.Article, error) {
	const op = "storage/mongo/UpdateArticle"

	oid, ok := parseOID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	set := bson.D{{Key: "updated_at", Value: toMS(upd.UpdatedAt)}}
	if upd.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *upd.Title})
	}
	if upd.Slug != nil {
		set = append(set, bson.E{Key: "slug", Value: *upd.Slug})
	}
	if upd.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *upd.Content})
	}
	if upd.Summary != nil {
		set = append(set, bson.E{Key: "summary", Value: *upd.Summary})
	}
	if upd.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *upd.Category})
	}
	if upd.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: nonNilTags(*upd.Tags)})
	}
	if upd.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *upd.Image})
	}
	if upd.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*upd.Status)})
	}
	if upd.IsFeatured != nil {
		set = append(set, bson.E{Key: "is_featured", Value: *upd.IsFeatured})
	}
	if upd.PublishedAt != nil {
		set = append(set, bson.E{Key: "published_at", Value: toMS(*upd.PublishedAt)})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc articleDoc
	err := m.articles.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongodriver.ErrNoDocuments):
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		case mongodriver.IsDuplicateKeyError(err):
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	out := doc.toModel()
	return &out, nil
}

// DeleteArticle удаляет статью, её комментарии и ссылки на неё из избранного.
func (m *Mongo) DeleteArticle(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteArticle"

	oid, ok := parseOID(id)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	err := m.withTx(ctx, func(ctx context.Context) error {
		res, err := m.articles.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
		if err != nil {
			return err
		}

		if res.DeletedCount == 0 {
			return storage.ErrNotFound
		}

		if _, err := m.comments.DeleteMany(ctx, bson.D{{Key: "news", Value: oid}}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}

		_, err = m.users.UpdateMany(ctx,
			bson.D{{Key: "favorites", Value: oid}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "favorites", Value: oid}}}},
		)
		if err != nil {
			return fmt.Errorf("pull favorites: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ToggleFeatured атомарно инвертирует is_featured.
func (m *Mongo) ToggleFeatured(ctx context.Context, id string) (*models.Article, error) {
	const op = "storage/mongo/ToggleFeatured"

	oid, ok := parseOID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	pipeline := mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "is_featured", Value: bson.D{{Key: "$not", Value: bson.A{"$is_featured"}}}},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
	}

	var doc articleDoc
	err := m.articles.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// PublishedBySlug находит опубликованную статью и атомарно инкрементирует views.
func (m *Mongo) PublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	const op = "storage/mongo/PublishedBySlug"

	filter := bson.D{
		{Key: "slug", Value: strings.TrimSpace(slug)},
		{Key: "status", Value: string(models.StatusPublished)},
	}

	var doc articleDoc
	err := m.articles.FindOneAndUpdate(ctx,
		filter,
		bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// ListArticles возвращает страницу статей и общее число подходящих записей.
func (m *Mongo) ListArticles(ctx context.Context, f models.ArticleFilter) ([]models.Article, int64, error) {
	const op = "storage/mongo/ListArticles"

	filter := buildArticleFilter(f)

	total, err := m.articles.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	findOpts := options.Find().SetSort(sortFor(f.Sort))
	if f.Offset > 0 {
		findOpts.SetSkip(f.Offset)
	}
	if f.Limit > 0 {
		findOpts.SetLimit(f.Limit)
	}
	if !f.WithContent {
		findOpts.SetProjection(bson.D{{Key: "content", Value: 0}})
	}

	cur, err := m.articles.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	items := make([]models.Article, 0)
	for cur.Next(ctx) {
		var doc articleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, total, nil
}

// CountArticles считает статьи по фильтру.
func (m *Mongo) CountArticles(ctx context.Context, f models.ArticleFilter) (int64, error) {
	const op = "storage/mongo/CountArticles"

	n, err := m.articles.CountDocuments(ctx, buildArticleFilter(f))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// CategoryCounts группирует статьи по category, сортировка count DESC, затем по имени.
func (m *Mongo) CategoryCounts(ctx context.Context, status models.Status) ([]models.CategoryCount, error) {
	const op = "storage/mongo/CategoryCounts"

	pipeline := mongodriver.Pipeline{}
	if status != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "status", Value: string(status)}}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	)

	cur, err := m.articles.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: aggregate: %w", op, err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]models.CategoryCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CategoryCount{Category: r.Category, Count: r.Count})
	}

	return out, nil
}

// EngagementTotals суммирует views и likes_count. Пустая коллекция -> нули.
func (m *Mongo) EngagementTotals(ctx context.Context) (models.Engagement, error) {
	const op = "storage/mongo/EngagementTotals"

	pipeline := mongodriver.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_views", Value: bson.D{{Key: "$sum", Value: "$views"}}},
			{Key: "total_likes", Value: bson.D{{Key: "$sum", Value: "$likes_count"}}},
		}}},
	}

	cur, err := m.articles.Aggregate(ctx, pipeline)
	if err != nil {
		return models.Engagement{}, fmt.Errorf("%s: aggregate: %w", op, err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		TotalViews int64 `bson:"total_views"`
		TotalLikes int64 `bson:"total_likes"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.Engagement{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	if len(rows) == 0 {
		return models.Engagement{}, nil
	}

	return models.Engagement{TotalViews: rows[0].TotalViews, TotalLikes: rows[0].TotalLikes}, nil
}

// ToggleArticleLike атомарно переключает членство userID в likes и пересчитывает likes_count.
func (m *Mongo) ToggleArticleLike(ctx context.Context, articleID, userID string) (models.Toggle, error) {
	const op = "storage/mongo/ToggleArticleLike"

	oid, ok := parseOID(articleID)
	if !ok {
		return models.Toggle{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	uid, ok := parseOID(userID)
	if !ok {
		return models.Toggle{}, fmt.Errorf("%s: %w", op, errInvalidReference)
	}

	var doc articleDoc
	err := m.articles.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		togglePipeline("likes", "likes_count", uid, toMS(time.Now())),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return models.Toggle{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Toggle{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Toggle{Active: containsOID(doc.Likes, uid), Count: doc.LikesCount}, nil
}

// buildArticleFilter переводит доменный фильтр в BSON.
func buildArticleFilter(f models.ArticleFilter) bson.D {
	filter := bson.D{}

	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}

	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}

	if f.Tag != "" {
		filter = append(filter, bson.E{Key: "tags", Value: f.Tag})
	}

	if f.FeaturedOnly {
		filter = append(filter, bson.E{Key: "is_featured", Value: true})
	}

	idCond := bson.D{}
	if f.IDs != nil {
		idCond = append(idCond, bson.E{Key: "$in", Value: parseOIDs(f.IDs)})
	}
	if ex, ok := parseOID(f.ExcludeID); ok {
		idCond = append(idCond, bson.E{Key: "$ne", Value: ex})
	}
	if len(idCond) > 0 {
		filter = append(filter, bson.E{Key: "_id", Value: idCond})
	}

	if f.Related != nil {
		tags := nonNilTags(f.Related.Tags)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "category", Value: f.Related.Category}},
			bson.D{{Key: "tags", Value: bson.D{{Key: "$in", Value: tags}}}},
		}})
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: s}}})
	}

	return filter
}

// sortFor возвращает порядок сортировки; _id добавлен для стабильности страниц.
func sortFor(s models.SortOrder) bson.D {
	switch s {
	case models.SortCreatedDesc:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	case models.SortTrending:
		return bson.D{{Key: "views", Value: -1}, {Key: "likes_count", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
