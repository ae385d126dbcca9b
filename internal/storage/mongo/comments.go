package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateComment создаёт комментарий (корневой или ответ).
//   - Для ответа родитель должен существовать в той же статье, иначе storage.ErrParentNotFound.
//   - Ответ на ответ привязывается к корню ветки, так что глубина не превышает двух уровней.
func (m *Mongo) CreateComment(ctx context.Context, c models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	newsOID, ok := parseOID(c.ArticleID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	userOID, ok := parseOID(c.AuthorID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, errInvalidReference)
	}

	now := toMS(time.Now())
	doc := commentDoc{
		News:      newsOID,
		User:      userOID,
		Content:   c.Content,
		Likes:     []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if c.ParentID != "" {
		parentOID, ok := parseOID(c.ParentID)
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		var parent commentDoc
		err := m.comments.FindOne(ctx, bson.D{
			{Key: "_id", Value: parentOID},
			{Key: "news", Value: newsOID},
		}).Decode(&parent)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
			}

			return nil, fmt.Errorf("%s: find parent: %w", op, err)
		}

		root := parent.ID
		if parent.Parent != nil {
			root = *parent.Parent
		}
		doc.Parent = &root
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
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

// CommentByID возвращает комментарий по идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	oid, ok := parseOID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// ListTopLevel возвращает корневые комментарии статьи.
// Сортировка: created_at DESC, _id DESC.
func (m *Mongo) ListTopLevel(ctx context.Context, articleID string, offset, limit int64) ([]models.Comment, int64, error) {
	const op = "storage/mongo/ListTopLevel"

	newsOID, ok := parseOID(articleID)
	if !ok {
		return []models.Comment{}, 0, nil
	}

	filter := bson.D{
		{Key: "news", Value: newsOID},
		{Key: "parent_comment", Value: nil},
	}

	total, err := m.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(offset)
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	items, err := m.findComments(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return items, total, nil
}

// ListReplies возвращает ответы на перечисленные корни одним запросом.
// Сортировка: created_at ASC, _id ASC.
func (m *Mongo) ListReplies(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	const op = "storage/mongo/ListReplies"

	oids := parseOIDs(parentIDs)
	if len(oids) == 0 {
		return []models.Comment{}, nil
	}

	filter := bson.D{{Key: "parent_comment", Value: bson.D{{Key: "$in", Value: oids}}}}
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	items, err := m.findComments(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// UpdateCommentContent заменяет текст и помечает комментарий отредактированным.
func (m *Mongo) UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error) {
	const op = "storage/mongo/UpdateCommentContent"

	oid, ok := parseOID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	err := m.comments.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "content", Value: content},
			{Key: "is_edited", Value: true},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
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

// DeleteCommentThread удаляет ответы комментария, затем сам комментарий (жёсткое удаление).
func (m *Mongo) DeleteCommentThread(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteCommentThread"

	oid, ok := parseOID(id)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	err := m.withTx(ctx, func(ctx context.Context) error {
		if _, err := m.comments.DeleteMany(ctx, bson.D{{Key: "parent_comment", Value: oid}}); err != nil {
			return fmt.Errorf("delete replies: %w", err)
		}

		res, err := m.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
		if err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}

		if res.DeletedCount == 0 {
			return storage.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ToggleCommentLike атомарно переключает членство userID в likes комментария.
func (m *Mongo) ToggleCommentLike(ctx context.Context, commentID, userID string) (models.Toggle, error) {
	const op = "storage/mongo/ToggleCommentLike"

	oid, ok := parseOID(commentID)
	if !ok {
		return models.Toggle{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	uid, ok := parseOID(userID)
	if !ok {
		return models.Toggle{}, fmt.Errorf("%s: %w", op, errInvalidReference)
	}

	var doc commentDoc
	err := m.comments.FindOneAndUpdate(ctx,
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

func (m *Mongo) findComments(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]models.Comment, error) {
	cur, err := m.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]models.Comment, 0)
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	return items, nil
}
