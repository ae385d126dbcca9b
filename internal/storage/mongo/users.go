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

// CreateUser вставляет пользователя с пустым избранным. Повтор email: storage.ErrConflict.
func (m *Mongo) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	const op = "storage/mongo/CreateUser"

	now := toMS(time.Now())
	doc := userDoc{
		Name:      u.Name,
		Email:     strings.ToLower(strings.TrimSpace(u.Email)),
		Password:  u.PasswordHash,
		Avatar:    u.Avatar,
		Role:      string(u.Role),
		Favorites: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := m.users.InsertOne(ctx, doc)
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

// UserByID возвращает пользователя по идентификатору.
func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	oid, ok := parseOID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return m.findUser(ctx, op, bson.D{{Key: "_id", Value: oid}})
}

// UserByEmail возвращает пользователя по email (без учёта регистра).
func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage/mongo/UserByEmail"

	return m.findUser(ctx, op, bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}})
}

// UsersByIDs возвращает пользователей по списку идентификаторов.
func (m *Mongo) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	const op = "storage/mongo/UsersByIDs"

	oids := parseOIDs(ids)
	if len(oids) == 0 {
		return []models.User{}, nil
	}

	cur, err := m.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}

	return out, nil
}

// UpdateProfile меняет имя и/или аватар.
func (m *Mongo) UpdateProfile(ctx context.Context, id string, name, avatar *string) (*models.User, error) {
	const op = "storage/mongo/UpdateProfile"

	oid, ok := parseOID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	set := bson.D{{Key: "updated_at", Value: toMS(time.Now())}}
	if name != nil {
		set = append(set, bson.E{Key: "name", Value: *name})
	}
	if avatar != nil {
		set = append(set, bson.E{Key: "avatar", Value: *avatar})
	}

	var doc userDoc
	err := m.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
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

// UpdatePassword заменяет хэш пароля.
func (m *Mongo) UpdatePassword(ctx context.Context, id, hash string) error {
	const op = "storage/mongo/UpdatePassword"

	oid, ok := parseOID(id)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.users.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// ToggleFavorite атомарно переключает статью в избранном пользователя.
// Count: размер избранного после операции.
func (m *Mongo) ToggleFavorite(ctx context.Context, userID, articleID string) (models.Toggle, error) {
	const op = "storage/mongo/ToggleFavorite"

	uid, ok := parseOID(userID)
	if !ok {
		return models.Toggle{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	aid, ok := parseOID(articleID)
	if !ok {
		return models.Toggle{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc userDoc
	err := m.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: uid}},
		togglePipeline("favorites", "", aid, toMS(time.Now())),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return models.Toggle{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Toggle{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Toggle{Active: containsOID(doc.Favorites, aid), Count: len(doc.Favorites)}, nil
}

// DeleteUserByEmail удаляет учётную запись по email.
func (m *Mongo) DeleteUserByEmail(ctx context.Context, email string) error {
	const op = "storage/mongo/DeleteUserByEmail"

	res, err := m.users.DeleteOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (m *Mongo) findUser(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var doc userDoc
	if err := m.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}
