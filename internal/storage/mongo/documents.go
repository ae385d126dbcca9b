package mongo

import (
	"strings"
	"time"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

type articleDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Slug        string               `bson:"slug"`
	Content     string               `bson:"content,omitempty"`
	Summary     string               `bson:"summary"`
	Category    string               `bson:"category"`
	Tags        []string             `bson:"tags"`
	Image       string               `bson:"image"`
	Author      primitive.ObjectID   `bson:"author"`
	Status      string               `bson:"status"`
	Likes       []primitive.ObjectID `bson:"likes"`
	LikesCount  int                  `bson:"likes_count"`
	Views       int64                `bson:"views"`
	IsFeatured  bool                 `bson:"is_featured"`
	PublishedAt *time.Time           `bson:"published_at,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type commentDoc struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	News       primitive.ObjectID   `bson:"news"`
	Parent     *primitive.ObjectID  `bson:"parent_comment"`
	User       primitive.ObjectID   `bson:"user"`
	Content    string               `bson:"content"`
	Likes      []primitive.ObjectID `bson:"likes"`
	LikesCount int                  `bson:"likes_count"`
	IsEdited   bool                 `bson:"is_edited"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
}

type userDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Email     string               `bson:"email"`
	Password  string               `bson:"password"`
	Avatar    string               `bson:"avatar"`
	Role      string               `bson:"role"`
	Favorites []primitive.ObjectID `bson:"favorites"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

// MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// parseOID трактует пустой/битый идентификатор как отсутствие записи.
func parseOID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, false
	}

	return oid, true
}

// parseOIDs пропускает некорректные идентификаторы.
func parseOIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := parseOID(id); ok {
			out = append(out, oid)
		}
	}

	return out
}

func hexes(oids []primitive.ObjectID) []string {
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		out = append(out, oid.Hex())
	}

	return out
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	return tags
}

func articleToDoc(a models.Article) (articleDoc, error) {
	author, ok := parseOID(a.AuthorID)
	if !ok {
		return articleDoc{}, errInvalidReference
	}

	doc := articleDoc{
		Title:      a.Title,
		Slug:       a.Slug,
		Content:    a.Content,
		Summary:    a.Summary,
		Category:   a.Category,
		Tags:       nonNilTags(a.Tags),
		Image:      a.Image,
		Author:     author,
		Status:     string(a.Status),
		Likes:      []primitive.ObjectID{},
		LikesCount: 0,
		Views:      a.Views,
		IsFeatured: a.IsFeatured,
		CreatedAt:  toMS(a.CreatedAt),
		UpdatedAt:  toMS(a.UpdatedAt),
	}

	if a.PublishedAt != nil {
		t := toMS(*a.PublishedAt)
		doc.PublishedAt = &t
	}

	return doc, nil
}

func (d articleDoc) toModel() models.Article {
	a := models.Article{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Slug:       d.Slug,
		Content:    d.Content,
		Summary:    d.Summary,
		Category:   d.Category,
		Tags:       nonNilTags(d.Tags),
		Image:      d.Image,
		AuthorID:   d.Author.Hex(),
		Status:     models.Status(d.Status),
		Likes:      hexes(d.Likes),
		LikesCount: d.LikesCount,
		Views:      d.Views,
		IsFeatured: d.IsFeatured,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}

	if d.PublishedAt != nil {
		t := d.PublishedAt.UTC()
		a.PublishedAt = &t
	}

	return a
}

func (d commentDoc) toModel() models.Comment {
	c := models.Comment{
		ID:         d.ID.Hex(),
		ArticleID:  d.News.Hex(),
		AuthorID:   d.User.Hex(),
		Content:    d.Content,
		Likes:      hexes(d.Likes),
		LikesCount: d.LikesCount,
		IsEdited:   d.IsEdited,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}

	if d.Parent != nil {
		c.ParentID = d.Parent.Hex()
	}

	return c
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Avatar:       d.Avatar,
		Role:         models.Role(d.Role),
		Favorites:    hexes(d.Favorites),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// togglePipeline строит update-конвейер «убрать, если есть; иначе добавить»
// для массива field. Если countField не пуст, он пересчитывается как $size(field).
// Вся операция выполняется одним FindOneAndUpdate, то есть атомарно для документа.
func togglePipeline(field, countField string, value primitive.ObjectID, now time.Time) mongodriver.Pipeline {
	arr := bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}

	toggled := bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{value, arr}}}},
		{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: arr},
			{Key: "as", Value: "x"},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$x", value}}}},
		}}}},
		{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{arr, bson.A{value}}}}},
	}}}

	pipeline := mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: toggled},
			{Key: "updated_at", Value: now},
		}}},
	}

	if countField != "" {
		pipeline = append(pipeline, bson.D{{Key: "$set", Value: bson.D{
			{Key: countField, Value: bson.D{{Key: "$size", Value: "$" + field}}},
		}}})
	}

	return pipeline
}

func containsOID(list []primitive.ObjectID, v primitive.ObjectID) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}

	return false
}
