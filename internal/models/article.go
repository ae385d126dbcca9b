// models содержит доменные сущности news-portal.
// Эти типы используются слоями бизнес-логики, хранилища и HTTP-транспорта.
package models

import "time"

// Status: жизненный цикл статьи.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid сообщает, входит ли статус в допустимый набор.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}

	return false
}

// Categories: фиксированный набор рубрик.
var Categories = []string{
	"politics",
	"business",
	"technology",
	"sports",
	"entertainment",
	"health",
	"science",
	"world",
	"local",
}

// ValidCategory сообщает, входит ли категория в фиксированный набор.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}

	return false
}

// Author: проекция пользователя, встраиваемая в статьи и комментарии.
type Author struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Article: доменная сущность статьи.
//
// Особенности:
//   - ID/AuthorID: hex ObjectID MongoDB;
//   - LikesCount всегда равен len(Likes), считается хранилищем от размера множества;
//   - PublishedAt == nil, пока статья ни разу не публиковалась;
//   - временные метки в UTC.
type Article struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Image       string     `json:"image"`
	AuthorID    string     `json:"-"`
	Author      *Author    `json:"author,omitempty"`
	Status      Status     `json:"status"`
	Likes       []string   `json:"likes"`
	LikesCount  int        `json:"likesCount"`
	Views       int64      `json:"views"`
	IsFeatured  bool       `json:"isFeatured"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HasLike сообщает, есть ли пользователь среди лайкнувших.
func (a *Article) HasLike(userID string) bool {
	return contains(a.Likes, userID)
}

// ArticleDetail: статья в детальной выдаче с отметками текущего читателя.
type ArticleDetail struct {
	Article
	IsLiked     bool `json:"isLiked"`
	IsFavorited bool `json:"isFavorited"`
}

// ArticleUpdate: набор полей для частичного обновления статьи.
// nil означает «не менять».
type ArticleUpdate struct {
	Title       *string
	Slug        *string
	Content     *string
	Summary     *string
	Category    *string
	Tags        *[]string
	Image       *string
	Status      *Status
	IsFeatured  *bool
	PublishedAt *time.Time
	UpdatedAt   time.Time
}

// SortOrder: порядок выдачи статей.
type SortOrder int

const (
	// SortPublishedDesc: сначала свежие публикации.
	SortPublishedDesc SortOrder = iota
	// SortCreatedDesc: сначала недавно созданные (админка).
	SortCreatedDesc
	// SortTrending: по просмотрам, затем по лайкам.
	SortTrending
)

// Related: условие «та же категория ИЛИ пересечение тегов».
type Related struct {
	Category string
	Tags     []string
}

// ArticleFilter: параметры выборки статей.
//
// Особенности:
//   - пустые строковые поля не участвуют в фильтре;
//   - IDs != nil ограничивает выборку перечисленными статьями (пустой срез -> пустой результат);
//   - Limit == 0 означает «без ограничения».
type ArticleFilter struct {
	Status       Status
	Category     string
	Tag          string
	Search       string
	FeaturedOnly bool
	IDs          []string
	ExcludeID    string
	Related      *Related
	Sort         SortOrder
	Offset       int64
	Limit        int64
	WithContent  bool
}

// CategoryCount: количество статей в рубрике.
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int64  `json:"count"`
}

// Toggle: результат переключения членства в множестве.
type Toggle struct {
	Active bool
	Count  int
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}

	return false
}
