package models

import "time"

// Engagement: суммарные просмотры и лайки по всем статьям.
type Engagement struct {
	TotalViews int64 `json:"totalViews"`
	TotalLikes int64 `json:"totalLikes"`
}

// RecentArticle: минимальная проекция статьи для ленты последних.
type RecentArticle struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	Views      int64     `json:"views"`
	LikesCount int       `json:"likesCount"`
}

// Stats: сводка для панели администратора.
// Счётчики читаются независимо, без общей транзакции.
type Stats struct {
	TotalNews      int64           `json:"totalNews"`
	PublishedNews  int64           `json:"publishedNews"`
	DraftNews      int64           `json:"draftNews"`
	FeaturedNews   int64           `json:"featuredNews"`
	NewsByCategory []CategoryCount `json:"newsByCategory"`
	Engagement     Engagement      `json:"engagement"`
	RecentNews     []RecentArticle `json:"recentNews"`
}

// StoredImage: результат загрузки изображения.
type StoredImage struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}
