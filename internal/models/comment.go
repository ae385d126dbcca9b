package models

import "time"

// Comment: комментарий к статье.
//
// Особенности:
//   - ParentID == "" у корневого комментария;
//   - вложенность не глубже двух уровней: ответ всегда ссылается на корень;
//   - Replies заполняется только в древовидной выдаче.
type Comment struct {
	ID         string    `json:"_id"`
	ArticleID  string    `json:"news"`
	ParentID   string    `json:"parentComment,omitempty"`
	AuthorID   string    `json:"-"`
	User       *Author   `json:"user,omitempty"`
	Content    string    `json:"content"`
	Likes      []string  `json:"likes"`
	LikesCount int       `json:"likesCount"`
	IsEdited   bool      `json:"isEdited"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Replies    []Comment `json:"replies,omitempty"`
}

// IsTopLevel сообщает, является ли комментарий корневым.
func (c *Comment) IsTopLevel() bool { return c.ParentID == "" }
