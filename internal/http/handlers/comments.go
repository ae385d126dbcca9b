package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/go-news-portal/internal/http/apierrors"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
)

// createCommentRequest: тело POST /news/{id}/comments.
type createCommentRequest struct {
	Content         string `json:"content"         validate:"max=1000"          label:"Comment"`
	ParentCommentID string `json:"parentCommentId" validate:"omitempty,mongodb" label:"parent comment id"`
}

// updateCommentRequest: тело PUT /comments/{id}.
type updateCommentRequest struct {
	Content string `json:"content" validate:"max=1000" label:"Comment"`
}

// commentThread: корневой комментарий с ответами; replies есть всегда.
type commentThread struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

// ListComments: GET /news/{id}/comments.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListComments(r.Context(), chi.URLParam(r, "id"), pageRequest(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	threads := make([]commentThread, 0, len(page.Items))
	for _, c := range page.Items {
		replies := c.Replies
		if replies == nil {
			replies = []models.Comment{}
		}
		threads = append(threads, commentThread{Comment: c, Replies: replies})
	}

	writeJSON(w, http.StatusOK, newPageResponse(models.NewPage(threads, page.Total, page.Page, page.Limit)))
}

// AddComment: POST /news/{id}/comments.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	var in createCommentRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, err := h.svc.AddComment(r.Context(), service.AddCommentInput{
		ArticleID: chi.URLParam(r, "id"),
		AuthorID:  id.UserID,
		Content:   in.Content,
		ParentID:  in.ParentCommentID,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ok(c))
}

// UpdateComment: PUT /comments/{id}, только автор.
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	var in updateCommentRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, err := h.svc.UpdateComment(r.Context(), chi.URLParam(r, "id"), in.Content, id.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(c))
}

// DeleteComment: DELETE /comments/{id}, автор или администратор.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	if err := h.svc.DeleteComment(r.Context(), chi.URLParam(r, "id"), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Comment deleted successfully"})
}

// ToggleCommentLike: POST /comments/{id}/like.
func (h *Handlers) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	t, err := h.svc.ToggleCommentLike(r.Context(), chi.URLParam(r, "id"), id.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	msg := "Comment unliked"
	if t.Active {
		msg = "Comment liked"
	}

	writeJSON(w, http.StatusOK, toggleResponse{Success: true, Message: msg, IsLiked: t.Active, LikesCount: t.Count})
}
