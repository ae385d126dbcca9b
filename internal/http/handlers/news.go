package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/go-news-portal/internal/http/apierrors"
	"github.com/pribylovaa/go-news-portal/internal/http/middleware"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
)

// toggleResponse: результат лайка статьи или комментария.
type toggleResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	IsLiked    bool   `json:"isLiked"`
	LikesCount int    `json:"likesCount"`
}

// favoriteResponse: результат переключения избранного.
type favoriteResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IsFavorited bool   `json:"isFavorited"`
}

// ListNews: GET /news: опубликованные статьи с фильтрами category/tag/search.
func (h *Handlers) ListNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.svc.ListPublished(r.Context(), service.PublicListQuery{
		Category:    q.Get("category"),
		Tag:         q.Get("tag"),
		Search:      q.Get("search"),
		PageRequest: pageRequest(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPageResponse(page))
}

// GetBySlug: GET /news/{id}: детальная статья по slug, +1 просмотр.
// Для аутентифицированного читателя добавляет isLiked/isFavorited.
func (h *Handlers) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "id"))
	if slug == "" {
		apierrors.WriteError(w, r, service.ErrArticleNotFound)
		return
	}

	var viewer *models.Identity
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		viewer = &id
	}

	detail, err := h.svc.ArticleBySlug(r.Context(), slug, viewer)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(detail))
}

// Categories: GET /news/categories.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Categories(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(list))
}

// Featured: GET /news/featured?limit.
func (h *Handlers) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Featured(r.Context(), queryInt(r, "limit"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Success: true, Count: len(items), Data: items})
}

// Trending: GET /news/trending?limit.
func (h *Handlers) Trending(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Trending(r.Context(), queryInt(r, "limit"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Success: true, Count: len(items), Data: items})
}

// Related: GET /news/{id}/related.
func (h *Handlers) Related(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Related(r.Context(), chi.URLParam(r, "id"), queryInt(r, "limit"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Success: true, Count: len(items), Data: items})
}

// ByCategory: GET /news/category/{category}.
func (h *Handlers) ByCategory(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListByCategory(r.Context(), chi.URLParam(r, "category"), pageRequest(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPageResponse(page))
}

// Favorites: GET /news/user/favorites.
func (h *Handlers) Favorites(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	page, err := h.svc.ListFavorites(r.Context(), id.UserID, pageRequest(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPageResponse(page))
}

// ToggleLike: POST /news/{id}/like.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	t, err := h.svc.ToggleArticleLike(r.Context(), chi.URLParam(r, "id"), id.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	msg := "News unliked"
	if t.Active {
		msg = "News liked"
	}

	writeJSON(w, http.StatusOK, toggleResponse{Success: true, Message: msg, IsLiked: t.Active, LikesCount: t.Count})
}

// ToggleFavorite: POST /news/{id}/favorite.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	t, err := h.svc.ToggleFavorite(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	msg := "Removed from favorites"
	if t.Active {
		msg = "Added to favorites"
	}

	writeJSON(w, http.StatusOK, favoriteResponse{Success: true, Message: msg, IsFavorited: t.Active})
}
