package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/go-news-portal/internal/http/apierrors"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
)

// maxMultipartMemory: часть multipart-формы, удерживаемая в памяти; остальное уходит во временные файлы.
const maxMultipartMemory = 8 << 20

var errNoImage = &service.ValidationError{Msg: "Please upload an image"}

// tagList принимает теги строкой через запятую или массивом строк.
type tagList string

func (t *tagList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}

	if len(b) > 0 && b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*t = tagList(strings.Join(list, ","))
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = tagList(s)
	return nil
}

// articleRequest: тело POST/PUT /admin/news.
// Обязательность и длины основных полей проверяет сервис.
type articleRequest struct {
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Summary    *string  `json:"summary"`
	Category   *string  `json:"category"`
	Tags       *tagList `json:"tags"`
	Image      *string  `json:"image"      validate:"omitempty,max=2048"                        label:"Image"`
	Status     *string  `json:"status"     validate:"omitempty,oneof=draft published archived" label:"Status"`
	IsFeatured *bool    `json:"isFeatured"`
}

func (a *articleRequest) toInput() service.ArticleInput {
	in := service.ArticleInput{
		Title:    deref(a.Title),
		Content:  deref(a.Content),
		Summary:  deref(a.Summary),
		Category: deref(a.Category),
		Image:    deref(a.Image),
		Status:   models.Status(deref(a.Status)),
	}
	if a.Tags != nil {
		in.Tags = string(*a.Tags)
	}
	if a.IsFeatured != nil {
		in.IsFeatured = *a.IsFeatured
	}
	return in
}

func (a *articleRequest) toPatch() service.ArticlePatch {
	p := service.ArticlePatch{
		Title:      a.Title,
		Content:    a.Content,
		Summary:    a.Summary,
		Category:   a.Category,
		Image:      a.Image,
		IsFeatured: a.IsFeatured,
	}
	if a.Tags != nil {
		tags := string(*a.Tags)
		p.Tags = &tags
	}
	if a.Status != nil {
		st := models.Status(*a.Status)
		p.Status = &st
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Stats: GET /admin/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(st))
}

// AdminListNews: GET /admin/news: статьи в любом статусе, новые сверху.
func (h *Handlers) AdminListNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.svc.ListAdmin(r.Context(), service.AdminListQuery{
		Status:      models.Status(strings.TrimSpace(q.Get("status"))),
		Category:    q.Get("category"),
		Search:      q.Get("search"),
		PageRequest: pageRequest(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPageResponse(page))
}

// AdminGetNews: GET /admin/news/{id}: любая статья без учёта просмотра.
func (h *Handlers) AdminGetNews(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.AdminArticleByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(a))
}

// CreateNews: POST /admin/news.
func (h *Handlers) CreateNews(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	var in articleRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	a, err := h.svc.CreateArticle(r.Context(), id.UserID, in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ok(a))
}

// UpdateNews: PUT /admin/news/{id}: частичное обновление.
func (h *Handlers) UpdateNews(w http.ResponseWriter, r *http.Request) {
	var in articleRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	a, err := h.svc.UpdateArticle(r.Context(), chi.URLParam(r, "id"), in.toPatch())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(a))
}

// DeleteNews: DELETE /admin/news/{id}: удаляет статью и её комментарии.
func (h *Handlers) DeleteNews(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteArticle(r.Context(), chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "News article deleted successfully"})
}

// ToggleFeatured: PATCH /admin/news/{id}/featured.
func (h *Handlers) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(a))
}

// UploadImage: POST /admin/upload, multipart-поле "image".
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		apierrors.WriteError(w, r, errNoImage)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		apierrors.WriteError(w, r, errNoImage)
		return
	}
	defer file.Close()

	img, err := h.svc.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(img))
}
