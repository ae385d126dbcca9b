package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-news-portal/internal/http/middleware"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/pribylovaa/go-news-portal/mocks"
	"github.com/stretchr/testify/require"
)

func TestTagList_StringOrArray(t *testing.T) {
	h, _, _ := newHandlersWithMocks(t)

	var in articleRequest
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"tags":["go"," news"]}`))
	require.NoError(t, h.decodeJSON(rr, req, &in))
	require.Equal(t, "go, news", string(*in.Tags))

	in = articleRequest{}
	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"tags":"a, b"}`))
	require.NoError(t, h.decodeJSON(rr, req, &in))
	require.Equal(t, "a, b", string(*in.Tags))

	in = articleRequest{}
	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"tags":42}`))
	require.Error(t, h.decodeJSON(rr, req, &in))
}

func TestCreateNews(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		h, _, _ := newHandlersWithMocks(t)

		cases := []struct {
			body string
			msg  string
		}{
			{`{"title":"T","content":"C","category":"technology","status":"live"}`, "Invalid status"},
			{`{"content":"C","category":"technology"}`, "Title is required"},
			{`{"title":"T","content":"C"}`, "Category is required"},
			{`{"title":"T","content":"C","category":"cooking"}`, "Invalid category"},
		}

		for _, tc := range cases {
			rr := serve(h.CreateNews, http.MethodPost, "/admin/news", "/admin/news", tc.body, admin)
			requireError(t, rr, http.StatusBadRequest, tc.msg)
		}
	})

	t.Run("ok", func(t *testing.T) {
		h, _, ms := newHandlersWithMocks(t)

		ms.EXPECT().CreateArticle(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a models.Article) (*models.Article, error) {
				require.Equal(t, "Go 1.24", a.Title)
				require.Equal(t, []string{"go", "release"}, a.Tags)
				require.Equal(t, models.StatusPublished, a.Status)
				require.NotNil(t, a.PublishedAt)
				require.True(t, a.IsFeatured)
				require.Equal(t, authorID, a.AuthorID)
				a.ID = articleID
				return &a, nil
			})
		ms.EXPECT().UsersByIDs(gomock.Any(), []string{authorID}).Return([]models.User{authorUser()}, nil)

		body := `{"title":"Go 1.24","content":"C","category":"technology","tags":"go, release","status":"published","isFeatured":true}`
		rr := serve(h.CreateNews, http.MethodPost, "/admin/news", "/admin/news", body, admin)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		data := decode(t, rr)["data"].(map[string]any)
		require.Equal(t, articleID, data["_id"])
		require.Equal(t, "admin@news.com", data["author"].(map[string]any)["email"])
		require.NotEmpty(t, data["publishedAt"])
	})
}

func TestUpdateNews(t *testing.T) {
	h, _, ms := newHandlersWithMocks(t)

	cur := publishedArticle()
	ms.EXPECT().ArticleByID(gomock.Any(), articleID).Return(&cur, nil)
	ms.EXPECT().UpdateArticle(gomock.Any(), articleID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, upd models.ArticleUpdate) (*models.Article, error) {
			require.Nil(t, upd.Title)
			require.Nil(t, upd.Slug)
			require.NotNil(t, upd.Tags)
			require.Empty(t, *upd.Tags)
			require.Equal(t, "New summary", *upd.Summary)
			out := cur
			out.Summary, out.Tags = *upd.Summary, *upd.Tags
			return &out, nil
		})
	ms.EXPECT().UsersByIDs(gomock.Any(), gomock.Any()).Return(nil, nil)

	rr := serve(h.UpdateNews, http.MethodPut, "/admin/news/{id}", "/admin/news/"+articleID, `{"summary":"New summary","tags":""}`, admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "New summary", decode(t, rr)["data"].(map[string]any)["summary"])

	ms.EXPECT().ArticleByID(gomock.Any(), articleID).Return(nil, storage.ErrNotFound)

	rr = serve(h.UpdateNews, http.MethodPut, "/admin/news/{id}", "/admin/news/"+articleID, `{"summary":"x"}`, admin)
	requireError(t, rr, http.StatusNotFound, "News article not found")
}

func TestDeleteAndFeatured(t *testing.T) {
	h, _, ms := newHandlersWithMocks(t)

	gomock.InOrder(
		ms.EXPECT().DeleteArticle(gomock.Any(), articleID).Return(nil),
		ms.EXPECT().DeleteArticle(gomock.Any(), articleID).Return(storage.ErrNotFound),
	)

	rr := serve(h.DeleteNews, http.MethodDelete, "/admin/news/{id}", "/admin/news/"+articleID, "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "News article deleted successfully", decode(t, rr)["message"])

	rr = serve(h.DeleteNews, http.MethodDelete, "/admin/news/{id}", "/admin/news/"+articleID, "", admin)
	requireError(t, rr, http.StatusNotFound, "News article not found")

	a := publishedArticle()
	a.IsFeatured = true
	ms.EXPECT().ToggleFeatured(gomock.Any(), articleID).Return(&a, nil)

	rr = serve(h.ToggleFeatured, http.MethodPatch, "/admin/news/{id}/featured", "/admin/news/"+articleID+"/featured", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, true, decode(t, rr)["data"].(map[string]any)["isFeatured"])
}

func TestAdminListNews(t *testing.T) {
	h, _, ms := newHandlersWithMocks(t)

	rr := serve(h.AdminListNews, http.MethodGet, "/admin/news", "/admin/news?status=deleted", "", admin)
	requireError(t, rr, http.StatusBadRequest, "Invalid status")

	ms.EXPECT().ListArticles(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f models.ArticleFilter) ([]models.Article, int64, error) {
			require.Equal(t, models.StatusDraft, f.Status)
			require.Equal(t, models.SortCreatedDesc, f.Sort)
			return nil, 0, nil
		})

	rr = serve(h.AdminListNews, http.MethodGet, "/admin/news", "/admin/news?status=draft", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	require.EqualValues(t, 0, decode(t, rr)["totalPages"])
}

func TestStats_EmptyStore(t *testing.T) {
	h, _, ms := newHandlersWithMocks(t)

	ms.EXPECT().CountArticles(gomock.Any(), gomock.Any()).Return(int64(0), nil).Times(4)
	ms.EXPECT().CategoryCounts(gomock.Any(), models.Status("")).Return(nil, nil)
	ms.EXPECT().EngagementTotals(gomock.Any()).Return(models.Engagement{}, nil)
	ms.EXPECT().ListArticles(gomock.Any(), gomock.Any()).Return(nil, int64(0), nil)

	rr := serve(h.Stats, http.MethodGet, "/admin/stats", "/admin/stats", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)

	data := decode(t, rr)["data"].(map[string]any)
	require.EqualValues(t, 0, data["totalNews"])
	require.Equal(t, []any{}, data["newsByCategory"])
	require.Equal(t, []any{}, data["recentNews"])
	require.Equal(t, map[string]any{"totalViews": float64(0), "totalLikes": float64(0)}, data["engagement"])
}

// multipartImage собирает форму с полем image и явным Content-Type части.
func multipartImage(t *testing.T, field, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="cover.png"`)
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func uploadReq(body io.Reader, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/upload", body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), *admin))
}

func TestUploadImage(t *testing.T) {
	h, svc, _ := newHandlersWithMocks(t)

	// Нет файла.
	rr := httptest.NewRecorder()
	h.UploadImage(rr, uploadReq(nil, ""))
	requireError(t, rr, http.StatusBadRequest, "Please upload an image")

	// Поле с другим именем.
	body, ct := multipartImage(t, "file", "image/png", []byte("png"))
	rr = httptest.NewRecorder()
	h.UploadImage(rr, uploadReq(body, ct))
	requireError(t, rr, http.StatusBadRequest, "Please upload an image")

	// Хранилище изображений не настроено.
	body, ct = multipartImage(t, "image", "image/png", []byte("png"))
	rr = httptest.NewRecorder()
	h.UploadImage(rr, uploadReq(body, ct))
	requireError(t, rr, http.StatusServiceUnavailable, "Image uploads are disabled")

	ctrl := gomock.NewController(t)
	mi := mocks.NewMockImageStorage(ctrl)
	svc.SetImageStorage(mi)

	// Не изображение.
	body, ct = multipartImage(t, "image", "text/plain", []byte("txt"))
	rr = httptest.NewRecorder()
	h.UploadImage(rr, uploadReq(body, ct))
	requireError(t, rr, http.StatusBadRequest, "Only image files are allowed")

	mi.EXPECT().PutImage(gomock.Any(), "cover.png", "image/png", int64(3), gomock.Any()).
		Return(&models.StoredImage{Filename: "abc.png", Path: "/uploads/abc.png"}, nil)

	body, ct = multipartImage(t, "image", "image/png", []byte("png"))
	rr = httptest.NewRecorder()
	h.UploadImage(rr, uploadReq(body, ct))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	data := decode(t, rr)["data"].(map[string]any)
	require.Equal(t, "abc.png", data["filename"])
	require.Equal(t, "/uploads/abc.png", data["path"])
}
