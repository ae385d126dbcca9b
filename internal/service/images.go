package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/pkg/log"
)

// UploadImage сохраняет изображение статьи в объектное хранилище.
//
// Правила:
//   - без сконфигурированного хранилища: ErrUploadsDisabled;
//   - размер в (0, upload.max_size_bytes], тип из upload.allowed_content_types.
func (s *Service) UploadImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.StoredImage, error) {
	const op = "service.images.UploadImage"

	lg := log.Op(ctx, op).With(
		slog.String("filename", filename),
		slog.String("content_type", contentType),
		slog.Int64("size", size),
	)

	if s.images == nil {
		lg.Warn("uploads_disabled")
		return nil, fmt.Errorf("%s: %w", op, ErrUploadsDisabled)
	}

	if size <= 0 {
		lg.Warn("upload_invalid", slog.String("reason", "empty"))
		return nil, fmt.Errorf("%s: %w", op, invalid("Please upload a file"))
	}

	if size > s.cfg.Upload.MaxSizeBytes {
		lg.Warn("upload_invalid", slog.String("reason", "too_large"))
		return nil, fmt.Errorf("%s: %w", op, invalid(fmt.Sprintf("File too large, max %d bytes", s.cfg.Upload.MaxSizeBytes)))
	}

	if !s.allowedContentType(contentType) {
		lg.Warn("upload_invalid", slog.String("reason", "content_type"))
		return nil, fmt.Errorf("%s: %w", op, invalid("Only image files are allowed"))
	}

	out, err := s.images.PutImage(ctx, filename, contentType, size, r)
	if err != nil {
		lg.Error("upload_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	lg.Info("image_uploaded", slog.String("path", out.Path))

	return out, nil
}

func (s *Service) allowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	for _, v := range s.cfg.Upload.AllowedContentTypes {
		if strings.EqualFold(strings.TrimSpace(v), ct) {
			return true
		}
	}

	return false
}
