package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/pribylovaa/go-news-portal/internal/models"
)

// imagesPrefix: префикс ключей изображений статей в бакете.
const imagesPrefix = "articles"

// PutImage загружает изображение под ключом "articles/<uuid><ext>".
// Имя исходного файла используется только для выбора расширения.
// Path: публичный адрес объекта (PublicBaseURL + "/" + ключ).
func (s *ImagesStorage) PutImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.StoredImage, error) {
	const op = "storage/minio/images/PutImage"

	name := uuid.NewString() + extFor(contentType, filename)
	key := path.Join(imagesPrefix, name)

	_, err := s.client.PutObject(ctx, s.cfg.S3.Bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.StoredImage{
		Filename: name,
		Path:     publicPath(s.cfg.S3.PublicBaseURL, key),
	}, nil
}

// extFor выбирает расширение по типу содержимого, иначе берёт из имени файла.
func extFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}

	return strings.ToLower(path.Ext(filename))
}

func publicPath(base, key string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/" + key
	}

	return base + "/" + key
}
