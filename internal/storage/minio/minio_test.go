package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/go-news-portal/internal/config"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты для пакета minio:
//   - поднимают реальный MinIO через testcontainers-go;
//   - создают бакет для изображений;
//   - проверяют New (успех и отсутствие бакета) и PutImage (ключ, путь, содержимое).
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

const (
	rootUser     = "root"
	rootPassword = "rootpass"
	bucket       = "news-images"
)

func startMinio(t *testing.T, createBucket bool) (*config.Config, *mclient.Client) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "docker.io/minio/minio:latest",
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: false,
	})
	require.NoError(t, err)

	if createBucket {
		require.NoError(t, admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))
	}

	cfg := &config.Config{
		S3: config.S3Config{
			Endpoint:      fmt.Sprintf("http://%s:%s", host, port.Port()),
			RootUser:      rootUser,
			RootPassword:  rootPassword,
			Bucket:        bucket,
			PublicBaseURL: "http://cdn.local/images/",
		},
	}

	return cfg, admin
}

func TestExtFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, ".jpg", extFor("image/jpeg", "photo.jpeg"))
	require.Equal(t, ".png", extFor("image/png", ""))
	require.Equal(t, ".webp", extFor("image/webp", "x.bin"))
	require.Equal(t, ".bmp", extFor("image/bmp", "Pic.BMP"))
	require.Equal(t, "", extFor("application/octet-stream", "noext"))
}

func TestPublicPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/articles/a.png", publicPath("", "articles/a.png"))
	require.Equal(t, "/uploads/articles/a.png", publicPath("/uploads", "articles/a.png"))
	require.Equal(t, "http://cdn/x/articles/a.png", publicPath("http://cdn/x/", "articles/a.png"))
}

func TestNew_BucketMissing(t *testing.T) {
	cfg, _ := startMinio(t, false)

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestPutImage_OK(t *testing.T) {
	cfg, admin := startMinio(t, true)

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)

	payload := []byte("\x89PNG fake image body")
	out, err := s.PutImage(context.Background(), "cover.png", "image/png", int64(len(payload)), bytes.NewReader(payload))
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(out.Filename, ".png"))
	require.Equal(t, "http://cdn.local/images/articles/"+out.Filename, out.Path)

	obj, err := admin.GetObject(context.Background(), bucket, "articles/"+out.Filename, mclient.GetObjectOptions{})
	require.NoError(t, err)
	defer obj.Close()

	got, err := io.ReadAll(obj)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	info, err := obj.Stat()
	require.NoError(t, err)
	require.Equal(t, "image/png", info.ContentType)
}
