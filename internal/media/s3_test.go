package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vidtube-api/internal/config"
)

// pngBytes and jpegBytes start with the format signatures used for content sniffing
const (
	pngBytes  = "\x89PNG\r\n\x1a\npng-bytes"
	jpegBytes = "\xff\xd8\xff\xe0jpg-bytes"
)

type fakeS3 struct {
	mu           sync.Mutex
	status       int
	paths        []string
	bodies       []string
	contentTypes []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.contentTypes = append(f.contentTypes, r.Header.Get("Content-Type"))
	status := f.status
	f.mu.Unlock()

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		return
	}
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(http.StatusOK)
}

func newTestUploader(t *testing.T, status int) (*S3Uploader, *fakeS3) {
	t.Helper()
	fake := &fakeS3{status: status}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	up, err := NewS3Uploader(context.Background(), config.MediaConfig{
		Bucket:       "media",
		Region:       "us-east-1",
		Endpoint:     srv.URL,
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
		KeyPrefix:    "users",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	up.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }

	return up, fake
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestS3Uploader_Upload(t *testing.T) {
	up, fake := newTestUploader(t, http.StatusOK)
	path := writeTemp(t, "avatar.PNG", pngBytes)

	asset, err := up.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.Key, "users/2026/03/"), asset.Key)
	assert.True(t, strings.HasSuffix(asset.Key, ".png"), asset.Key)
	assert.True(t, strings.HasSuffix(asset.URL, "/media/"+asset.Key), asset.URL)

	require.Len(t, fake.paths, 1)
	assert.Equal(t, "PUT /media/"+asset.Key, fake.paths[0])
	assert.Contains(t, fake.bodies[0], "png-bytes")
	assert.Equal(t, "image/png", fake.contentTypes[0])

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "local file should be removed after upload")
}

func TestS3Uploader_UploadFailureRemovesLocalFile(t *testing.T) {
	up, _ := newTestUploader(t, http.StatusForbidden)
	path := writeTemp(t, "cover.jpg", jpegBytes)

	asset, err := up.Upload(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, asset)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestS3Uploader_TypeComesFromContent(t *testing.T) {
	up, fake := newTestUploader(t, http.StatusOK)
	path := writeTemp(t, "photo.gif", jpegBytes)

	asset, err := up.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(asset.Key, ".jpg"), asset.Key)
	assert.Equal(t, "image/jpeg", fake.contentTypes[0])
}

func TestS3Uploader_RejectsNonImage(t *testing.T) {
	up, fake := newTestUploader(t, http.StatusOK)
	path := writeTemp(t, "avatar.png", "<html><script>alert(1)</script></html>")

	asset, err := up.Upload(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Nil(t, asset)
	assert.Empty(t, fake.paths)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestS3Uploader_Delete(t *testing.T) {
	up, fake := newTestUploader(t, http.StatusOK)

	require.NoError(t, up.Delete(context.Background(), "users/2026/03/a.png"))
	require.NoError(t, up.Delete(context.Background(), ""))

	require.Len(t, fake.paths, 1)
	assert.Equal(t, "DELETE /media/users/2026/03/a.png", fake.paths[0])
}

func TestS3Uploader_DeleteFailure(t *testing.T) {
	up, _ := newTestUploader(t, http.StatusForbidden)

	err := up.Delete(context.Background(), "users/2026/03/a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users/2026/03/a.png")
}

func TestS3Uploader_EmptyPath(t *testing.T) {
	up, fake := newTestUploader(t, http.StatusOK)

	_, err := up.Upload(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPath)
	assert.Empty(t, fake.paths)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(config.MediaConfig{PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "http://minio:9000/media", publicBaseURL(config.MediaConfig{Endpoint: "http://minio:9000", Bucket: "media", UsePathStyle: true}))
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", publicBaseURL(config.MediaConfig{Bucket: "media", Region: "eu-west-1"}))
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), config.MediaConfig{Region: "us-east-1"})
	assert.Error(t, err)
}
