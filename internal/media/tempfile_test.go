package media

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("username", "alice"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req
}

func TestSaveMultipartFile(t *testing.T) {
	dir := t.TempDir()
	req := multipartRequest(t, "avatar", "me.JPG", "image-bytes")

	path, err := SaveMultipartFile(req, "avatar", dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".jpg", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	RemoveFiles(path, "")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveMultipartFile_Missing(t *testing.T) {
	req := multipartRequest(t, "", "", "")

	_, err := SaveMultipartFile(req, "avatar", t.TempDir())
	assert.ErrorIs(t, err, ErrMissingFile)
}
