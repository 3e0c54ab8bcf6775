package account

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vidtube-api/internal/auth"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
)

func authed(req *http.Request, identity auth.Identity) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), identity))
}

func TestHandler_Me(t *testing.T) {
	svc, _, _, alice := setup(t)
	h := NewHandler(svc, t.TempDir(), 1<<20)

	rec := httptest.NewRecorder()
	httputil.Handle(h.Me)(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), auth.Identity{UserID: alice.ID}))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["user"]["username"])
	assert.NotContains(t, rec.Body.String(), "secret-refresh")

	rec = httptest.NewRecorder()
	httputil.Handle(h.Me)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Update(t *testing.T) {
	svc, _, _, alice := setup(t)
	h := NewHandler(svc, t.TempDir(), 1<<20)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(`{"fullName":"Alice B","email":"alice@x.com"}`))
	rec := httptest.NewRecorder()
	httputil.Handle(h.Update)(rec, authed(req, auth.Identity{UserID: alice.ID}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"fullName":"Alice B"`)

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(`not json`))
	rec = httptest.NewRecorder()
	httputil.Handle(h.Update)(rec, authed(req, auth.Identity{UserID: alice.ID}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UpdateRejectsOversizeBody(t *testing.T) {
	svc, _, _, alice := setup(t)
	h := NewHandler(svc, t.TempDir(), 1<<20)

	body := `{"fullName":"` + strings.Repeat("A", httputil.MaxJSONBodySize) + `","email":"alice@x.com"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(body))
	rec := httptest.NewRecorder()
	httputil.Handle(h.Update)(rec, authed(req, auth.Identity{UserID: alice.ID}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, httputil.CodeRequestBodyTooLarge, envelope.Code)

	rec = httptest.NewRecorder()
	httputil.Handle(h.Me)(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), auth.Identity{UserID: alice.ID}))
	assert.NotContains(t, rec.Body.String(), "AAAA")
}

func imageRequest(t *testing.T, target, field string) *http.Request {
	t.Helper()
	return fileRequest(t, target, field, "\x89PNG\r\n\x1a\npng")
}

func fileRequest(t *testing.T, target, field, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "img.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler_UpdateAvatar(t *testing.T) {
	svc, _, _, alice := setup(t)
	dir := t.TempDir()
	h := NewHandler(svc, dir, 1<<20)

	rec := httptest.NewRecorder()
	httputil.Handle(h.UpdateAvatar)(rec, authed(imageRequest(t, "/api/v1/users/me/avatar", "avatar"), auth.Identity{UserID: alice.ID}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"avatar":"https://cdn.test/new.png"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandler_UpdateAvatarRejectsNonImage(t *testing.T) {
	svc, _, uploader, alice := setup(t)
	dir := t.TempDir()
	h := NewHandler(svc, dir, 1<<20)

	req := fileRequest(t, "/api/v1/users/me/avatar", "avatar", "<svg onload=alert(1)></svg>")
	rec := httptest.NewRecorder()
	httputil.Handle(h.UpdateAvatar)(rec, authed(req, auth.Identity{UserID: alice.ID}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httputil.CodeInvalidImage, body.Code)
	assert.Zero(t, uploader.calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandler_UpdateCoverImageMissingFile(t *testing.T) {
	svc, _, _, alice := setup(t)
	h := NewHandler(svc, t.TempDir(), 1<<20)

	rec := httptest.NewRecorder()
	httputil.Handle(h.UpdateCoverImage)(rec, authed(imageRequest(t, "/api/v1/users/me/cover-image", ""), auth.Identity{UserID: alice.ID}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httputil.CodeMissingCoverImage, body.Code)
}
