package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/metrics"
)

func serve(t *testing.T, h HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	Handle(h)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body ErrorResponse
	if rec.Code >= 400 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHandle_Success(t *testing.T) {
	rec, _ := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		RespondMessage(w, "ok", http.StatusOK)
		return nil
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
}

func TestHandle_TypedError(t *testing.T) {
	before := testutil.ToFloat64(metrics.HTTPErrorsTotal.WithLabelValues("conflict"))

	rec, body := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return apperror.Conflict("user with this email or username already exists").WithCode(CodeUserAlreadyExists)
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, ErrorResponse{
		Status:  http.StatusConflict,
		Message: "user with this email or username already exists",
		Code:    CodeUserAlreadyExists,
		Success: false,
	}, body)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPErrorsTotal.WithLabelValues("conflict")))
}

func TestHandle_UntypedErrorHidesCause(t *testing.T) {
	rec, body := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("pq: connection refused")
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body.Message)
	assert.Equal(t, apperror.CodeInternal, body.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHandle_SuccessFieldAlwaysPresent(t *testing.T) {
	rec, _ := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return apperror.NotFound("channel does not exist")
	})

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, false, raw["success"])
	assert.Equal(t, float64(http.StatusNotFound), raw["status"])
}
