package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
)

// MaxJSONBodySize caps JSON request bodies; multipart routes use their own upload limit
const MaxJSONBodySize = 64 << 10

// DecodeJSON reads at most MaxJSONBodySize bytes of JSON from the request body into dst.
// Failures are validation errors whose cause is the decoder error (io.EOF for an empty body).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		appErr := apperror.Validation("request body too large").WithCode(CodeRequestBodyTooLarge)
		appErr.Cause = err
		return appErr
	}

	appErr := apperror.Validation("invalid request body").WithCode(CodeInvalidRequestBody)
	appErr.Cause = err
	return appErr
}
