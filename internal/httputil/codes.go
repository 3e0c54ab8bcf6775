package httputil

import "github.com/redmonkez12/vidtube-api/internal/apperror"

// Machine-readable error codes returned in the error envelope.
// Per-kind defaults live in apperror; these refine them.
const (
	CodeInvalidRequestBody   = "INVALID_REQUEST_BODY"
	CodeRequestBodyTooLarge  = "REQUEST_BODY_TOO_LARGE"
	CodeMissingAvatar        = "AVATAR_REQUIRED"
	CodeMissingCoverImage    = "COVER_IMAGE_REQUIRED"
	CodeUserAlreadyExists    = "USER_ALREADY_EXISTS"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeChannelNotFound      = "CHANNEL_NOT_FOUND"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeInvalidOldPassword   = "INVALID_OLD_PASSWORD"
	CodeMissingAuth          = "MISSING_AUTH"
	CodeInvalidAuthHeader    = "INVALID_AUTH_HEADER"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeInvalidTokenUserID   = "INVALID_TOKEN_USER_ID"
	CodeRefreshTokenRequired = "REFRESH_TOKEN_REQUIRED"
	CodeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	CodeStaleRefreshToken    = "STALE_REFRESH_TOKEN"
	CodeUploadFailed         = "UPLOAD_FAILED"
	CodeInvalidImage         = "INVALID_IMAGE"
	CodeUserCreationMismatch = "USER_NOT_CREATED"
	CodeTooManyRequests      = apperror.CodeTooManyRequests
)
