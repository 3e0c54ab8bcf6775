package auth

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
	"github.com/redmonkez12/vidtube-api/internal/logging"
	"github.com/redmonkez12/vidtube-api/internal/media"
	"github.com/redmonkez12/vidtube-api/internal/user"
)

const (
	purposeLogin    = "login"
	purposeRegister = "register"
)

// RateLimiter limits requests per client IP; errors fail open
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}

// Handler contains HTTP handlers for registration and session endpoints
type Handler struct {
	service       *Service
	rateLimiter   RateLimiter
	uploadDir     string
	maxUploadSize int64
}

// NewHandler builds the handler; rateLimiter may be nil to disable limiting
func NewHandler(service *Service, rateLimiter RateLimiter, uploadDir string, maxUploadSize int64) *Handler {
	return &Handler{
		service:       service,
		rateLimiter:   rateLimiter,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
	}
}

// UserResponse wraps a single user
type UserResponse struct {
	User *user.User `json:"user"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create an account. The avatar is required, the cover image is optional.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        username   formData string true  "Username"
// @Param        email      formData string true  "Email"
// @Param        password   formData string true  "Password"
// @Param        fullName   formData string true  "Full name"
// @Param        avatar     formData file   true  "Avatar image (JPEG, PNG, GIF or WebP)"
// @Param        coverImage formData file   false "Cover image (JPEG, PNG, GIF or WebP)"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or upload failure"
// @Failure      409 {object} httputil.ErrorResponse "Username or email already exists"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	ip := getClientIP(r)
	if err := h.checkRateLimit(r, ip, purposeRegister); err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return apperror.Validation("invalid multipart form").WithCode(httputil.CodeInvalidRequestBody)
	}
	defer r.MultipartForm.RemoveAll()

	avatarPath, err := h.spool(r, "avatar")
	if err != nil {
		return err
	}
	coverPath, err := h.spool(r, "coverImage")
	if err != nil {
		media.RemoveFiles(avatarPath)
		return err
	}
	// The uploader removes files it consumed; this covers requests rejected before upload
	defer media.RemoveFiles(avatarPath, coverPath)

	h.recordRequest(r, ip, purposeRegister)

	created, err := h.service.Register(r.Context(), RegisterInput{
		Username:       r.FormValue("username"),
		Email:          r.FormValue("email"),
		Password:       r.FormValue("password"),
		FullName:       r.FormValue("fullName"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		return err
	}

	httputil.RespondJSON(w, UserResponse{User: created}, http.StatusCreated)
	return nil
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate by username or email. Tokens are returned in the body and set as cookies.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginInput true "Login credentials"
// @Success      200 {object} Session
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      404 {object} httputil.ErrorResponse "User does not exist"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	ip := getClientIP(r)
	if err := h.checkRateLimit(r, ip, purposeLogin); err != nil {
		return err
	}

	var req LoginInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	h.recordRequest(r, ip, purposeLogin)

	session, err := h.service.Login(r.Context(), req)
	if err != nil {
		return err
	}

	SetAuthCookies(w, session.AccessToken, session.RefreshToken, h.service.AccessTokenDuration(), h.service.RefreshTokenDuration())
	httputil.RespondJSON(w, session, http.StatusOK)
	return nil
}

// Logout handles user logout
// @Summary      User logout
// @Description  Invalidate the stored refresh token and clear session cookies
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /users/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	identity, err := RequireIdentity(r.Context())
	if err != nil {
		return err
	}

	if err := h.service.Logout(r.Context(), identity.UserID); err != nil {
		return err
	}

	ClearAuthCookies(w)
	httputil.RespondMessage(w, "user logged out", http.StatusOK)
	return nil
}

// RefreshToken handles token rotation
// @Summary      Refresh access token
// @Description  Exchange the current refresh token (cookie or body) for a new token pair
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token when no cookie is sent"
// @Success      200 {object} Session
// @Failure      400 {object} httputil.ErrorResponse "Request body too large"
// @Failure      401 {object} httputil.ErrorResponse "Missing, invalid, expired or already used refresh token"
// @Router       /users/refresh-token [post]
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) error {
	refreshToken, _ := GetRefreshTokenFromCookie(r)

	if refreshToken == "" {
		var req RefreshRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return err
			}
			if !errors.Is(err, io.EOF) {
				logging.GetLoggerFromContext(r.Context()).Debug("ignoring unreadable refresh body", "error", err.Error())
			}
		}
		refreshToken = req.RefreshToken
	}

	session, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		return err
	}

	SetAuthCookies(w, session.AccessToken, session.RefreshToken, h.service.AccessTokenDuration(), h.service.RefreshTokenDuration())
	httputil.RespondJSON(w, session, http.StatusOK)
	return nil
}

// ChangePassword handles password changes for the caller
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordInput true "Old and new password"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid old password"
// @Router       /users/password [patch]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	identity, err := RequireIdentity(r.Context())
	if err != nil {
		return err
	}

	var req ChangePasswordInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(r.Context(), identity.UserID, req); err != nil {
		return err
	}

	httputil.RespondMessage(w, "password changed successfully", http.StatusOK)
	return nil
}

// spool saves an optional multipart file and returns "" when the field is absent
func (h *Handler) spool(r *http.Request, field string) (string, error) {
	path, err := media.SaveImage(r, field, h.uploadDir)
	switch {
	case errors.Is(err, media.ErrMissingFile):
		return "", nil
	case errors.Is(err, media.ErrUnsupportedImage):
		return "", apperror.Validation(field+": "+err.Error()).WithCode(httputil.CodeInvalidImage)
	case err != nil:
		return "", apperror.Internal("failed to store upload", err)
	}
	return path, nil
}

// checkRateLimit fails open: a limiter error is logged and the request proceeds
func (h *Handler) checkRateLimit(r *http.Request, ip, purpose string) error {
	if h.rateLimiter == nil {
		return nil
	}

	logger := logging.GetLoggerFromContext(r.Context())
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return nil
	}
	if exceeded {
		return apperror.TooManyRequests("too many requests, please try again later").WithCode(httputil.CodeTooManyRequests)
	}
	return nil
}

func (h *Handler) recordRequest(r *http.Request, ip, purpose string) {
	if h.rateLimiter == nil {
		return
	}
	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to record IP request", "error", err.Error())
	}
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are resolved upstream by the
// router's RealIP middleware, which only trusts configured proxies.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
