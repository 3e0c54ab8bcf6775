package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/auth"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
	"github.com/redmonkez12/vidtube-api/internal/media"
	"github.com/redmonkez12/vidtube-api/internal/user"
)

// Handler serves /users/me
type Handler struct {
	service       *Service
	uploadDir     string
	maxUploadSize int64
}

func NewHandler(service *Service, uploadDir string, maxUploadSize int64) *Handler {
	return &Handler{service: service, uploadDir: uploadDir, maxUploadSize: maxUploadSize}
}

// UserResponse wraps a single user
type UserResponse struct {
	User *user.User `json:"user"`
}

// Me returns the current user
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User does not exist"
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return err
	}

	u, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		return err
	}

	httputil.RespondJSON(w, UserResponse{User: u}, http.StatusOK)
	return nil
}

// Update changes account details
// @Summary      Update account details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateInput true "Account details"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email or username already taken"
// @Router       /users/me [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return err
	}

	var req UpdateInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	u, err := h.service.Update(r.Context(), identity.UserID, req)
	if err != nil {
		return err
	}

	httputil.RespondJSON(w, UserResponse{User: u}, http.StatusOK)
	return nil
}

// UpdateAvatar replaces the avatar
// @Summary      Update avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing file or upload failure"
// @Router       /users/me/avatar [patch]
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "avatar", h.service.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image
// @Summary      Update cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        coverImage formData file true "Cover image"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing file or upload failure"
// @Router       /users/me/cover-image [patch]
func (h *Handler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "coverImage", h.service.UpdateCoverImage)
}

type imageUpdater func(ctx context.Context, id uuid.UUID, localPath string) (*user.User, error)

func (h *Handler) replaceImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdater) error {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return apperror.Validation("invalid multipart form").WithCode(httputil.CodeInvalidRequestBody)
	}
	defer r.MultipartForm.RemoveAll()

	path, err := media.SaveImage(r, field, h.uploadDir)
	switch {
	case errors.Is(err, media.ErrMissingFile):
	case errors.Is(err, media.ErrUnsupportedImage):
		return apperror.Validation(field + ": " + err.Error()).WithCode(httputil.CodeInvalidImage)
	case err != nil:
		return apperror.Internal("failed to store upload", err)
	}
	defer media.RemoveFiles(path)

	u, err := update(r.Context(), identity.UserID, path)
	if err != nil {
		return err
	}

	httputil.RespondJSON(w, UserResponse{User: u}, http.StatusOK)
	return nil
}
