// Package account serves the signed-in user's own profile.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
	"github.com/redmonkez12/vidtube-api/internal/logging"
	"github.com/redmonkez12/vidtube-api/internal/media"
	"github.com/redmonkez12/vidtube-api/internal/user"
	"github.com/redmonkez12/vidtube-api/internal/validation"
)

// Store is the part of the credential store account operations need
type Store interface {
	GetPublicByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, upd user.AccountUpdate) (*user.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*user.User, error)
	UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) (*user.User, error)
}

// UpdateInput is the body of PATCH /users/me
type UpdateInput struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"omitempty,max=30"`
}

type Service struct {
	users     Store
	uploader  media.Uploader
	validator *validation.Validator
}

func NewService(users Store, uploader media.Uploader, validator *validation.Validator) *Service {
	return &Service{users: users, uploader: uploader, validator: validator}
}

// Me returns the caller's public record
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetPublicByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to get user")
	}
	return u, nil
}

// Update changes full name and email, and the username when one is given
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*user.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.users.UpdateAccount(ctx, id, user.AccountUpdate{
		FullName: in.FullName,
		Email:    in.Email,
		Username: in.Username,
	})
	if err != nil {
		return nil, storeError(err, "failed to update account")
	}

	logging.GetLoggerFromContext(ctx).Info("account updated", "user_id", id)
	return u, nil
}

// UpdateAvatar uploads the spooled file at localPath and stores its URL
func (s *Service) UpdateAvatar(ctx context.Context, id uuid.UUID, localPath string) (*user.User, error) {
	if localPath == "" {
		return nil, apperror.Validation("avatar file is missing").WithCode(httputil.CodeMissingAvatar)
	}

	asset, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, uploadError("avatar", err)
	}

	u, err := s.users.UpdateAvatar(ctx, id, asset.URL)
	if err != nil {
		media.Discard(ctx, s.uploader, asset)
		return nil, storeError(err, "failed to update avatar")
	}
	return u, nil
}

// UpdateCoverImage uploads the spooled file at localPath and stores its URL
func (s *Service) UpdateCoverImage(ctx context.Context, id uuid.UUID, localPath string) (*user.User, error) {
	if localPath == "" {
		return nil, apperror.Validation("cover image file is missing").WithCode(httputil.CodeMissingCoverImage)
	}

	asset, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, uploadError("cover image", err)
	}

	u, err := s.users.UpdateCoverImage(ctx, id, asset.URL)
	if err != nil {
		media.Discard(ctx, s.uploader, asset)
		return nil, storeError(err, "failed to update cover image")
	}
	return u, nil
}

func uploadError(what string, err error) error {
	if errors.Is(err, media.ErrUnsupportedImage) {
		return apperror.Validation(what + ": " + err.Error()).WithCode(httputil.CodeInvalidImage)
	}
	return apperror.Dependency("error while uploading "+what, err).WithCode(httputil.CodeUploadFailed)
}

func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return apperror.NotFound("user does not exist").WithCode(httputil.CodeUserNotFound)
	case errors.Is(err, user.ErrDuplicate):
		return apperror.Conflict("user with email or username already exists").WithCode(httputil.CodeUserAlreadyExists)
	default:
		return apperror.Internal(msg, err)
	}
}
