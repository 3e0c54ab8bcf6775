package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
	"github.com/redmonkez12/vidtube-api/internal/logging"
	"github.com/redmonkez12/vidtube-api/internal/media"
	"github.com/redmonkez12/vidtube-api/internal/metrics"
	"github.com/redmonkez12/vidtube-api/internal/user"
	"github.com/redmonkez12/vidtube-api/internal/validation"
)

// UserStore is the part of the credential store the session flow needs
type UserStore interface {
	Create(ctx context.Context, u *user.User, password string) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetPublicByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error
}

// RegisterInput is a registration request; file paths point at spooled uploads
type RegisterInput struct {
	Username       string `form:"username" validate:"required,max=30"`
	Email          string `form:"email" validate:"required,email"`
	Password       string `form:"password" validate:"required"`
	FullName       string `form:"fullName" validate:"required,max=100"`
	AvatarPath     string `form:"-"`
	CoverImagePath string `form:"-"`
}

// LoginInput accepts either username or email
type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// Session is the result of login and refresh
type Session struct {
	User         *user.User `json:"user,omitempty"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// Service handles registration and the session lifecycle
type Service struct {
	users                UserStore
	uploader             media.Uploader
	validator            *validation.Validator
	accessTokens         TokenService
	refreshTokens        TokenService
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

func NewService(
	users UserStore,
	uploader media.Uploader,
	validator *validation.Validator,
	accessTokens TokenService,
	refreshTokens TokenService,
	accessTokenDuration time.Duration,
	refreshTokenDuration time.Duration,
) *Service {
	return &Service{
		users:                users,
		uploader:             uploader,
		validator:            validator,
		accessTokens:         accessTokens,
		refreshTokens:        refreshTokens,
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

func (s *Service) AccessTokenDuration() time.Duration  { return s.accessTokenDuration }
func (s *Service) RefreshTokenDuration() time.Duration { return s.refreshTokenDuration }

// Register creates a user account after uploading its avatar and optional cover image
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("user with email or username already exists").WithCode(httputil.CodeUserAlreadyExists)
	case !errors.Is(err, user.ErrNotFound):
		return nil, apperror.Internal("failed to check existing user", err)
	}

	if in.AvatarPath == "" {
		return nil, apperror.Validation("avatar file is required").WithCode(httputil.CodeMissingAvatar)
	}

	avatar, cover, err := s.uploadImages(ctx, in.AvatarPath, in.CoverImagePath)
	if err != nil {
		return nil, err
	}

	newUser := &user.User{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Avatar:   avatar.URL,
	}
	if cover != nil {
		newUser.CoverImage = cover.URL
	}

	if err := s.users.Create(ctx, newUser, in.Password); err != nil {
		media.Discard(ctx, s.uploader, avatar, cover)
		if errors.Is(err, user.ErrDuplicate) {
			return nil, apperror.Conflict("user with email or username already exists").WithCode(httputil.CodeUserAlreadyExists)
		}
		return nil, apperror.Internal("failed to register user", err)
	}

	created, err := s.users.GetPublicByID(ctx, newUser.ID)
	if err != nil {
		return nil, apperror.Internal("something went wrong while registering the user", err).WithCode(httputil.CodeUserCreationMismatch)
	}

	logging.GetLoggerFromContext(ctx).Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// uploadImages pushes the avatar and the optional cover image concurrently.
// If either upload fails the other one is discarded.
func (s *Service) uploadImages(ctx context.Context, avatarPath, coverPath string) (avatar, cover *media.Asset, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		asset, err := s.uploader.Upload(gctx, avatarPath)
		if err != nil {
			return uploadError("avatar", err)
		}
		avatar = asset
		return nil
	})

	if coverPath != "" {
		g.Go(func() error {
			asset, err := s.uploader.Upload(gctx, coverPath)
			if err != nil {
				return uploadError("cover image", err)
			}
			cover = asset
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		media.Discard(ctx, s.uploader, avatar, cover)
		return nil, nil, err
	}
	return avatar, cover, nil
}

func uploadError(what string, err error) error {
	if errors.Is(err, media.ErrUnsupportedImage) {
		return apperror.Validation(what + ": " + err.Error()).WithCode(httputil.CodeInvalidImage)
	}
	return apperror.Dependency("failed to upload "+what, err).WithCode(httputil.CodeUploadFailed)
}

// Login authenticates by username or email and issues a fresh token pair
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if strings.TrimSpace(in.Username) == "" && strings.TrimSpace(in.Email) == "" {
		return nil, apperror.Validation("username or email is required")
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, apperror.NotFound("user does not exist").WithCode(httputil.CodeUserNotFound)
		}
		return nil, apperror.Internal("failed to get user", err)
	}

	if !user.CheckPassword(existing.PasswordHash, in.Password) {
		return nil, apperror.Unauthorized("invalid user credentials").WithCode(httputil.CodeInvalidCredentials)
	}

	accessToken, refreshToken, err := s.issuePair(ctx, existing, "")
	if err != nil {
		return nil, err
	}

	logging.GetLoggerFromContext(ctx).Info("user logged in", "user_id", existing.ID)
	return &Session{
		User:         existing.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout unsets the stored refresh token so no issued refresh token can be used again
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return apperror.Internal("failed to logout", err)
	}

	logging.GetLoggerFromContext(ctx).Info("user logged out", "user_id", userID)
	return nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must be the one currently stored.
func (s *Service) Refresh(ctx context.Context, presented string) (*Session, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		metrics.TokenRefreshTotal.WithLabelValues("missing").Inc()
		return nil, apperror.Unauthorized("unauthorized request").WithCode(httputil.CodeRefreshTokenRequired)
	}

	claims, err := s.refreshTokens.VerifyToken(presented)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		return nil, apperror.Unauthorized(err.Error()).WithCode(httputil.CodeInvalidRefreshToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		return nil, apperror.Unauthorized("invalid refresh token").WithCode(httputil.CodeInvalidRefreshToken)
	}

	existing, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
			return nil, apperror.Unauthorized("invalid refresh token").WithCode(httputil.CodeInvalidRefreshToken)
		}
		return nil, apperror.Internal("failed to get user", err)
	}

	if existing.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*existing.RefreshToken), []byte(presented)) != 1 {
		metrics.TokenRefreshTotal.WithLabelValues("stale").Inc()
		return nil, staleTokenError()
	}

	accessToken, refreshToken, err := s.issuePair(ctx, existing, presented)
	if err != nil {
		if apperror.IsKind(err, apperror.KindUnauthorized) {
			metrics.TokenRefreshTotal.WithLabelValues("stale").Inc()
		}
		return nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	logging.GetLoggerFromContext(ctx).Info("access token refreshed", "user_id", existing.ID)
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ChangePassword replaces the password after checking the old one. Tokens are left untouched.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}

	existing, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperror.NotFound("user does not exist").WithCode(httputil.CodeUserNotFound)
		}
		return apperror.Internal("failed to get user", err)
	}

	if !user.CheckPassword(existing.PasswordHash, in.OldPassword) {
		return apperror.Unauthorized("invalid old password").WithCode(httputil.CodeInvalidOldPassword)
	}

	if err := s.users.UpdatePassword(ctx, userID, in.NewPassword); err != nil {
		return apperror.Internal("failed to change password", err)
	}

	logging.GetLoggerFromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}

// issuePair creates an access and refresh token and stores the refresh token on the user.
// With a presented token the store only rotates if presented is still current.
func (s *Service) issuePair(ctx context.Context, u *user.User, presented string) (string, string, error) {
	accessToken, err := s.accessTokens.CreateToken(TokenClaims{
		UserID:   u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
	}, s.accessTokenDuration)
	if err != nil {
		return "", "", apperror.Internal("failed to create access token", err)
	}

	refreshToken, err := s.refreshTokens.CreateToken(TokenClaims{UserID: u.ID.String()}, s.refreshTokenDuration)
	if err != nil {
		return "", "", apperror.Internal("failed to create refresh token", err)
	}

	if presented == "" {
		err = s.users.SetRefreshToken(ctx, u.ID, refreshToken)
	} else {
		err = s.users.RotateRefreshToken(ctx, u.ID, presented, refreshToken)
	}
	if err != nil {
		if errors.Is(err, user.ErrStaleToken) {
			return "", "", staleTokenError()
		}
		return "", "", apperror.Internal("failed to store refresh token", err)
	}

	return accessToken, refreshToken, nil
}

func staleTokenError() *apperror.Error {
	return apperror.Unauthorized(user.ErrStaleToken.Error()).WithCode(httputil.CodeStaleRefreshToken)
}
