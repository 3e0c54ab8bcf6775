package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/redmonkez12/vidtube-api/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrTokenKind    = errors.New("unexpected token kind")
)

// TokenKind separates access tokens from refresh tokens
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// TokenClaims represents the claims carried by an access or refresh token.
// Refresh tokens only carry the identity; access tokens also denormalize profile fields.
type TokenClaims struct {
	ID        string    `json:"jti"`
	Kind      TokenKind `json:"kind"`
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
// Each instance issues a single kind of token under its own secret.
type TokenService interface {
	CreateToken(claims TokenClaims, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// NewTokenServices builds the access and refresh token services for the configured format
func NewTokenServices(cfg config.AuthConfig) (access TokenService, refresh TokenService, err error) {
	switch cfg.TokenFormat {
	case config.TokenFormatPaseto:
		accessSvc, err := NewPasetoService(KindAccess, cfg.AccessTokenSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("access token service: %w", err)
		}
		refreshSvc, err := NewPasetoService(KindRefresh, cfg.RefreshTokenSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("refresh token service: %w", err)
		}
		return accessSvc, refreshSvc, nil
	case config.TokenFormatJWT:
		accessSvc, err := NewJWTService(KindAccess, cfg.AccessTokenSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("access token service: %w", err)
		}
		refreshSvc, err := NewJWTService(KindRefresh, cfg.RefreshTokenSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("refresh token service: %w", err)
		}
		return accessSvc, refreshSvc, nil
	default:
		return nil, nil, fmt.Errorf("unknown token format %q", cfg.TokenFormat)
	}
}
