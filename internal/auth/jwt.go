package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims is the HS256 payload: registered claims plus the token kind and profile fields
type jwtClaims struct {
	jwt.RegisteredClaims
	Kind     TokenKind `json:"kind"`
	Email    string    `json:"email,omitempty"`
	Username string    `json:"username,omitempty"`
	FullName string    `json:"full_name,omitempty"`
}

// JWTService handles HS256 JWT creation and validation
type JWTService struct {
	kind   TokenKind
	secret []byte
}

func NewJWTService(kind TokenKind, secret []byte) (*JWTService, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}

	return &JWTService{kind: kind, secret: secret}, nil
}

// CreateToken signs a new token with the given claims and duration
func (s *JWTService) CreateToken(claims TokenClaims, duration time.Duration) (string, error) {
	now := time.Now()

	payload := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
		Kind: s.kind,
	}
	if s.kind == KindAccess {
		payload.Email = claims.Email
		payload.Username = claims.Username
		payload.FullName = claims.FullName
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(s.secret)
}

// VerifyToken validates signature and expiry and returns the claims
func (s *JWTService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	payload := &jwtClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, payload, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if payload.Kind != s.kind {
		return nil, ErrTokenKind
	}
	if payload.Subject == "" {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{
		ID:       payload.ID,
		Kind:     payload.Kind,
		UserID:   payload.Subject,
		Email:    payload.Email,
		Username: payload.Username,
		FullName: payload.FullName,
	}
	if payload.IssuedAt != nil {
		claims.IssuedAt = payload.IssuedAt.Time
	}
	if payload.ExpiresAt != nil {
		claims.ExpiresAt = payload.ExpiresAt.Time
	}

	return claims, nil
}
