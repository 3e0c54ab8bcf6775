package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vidtube-api/internal/config"
)

var (
	accessKey  = []byte("0123456789abcdef0123456789abcdef")
	refreshKey = []byte("fedcba9876543210fedcba9876543210")
)

type tokenFactory func(t *testing.T, kind TokenKind, key []byte) TokenService

var tokenFormats = map[string]tokenFactory{
	"paseto": func(t *testing.T, kind TokenKind, key []byte) TokenService {
		svc, err := NewPasetoService(kind, key)
		require.NoError(t, err)
		return svc
	},
	"jwt": func(t *testing.T, kind TokenKind, key []byte) TokenService {
		svc, err := NewJWTService(kind, key)
		require.NoError(t, err)
		return svc
	},
}

func TestTokenService_RoundTrip(t *testing.T) {
	for name, factory := range tokenFormats {
		t.Run(name, func(t *testing.T) {
			svc := factory(t, KindAccess, accessKey)
			userID := uuid.NewString()

			token, err := svc.CreateToken(TokenClaims{
				UserID:   userID,
				Email:    "a@x.com",
				Username: "alice",
				FullName: "Alice A",
			}, time.Hour)
			require.NoError(t, err)

			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			assert.Equal(t, KindAccess, claims.Kind)
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, "a@x.com", claims.Email)
			assert.Equal(t, "alice", claims.Username)
			assert.Equal(t, "Alice A", claims.FullName)
			assert.NotEmpty(t, claims.ID)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestTokenService_RefreshCarriesIdentityOnly(t *testing.T) {
	for name, factory := range tokenFormats {
		t.Run(name, func(t *testing.T) {
			svc := factory(t, KindRefresh, refreshKey)

			token, err := svc.CreateToken(TokenClaims{UserID: "u1", Email: "a@x.com"}, time.Hour)
			require.NoError(t, err)

			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.UserID)
			assert.Empty(t, claims.Email)
		})
	}
}

func TestTokenService_TokensAreUnique(t *testing.T) {
	for name, factory := range tokenFormats {
		t.Run(name, func(t *testing.T) {
			svc := factory(t, KindRefresh, refreshKey)

			first, err := svc.CreateToken(TokenClaims{UserID: "u1"}, time.Hour)
			require.NoError(t, err)
			second, err := svc.CreateToken(TokenClaims{UserID: "u1"}, time.Hour)
			require.NoError(t, err)

			assert.NotEqual(t, first, second)
		})
	}
}

func TestTokenService_Expired(t *testing.T) {
	for name, factory := range tokenFormats {
		t.Run(name, func(t *testing.T) {
			svc := factory(t, KindAccess, accessKey)

			token, err := svc.CreateToken(TokenClaims{UserID: "u1"}, -time.Minute)
			require.NoError(t, err)

			_, err = svc.VerifyToken(token)
			assert.ErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	for name, factory := range tokenFormats {
		t.Run(name, func(t *testing.T) {
			refresh := factory(t, KindRefresh, refreshKey)
			access := factory(t, KindAccess, accessKey)

			token, err := refresh.CreateToken(TokenClaims{UserID: "u1"}, time.Hour)
			require.NoError(t, err)

			_, err = access.VerifyToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_KindMismatch(t *testing.T) {
	for name, factory := range tokenFormats {
		t.Run(name, func(t *testing.T) {
			refresh := factory(t, KindRefresh, accessKey)
			access := factory(t, KindAccess, accessKey)

			token, err := refresh.CreateToken(TokenClaims{UserID: "u1"}, time.Hour)
			require.NoError(t, err)

			_, err = access.VerifyToken(token)
			assert.ErrorIs(t, err, ErrTokenKind)
		})
	}
}

func TestTokenService_Garbage(t *testing.T) {
	for name, factory := range tokenFormats {
		t.Run(name, func(t *testing.T) {
			svc := factory(t, KindAccess, accessKey)

			token, err := svc.CreateToken(TokenClaims{UserID: "u1"}, time.Hour)
			require.NoError(t, err)

			for _, bad := range []string{"", "not-a-token", token[:len(token)-4] + strings.Repeat("A", 4)} {
				_, err := svc.VerifyToken(bad)
				assert.ErrorIs(t, err, ErrInvalidToken, bad)
			}
		})
	}
}

func TestNewPasetoService_KeyLength(t *testing.T) {
	_, err := NewPasetoService(KindAccess, []byte("short"))
	assert.Error(t, err)
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService(KindAccess, nil)
	assert.Error(t, err)
}

func TestNewTokenServices(t *testing.T) {
	access, refresh, err := NewTokenServices(config.AuthConfig{
		TokenFormat:        config.TokenFormatPaseto,
		AccessTokenSecret:  accessKey,
		RefreshTokenSecret: refreshKey,
	})
	require.NoError(t, err)
	assert.IsType(t, &PasetoService{}, access)
	assert.IsType(t, &PasetoService{}, refresh)

	access, refresh, err = NewTokenServices(config.AuthConfig{
		TokenFormat:        config.TokenFormatJWT,
		AccessTokenSecret:  []byte("a"),
		RefreshTokenSecret: []byte("b"),
	})
	require.NoError(t, err)
	assert.IsType(t, &JWTService{}, access)
	assert.IsType(t, &JWTService{}, refresh)

	_, _, err = NewTokenServices(config.AuthConfig{TokenFormat: "saml"})
	assert.Error(t, err)
}
