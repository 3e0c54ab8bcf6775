package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
	"github.com/redmonkez12/vidtube-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Identity is the authenticated caller, taken from access token claims
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Username string
	FullName string
}

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
}

// NewMiddleware expects the access token service
func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth rejects the request with 401 unless it carries a valid access token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.authenticate(r)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// OptionalAuth injects the caller's identity when a valid access token is present
// and otherwise lets the request through anonymously.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.authenticate(r)
		if err != nil {
			if !errors.Is(err, errNoCredentials) {
				logging.GetLoggerFromContext(r.Context()).Debug("ignoring invalid optional credentials", "error", err.Error())
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

var errNoCredentials = apperror.Unauthorized("missing authentication").WithCode(httputil.CodeMissingAuth)

func (m *Middleware) authenticate(r *http.Request) (Identity, error) {
	var token string

	// Priority 1: Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return Identity{}, apperror.Unauthorized("invalid authorization header format").WithCode(httputil.CodeInvalidAuthHeader)
		}
		token = parts[1]
	}

	// Priority 2: Cookie (fallback)
	if token == "" {
		cookieToken, err := GetAccessTokenFromCookie(r)
		if err != nil {
			return Identity{}, errNoCredentials
		}
		token = cookieToken
	}

	claims, err := m.tokenService.VerifyToken(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return Identity{}, apperror.Unauthorized(err.Error()).WithCode(httputil.CodeTokenExpired)
		}
		return Identity{}, apperror.Unauthorized(ErrInvalidToken.Error()).WithCode(httputil.CodeInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, apperror.Unauthorized("invalid user ID in token").WithCode(httputil.CodeInvalidTokenUserID)
	}

	return Identity{
		UserID:   userID,
		Email:    claims.Email,
		Username: claims.Username,
		FullName: claims.FullName,
	}, nil
}

// WithIdentity stores the caller's identity in ctx
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext returns the identity injected by RequireAuth or OptionalAuth
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(Identity)
	return identity, ok
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return identity.UserID, true
}

// RequireIdentity is used by handlers behind RequireAuth; a missing identity means the route was mounted without it
func RequireIdentity(ctx context.Context) (Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, apperror.Unauthorized("missing authentication").WithCode(httputil.CodeMissingAuth)
	}
	return identity, nil
}
