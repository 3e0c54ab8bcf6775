package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/vidtube-api/internal/database"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrDuplicate  = errors.New("username or email already exists")
	// ErrStaleToken means the stored refresh token no longer matches the presented one
	ErrStaleToken = errors.New("refresh token is expired or used")
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

// Repository persists users in Postgres through Bun
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create hashes password, inserts u and fills its generated fields
func (r *Repository) Create(ctx context.Context, u *User, password string) error {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	dbUser := &database.User{
		ID:           uuid.New(),
		Username:     strings.ToLower(u.Username),
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		PasswordHash: passwordHash,
	}

	_, err = r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	*u = *mapDBUserToModel(dbUser)
	return nil
}

// GetByID retrieves a full user record by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetPublicByID retrieves a user without reading the password hash or refresh token
func (r *Repository) GetPublicByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		ExcludeColumn("password_hash", "refresh_token").
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// FindByUsernameOrEmail returns the user whose username or email matches; empty arguments are ignored
func (r *Repository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, ErrNotFound
	}

	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			if username != "" {
				q = q.WhereOr("u.username = ?", username)
			}
			if email != "" {
				q = q.WhereOr("u.email = ?", email)
			}
			return q
		}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// SetRefreshToken stores token as the user's only valid refresh token
func (r *Repository) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("refresh_token = ?", token).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return expectOneRow(result, ErrNotFound)
}

// RotateRefreshToken replaces presented with next only if presented is still the stored token.
// The comparison and the write happen in a single UPDATE so concurrent rotations cannot both win.
func (r *Repository) RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("refresh_token = ?", next).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("refresh_token = ?", presented).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return expectOneRow(result, ErrStaleToken)
}

// ClearRefreshToken unsets the stored refresh token
func (r *Repository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("refresh_token = NULL").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

// UpdatePassword hashes and stores a new password
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectOneRow(result, ErrNotFound)
}

// UpdateAccount changes the editable profile fields and returns the public record
func (r *Repository) UpdateAccount(ctx context.Context, id uuid.UUID, upd AccountUpdate) (*User, error) {
	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("full_name = ?", upd.FullName).
		Set("email = ?", upd.Email).
		Set("updated_at = NOW()").
		Where("id = ?", id)
	if upd.Username != "" {
		q = q.Set("username = ?", strings.ToLower(upd.Username))
	}

	return r.updateReturning(ctx, q, "failed to update account")
}

// UpdateAvatar stores a new avatar URL
func (r *Repository) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*User, error) {
	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("avatar = ?", url).
		Set("updated_at = NOW()").
		Where("id = ?", id)

	return r.updateReturning(ctx, q, "failed to update avatar")
}

// UpdateCoverImage stores a new cover image URL
func (r *Repository) UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) (*User, error) {
	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("cover_image = ?", url).
		Set("updated_at = NOW()").
		Where("id = ?", id)

	return r.updateReturning(ctx, q, "failed to update cover image")
}

func (r *Repository) updateReturning(ctx context.Context, q *bun.UpdateQuery, msg string) (*User, error) {
	dbUser := new(database.User)
	err := q.Returning("id, username, email, full_name, avatar, cover_image, created_at, updated_at").
		Scan(ctx, dbUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	return mapDBUserToModel(dbUser), nil
}

func expectOneRow(result sql.Result, noRows error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return noRows
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Username:     dbu.Username,
		Email:        dbu.Email,
		FullName:     dbu.FullName,
		Avatar:       dbu.Avatar,
		CoverImage:   dbu.CoverImage,
		PasswordHash: dbu.PasswordHash,
		RefreshToken: dbu.RefreshToken,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
