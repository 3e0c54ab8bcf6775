package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory with the same semantics as Repository.
// Used by tests and local tooling that run without Postgres.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[uuid.UUID]*User),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, u *User, password string) error {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	username := strings.ToLower(u.Username)
	if r.conflictLocked(uuid.Nil, username, u.Email) {
		return ErrDuplicate
	}

	ts := r.now()
	stored := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		PasswordHash: passwordHash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	r.users[stored.ID] = stored

	*u = *clone(stored)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetPublicByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (r *MemoryRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = &token
	u.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != presented {
		return ErrStaleToken
	}
	u.RefreshToken = &next
	u.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		u.RefreshToken = nil
		u.UpdatedAt = r.now()
	}
	return nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) UpdateAccount(ctx context.Context, id uuid.UUID, upd AccountUpdate) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	username := u.Username
	if upd.Username != "" {
		username = strings.ToLower(upd.Username)
	}
	if r.conflictLocked(id, username, upd.Email) {
		return nil, ErrDuplicate
	}

	u.FullName = upd.FullName
	u.Email = upd.Email
	u.Username = username
	u.UpdatedAt = r.now()
	return u.Public(), nil
}

func (r *MemoryRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*User, error) {
	return r.update(id, func(u *User) { u.Avatar = url })
}

func (r *MemoryRepository) UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) (*User, error) {
	return r.update(id, func(u *User) { u.CoverImage = url })
}

func (r *MemoryRepository) update(id uuid.UUID, apply func(*User)) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	apply(u)
	u.UpdatedAt = r.now()
	return u.Public(), nil
}

// conflictLocked reports whether another user already owns username or email. Caller holds mu.
func (r *MemoryRepository) conflictLocked(self uuid.UUID, username, email string) bool {
	for id, u := range r.users {
		if id == self {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func clone(u *User) *User {
	cp := *u
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		cp.RefreshToken = &token
	}
	return &cp
}
