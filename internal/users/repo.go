// Package users keeps a local copy of the identity provider's profile for
// every owner who has made an authenticated request.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is the stored profile of an authenticated owner.
type User struct {
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Store is implemented by Repo and MemoryRepo.
type Store interface {
	EnsureUser(ctx context.Context, u UpsertUser) (*User, error)
	Get(ctx context.Context, firebaseUID string) (*User, error)
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// EnsureUser inserts the user or refreshes the non-empty fields, returning
// the merged profile.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (*User, error) {
	if strings.TrimSpace(u.FirebaseUID) == "" {
		return nil, fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, photo_url, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  updated_at = now()
returning firebase_uid, coalesce(email,''), coalesce(display_name,''), coalesce(photo_url,''), created_at, updated_at;
`
	var out User
	err := r.db.QueryRowContext(ctx, q, u.FirebaseUID, u.Email, u.DisplayName, u.PhotoURL).Scan(
		&out.FirebaseUID, &out.Email, &out.DisplayName, &out.PhotoURL, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return &out, nil
}

func (r *Repo) Get(ctx context.Context, firebaseUID string) (*User, error) {
	const q = `
select firebase_uid, coalesce(email,''), coalesce(display_name,''), coalesce(photo_url,''), created_at, updated_at
from users
where firebase_uid = $1
`
	var out User
	err := r.db.QueryRowContext(ctx, q, firebaseUID).Scan(
		&out.FirebaseUID, &out.Email, &out.DisplayName, &out.PhotoURL, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &out, nil
}

// MemoryRepo is the in-process Store used with DB_DRIVER=memory.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) EnsureUser(_ context.Context, u UpsertUser) (*User, error) {
	if strings.TrimSpace(u.FirebaseUID) == "" {
		return nil, fmt.Errorf("firebase_uid required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	cur, ok := r.users[u.FirebaseUID]
	if !ok {
		cur = User{FirebaseUID: u.FirebaseUID, CreatedAt: now}
	}
	if u.Email != "" {
		cur.Email = u.Email
	}
	if u.DisplayName != "" {
		cur.DisplayName = u.DisplayName
	}
	if u.PhotoURL != "" {
		cur.PhotoURL = u.PhotoURL
	}
	cur.UpdatedAt = now
	r.users[u.FirebaseUID] = cur

	out := cur
	return &out, nil
}

func (r *MemoryRepo) Get(_ context.Context, firebaseUID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[firebaseUID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}
