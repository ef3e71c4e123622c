// Package repository declares the storage contracts the service layer depends
// on. Implementations live in subpackages (sqlite, memory); services only ever
// see these interfaces, so tests can swap in fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/postboard/internal/model"
)

type UserRepository interface {
	// Create assigns ID and CreatedAt. A duplicate email returns an
	// apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	// GetByEmail includes the password hash. Returns apperror.ErrNotFound
	// when no user has that email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

type PostRepository interface {
	// List returns every post joined with its author, newest first.
	List(ctx context.Context) ([]model.AuthoredPost, error)
	// Create assigns ID and CreatedAt and returns the author-joined row.
	Create(ctx context.Context, post *model.Post) (*model.AuthoredPost, error)
	// Delete removes the post if requestingUserID owns it. Returns
	// apperror.ErrNotFound or apperror.ErrForbidden otherwise.
	Delete(ctx context.Context, postID, requestingUserID string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// GetByTokenHash returns apperror.ErrNotFound for unknown hashes. Expired
	// rows are returned as-is; the caller decides what expiry means.
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, tokenHash string) error
	// DeleteExpired removes every session whose expiry is at or before now
	// and reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
