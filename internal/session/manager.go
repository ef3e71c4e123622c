// Package session issues and resolves opaque session tokens.
//
// A token is 32 random bytes, hex encoded. Only its sha256 reaches the
// repository, so a leaked database cannot be replayed as live cookies.
// Sessions last a fixed TTL from issuance; they are never extended.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

const tokenBytes = 32

// Manager implements the session lifecycle over a SessionRepository.
// It is safe for concurrent use if the repository is.
type Manager struct {
	repo   repository.SessionRepository
	ttl    time.Duration
	logger *slog.Logger

	// now is swapped in tests to move the clock.
	now func() time.Time
}

// NewManager creates a Manager. A non-positive ttl falls back to
// model.DefaultSessionTTL.
func NewManager(repo repository.SessionRepository, ttl time.Duration, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		ttl = model.DefaultSessionTTL
	}
	return &Manager{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TTL returns the lifetime given to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start creates a session for userID and returns the plain token and its
// expiry. Other sessions of the same user are left alone.
func (m *Manager) Start(ctx context.Context, userID string) (string, time.Time, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("session: generating token: %w", err)
	}
	token := hex.EncodeToString(buf)

	now := m.now()
	s := &model.Session{
		TokenHash: hashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return "", time.Time{}, fmt.Errorf("session: storing session: %w", err)
	}

	return token, s.ExpiresAt, nil
}

// Resolve returns the user id behind token.
//
// Unknown and expired tokens return apperror.ErrUnauthenticated. An expired
// session is deleted on the way out.
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperror.Unauthenticated("Not authenticated")
	}

	hash := hashToken(token)
	s, err := m.repo.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthenticated("Not authenticated")
		}
		return "", fmt.Errorf("session: looking up session: %w", err)
	}

	if s.Expired(m.now()) {
		if err := m.repo.Delete(ctx, hash); err != nil {
			m.logger.Warn("deleting expired session", slog.String("error", err.Error()))
		}
		return "", apperror.Unauthenticated("Not authenticated")
	}

	return s.UserID, nil
}

// Destroy ends the session behind token. Unknown tokens are not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.repo.Delete(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("session: destroying session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many went.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("session: purging expired sessions: %w", err)
	}
	return n, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is cancelled.
// It blocks; start it in its own goroutine.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					m.logger.Error("purging sessions", slog.String("error", err.Error()))
				}
				continue
			}
			if n > 0 {
				m.logger.Info("purged expired sessions", slog.Int64("count", n))
			}
		}
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
