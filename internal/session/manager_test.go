package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository/memory"
)

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *memory.SessionStore, *clock) {
	t.Helper()
	store := memory.NewSessionStore()
	m := NewManager(store, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m.now = c.now
	return m, store, c
}

// failingRepo fails every call with err.
type failingRepo struct{ err error }

func (f failingRepo) Create(context.Context, *model.Session) error { return f.err }
func (f failingRepo) GetByTokenHash(context.Context, string) (*model.Session, error) {
	return nil, f.err
}
func (f failingRepo) Delete(context.Context, string) error { return f.err }
func (f failingRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, f.err
}

// =========================================================================
// Start / Resolve
// =========================================================================

func TestStart_IssuesDistinctTokens(t *testing.T) {
	m, store, c := newTestManager(t, time.Hour)
	ctx := context.Background()

	tok1, exp1, err := m.Start(ctx, "u1")
	require.NoError(t, err)
	tok2, _, err := m.Start(ctx, "u1")
	require.NoError(t, err)

	assert.Len(t, tok1, 64, "32 bytes hex encoded")
	assert.NotEqual(t, tok1, tok2)
	assert.Equal(t, c.t.Add(time.Hour), exp1)
	assert.Equal(t, 2, store.Len(), "earlier sessions of the same user are kept")
}

func TestStart_StoresOnlyTheHash(t *testing.T) {
	m, store, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, _, err := m.Start(ctx, "u1")
	require.NoError(t, err)

	_, err = store.GetByTokenHash(ctx, token)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "plain token must not be a key")

	s, err := store.GetByTokenHash(ctx, hashToken(token))
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
}

func TestResolve(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, _, err := m.Start(ctx, "u1")
	require.NoError(t, err)

	userID, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestResolve_Unknown(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)

	for _, token := range []string{"", "deadbeef"} {
		_, err := m.Resolve(context.Background(), token)
		assert.True(t, errors.Is(err, apperror.ErrUnauthenticated), "token %q", token)
	}
}

func TestResolve_ExpiredIsDeleted(t *testing.T) {
	m, store, c := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, _, err := m.Start(ctx, "u1")
	require.NoError(t, err)

	c.advance(59 * time.Minute)
	_, err = m.Resolve(ctx, token)
	require.NoError(t, err, "still valid just before expiry")

	// No sliding renewal: the earlier Resolve did not extend the session.
	c.advance(time.Minute)
	_, err = m.Resolve(ctx, token)
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
	assert.Equal(t, 0, store.Len())
}

func TestResolve_StoreFailureIsNotUnauthenticated(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(failingRepo{err: boom}, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := m.Resolve(context.Background(), "tok")
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, apperror.ErrUnauthenticated))
}

// =========================================================================
// Destroy / PurgeExpired
// =========================================================================

func TestDestroy(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	keep, _, err := m.Start(ctx, "u1")
	require.NoError(t, err)
	drop, _, err := m.Start(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, drop))
	require.NoError(t, m.Destroy(ctx, drop), "destroy is idempotent")
	require.NoError(t, m.Destroy(ctx, ""))

	_, err = m.Resolve(ctx, drop)
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))

	_, err = m.Resolve(ctx, keep)
	assert.NoError(t, err, "only the destroyed session ends")
}

func TestPurgeExpired(t *testing.T) {
	m, store, c := newTestManager(t, time.Hour)
	ctx := context.Background()

	_, _, err := m.Start(ctx, "old")
	require.NoError(t, err)
	c.advance(30 * time.Minute)
	_, _, err = m.Start(ctx, "new")
	require.NoError(t, err)
	c.advance(45 * time.Minute)

	n, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.Len())
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := NewManager(memory.NewSessionStore(), 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, model.DefaultSessionTTL, m.TTL())
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunJanitor did not return after cancel")
	}
}
