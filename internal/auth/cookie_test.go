package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars!!"

// newTestCookieManager uses a fixed, known secret so tests are deterministic.
func newTestCookieManager(t *testing.T) *CookieManager {
	t.Helper()
	m, err := NewCookieManager("sid", testSecret, false)
	if err != nil {
		t.Fatalf("NewCookieManager: %v", err)
	}
	return m
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewCookieManager_ShortSecret(t *testing.T) {
	_, err := NewCookieManager("sid", "short", false)
	if err == nil {
		t.Fatal("NewCookieManager() should reject secrets shorter than 16 chars")
	}
}

func TestNewCookieManager_EmptyName(t *testing.T) {
	_, err := NewCookieManager("", testSecret, false)
	if err == nil {
		t.Fatal("NewCookieManager() should reject an empty cookie name")
	}
}

// =========================================================================
// ENCODE / DECODE TESTS
// =========================================================================

func TestEncode_LooksLikeJWT(t *testing.T) {
	m := newTestCookieManager(t)

	value, err := m.Encode("opaque-token", time.Now().Add(time.Hour))
	require.NoError(t, err)

	// header.payload.signature
	assert.Equal(t, 2, strings.Count(value, "."))
}

func TestEncode_EmptyToken(t *testing.T) {
	m := newTestCookieManager(t)

	_, err := m.Encode("", time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestDecode_RoundTrip(t *testing.T) {
	m := newTestCookieManager(t)

	value, err := m.Encode("opaque-token", time.Now().Add(time.Hour))
	require.NoError(t, err)

	token, err := m.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestDecode_Rejects(t *testing.T) {
	m := newTestCookieManager(t)
	other, err := NewCookieManager("sid", "wrong-secret-32-chars-long!!!!!!", false)
	require.NoError(t, err)

	valid, err := m.Encode("opaque-token", time.Now().Add(time.Hour))
	require.NoError(t, err)
	expired, err := m.Encode("opaque-token", time.Now().Add(-time.Second))
	require.NoError(t, err)
	foreign, err := other.Encode("opaque-token", time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
	}{
		{"expired", expired},
		{"tampered signature", valid[:len(valid)-3] + "xxx"},
		{"signed with another secret", foreign},
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Decode(tt.value)
			assert.Error(t, err)
		})
	}
}

// =========================================================================
// COOKIE TESTS
// =========================================================================

func TestSet_WritesHardenedCookie(t *testing.T) {
	m := newTestCookieManager(t)
	rr := httptest.NewRecorder()

	require.NoError(t, m.Set(rr, "opaque-token", time.Now().Add(24*time.Hour)))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "sid", c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.InDelta(t, (24 * time.Hour).Seconds(), float64(c.MaxAge), 5)
}

func TestClear_ExpiresCookie(t *testing.T) {
	m := newTestCookieManager(t)
	rr := httptest.NewRecorder()

	m.Clear(rr)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestToken_FromRequest(t *testing.T) {
	m := newTestCookieManager(t)

	value, err := m.Encode("opaque-token", time.Now().Add(time.Hour))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: value})

	token, err := m.Token(req)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestToken_MissingCookie(t *testing.T) {
	m := newTestCookieManager(t)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)

	_, err := m.Token(req)
	assert.True(t, errors.Is(err, ErrNoSessionCookie))
}
