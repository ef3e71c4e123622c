// Package auth provides password hashing, the signed session cookie and the
// middleware that turns that cookie into an authenticated user id.
//
// SESSION COOKIE FLOW:
//  1. Register/login starts a server-side session and gets an opaque token.
//  2. The token is wrapped in an HS256-signed JWT (token in "jti", session
//     expiry in "exp") and set as an HttpOnly cookie.
//  3. On later requests the middleware verifies the signature and expiry,
//     then resolves the token against the session store.
//
// The signature lets us reject forged or foreign cookies without touching the
// database; the store lookup is still what makes logout effective.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "postboard"

// ErrNoSessionCookie means the request carried no usable session cookie.
var ErrNoSessionCookie = errors.New("auth: no session cookie")

// CookieManager signs, sets, reads and clears the session cookie.
type CookieManager struct {
	name   string
	secret []byte
	secure bool
}

// NewCookieManager creates a CookieManager.
// The secret should be at least 32 bytes of random data in production.
func NewCookieManager(name, secret string, secure bool) (*CookieManager, error) {
	if name == "" {
		return nil, errors.New("auth: cookie name must not be empty")
	}
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &CookieManager{name: name, secret: []byte(secret), secure: secure}, nil
}

// Name returns the cookie name.
func (m *CookieManager) Name() string {
	return m.name
}

// Encode wraps a session token in a signed JWT that expires with the session.
func (m *CookieManager) Encode(token string, expiresAt time.Time) (string, error) {
	if token == "" {
		return "", errors.New("auth: session token must not be empty")
	}

	c := jwt.RegisteredClaims{
		ID:        token,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and returns the session token inside it.
//
// Only HS256 is accepted, which rules out "alg: none" and key-confusion tricks.
func (m *CookieManager) Decode(value string) (string, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		value,
		&c,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("auth: session cookie expired")
		}
		return "", fmt.Errorf("auth: invalid session cookie: %w", err)
	}
	if !token.Valid || c.ID == "" {
		return "", errors.New("auth: session cookie has no token")
	}
	return c.ID, nil
}

// Set writes the session cookie. Its lifetime matches the session's.
func (m *CookieManager) Set(w http.ResponseWriter, token string, expiresAt time.Time) error {
	value, err := m.Encode(token, expiresAt)
	if err != nil {
		return err
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear tells the browser to drop the session cookie.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token reads and verifies the request's session cookie.
// Returns ErrNoSessionCookie when the cookie is absent or empty.
func (m *CookieManager) Token(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSessionCookie
	}
	return m.Decode(cookie.Value)
}
