package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/postboard/internal/apperror"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so nothing else can read
// or shadow the values stored under it.
type contextKey string

const (
	userIDKey       contextKey = "userID"
	sessionTokenKey contextKey = "sessionToken"
)

// SessionResolver maps an opaque session token to the id of the user who
// owns it. Unknown or expired tokens return an error wrapping
// apperror.ErrUnauthenticated; anything else is a store failure.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It verifies the signed session cookie, resolves the session token against
// the store and puts both the user id and the token in the request context.
// A missing, forged, expired or revoked session yields 401; a store failure
// yields 500.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(cookies *CookieManager, sessions SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, userID, err := authenticate(r, cookies, sessions)
			if err != nil {
				if isAuthFailure(err) {
					writeError(w, http.StatusUnauthorized, "Not authenticated")
					return
				}
				logger.Error("resolving session", slog.String("error", err.Error()))
				writeError(w, http.StatusInternalServerError, "Server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), userID, token)))
		})
	}
}

// OptionalAuth attaches the user identity when a valid session is present.
// Any cookie that fails to authenticate lets the request through as
// anonymous; a store failure is a 500, as under RequireAuth.
func OptionalAuth(cookies *CookieManager, sessions SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, userID, err := authenticate(r, cookies, sessions)
			if err != nil {
				if !isAuthFailure(err) {
					logger.Error("resolving session", slog.String("error", err.Error()))
					writeError(w, http.StatusInternalServerError, "Server error")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), userID, token)))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns ("", false) if the request is anonymous.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SessionTokenFromContext returns the session token of the current request.
// Logout uses it to destroy exactly the session that made the call.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenKey).(string)
	return token, ok && token != ""
}

// WithUser returns a context carrying an authenticated user and session
// token, as RequireAuth would set them. Handlers under test use it to skip
// the cookie round trip.
func WithUser(ctx context.Context, userID, token string) context.Context {
	return withSession(ctx, userID, token)
}

func withSession(ctx context.Context, userID, token string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionTokenKey, token)
}

// authenticate is shared by RequireAuth and OptionalAuth. Cookie errors are
// reported as apperror.ErrUnauthenticated so callers only branch on one kind.
func authenticate(r *http.Request, cookies *CookieManager, sessions SessionResolver) (token, userID string, err error) {
	token, err = cookies.Token(r)
	if err != nil {
		return "", "", errors.Join(apperror.ErrUnauthenticated, err)
	}

	userID, err = sessions.Resolve(r.Context(), token)
	if err != nil {
		return "", "", err
	}
	return token, userID, nil
}

func isAuthFailure(err error) bool {
	return errors.Is(err, apperror.ErrUnauthenticated)
}

// writeError mirrors the handler package's JSON error shape. It lives here
// too so the middleware does not depend on the handler package.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
