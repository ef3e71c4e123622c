package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/service"
)

// AccountService is what AuthHandler needs from service.AuthService.
type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandler serves registration, login, logout and /me.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create the account, start a session, set the cookie
//   - HandleLogin    → check credentials, start a session, set the cookie
//   - HandleLogout   → destroy the session and clear the cookie
//   - HandleMe       → return the current user, or null when anonymous
type AuthHandler struct {
	accounts AccountService
	cookies  *auth.CookieManager
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(accounts AccountService, cookies *auth.CookieManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		cookies:  cookies,
		logger:   logger,
	}
}

// userResponse wraps a user; a nil User encodes as {"user": null}.
type userResponse struct {
	User *model.User `json:"user"`
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /api/register {name, surname, email, password}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondWithSession(w, result)
}

// HandleLogin authenticates by email and password.
//
// HTTP: POST /api/login {email, password}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondWithSession(w, result)
}

// HandleLogout ends the caller's session, if any, and clears the cookie.
//
// HTTP: POST /api/logout
//
// It always answers {"ok": true}. A store failure leaves the session to
// expire on its own and is only logged.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token, err := h.cookies.Token(r); err == nil {
		if err := h.accounts.Logout(r.Context(), token); err != nil {
			h.logger.Error("logout: destroying session", slog.String("error", err.Error()))
		}
	}

	h.cookies.Clear(w)
	writeJSON(w, h.logger, http.StatusOK, OKResponse{OK: true})
}

// HandleMe returns the logged-in user or {"user": null}.
//
// HTTP: GET /api/me (behind OptionalAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, h.logger, http.StatusOK, userResponse{User: nil})
		return
	}

	user, err := h.accounts.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, userResponse{User: user})
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, result *service.AuthResult) {
	if err := h.cookies.Set(w, result.Token, result.ExpiresAt); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, userResponse{User: result.User})
}
