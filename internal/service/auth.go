// Authentication flow:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ Sessions (session.Manager)
//
// The service never touches cookies or requests. It returns the session
// token and expiry and the handler decides how they reach the client.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

// Sessions is the part of the session manager the auth flow needs.
type Sessions interface {
	Start(ctx context.Context, userID string) (token string, expiresAt time.Time, err error)
	Destroy(ctx context.Context, token string) error
}

// AuthService handles registration, login, logout and "who am I".
type AuthService struct {
	users     repository.UserRepository
	sessions  Sessions
	passwords *auth.PasswordService
	logger    *slog.Logger

	// dummyHash is verified against when the email is unknown, so a failed
	// login costs one bcrypt comparison either way.
	dummyHash string
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	sessions Sessions,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) (*AuthService, error) {
	dummy, err := passwords.Hash("postboard-login-timing-equaliser")
	if err != nil {
		return nil, fmt.Errorf("service/auth: preparing dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// RegisterInput holds the fields a new account needs.
type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login: the user record plus the
// session the handler should put in a cookie.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account and logs it in.
//
// All four fields must be non-empty. A duplicate email surfaces as the
// repository's apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Name == "" || in.Surname == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.ValidationFailed("", "Missing fields")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	result, err := s.startSession(ctx, user)
	if err != nil {
		// The account row is committed; the client can still log in with it.
		s.logger.Warn("user registered without a session",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return result, nil
}

// Login checks credentials and starts a new session.
//
// An unknown email and a wrong password produce the same error, so the
// response cannot be used to discover which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Missing email or password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.Verify(s.dummyHash, password)
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !s.passwords.Verify(user.PasswordHash, password) {
		return nil, invalidCredentials()
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.startSession(ctx, user)
}

// Logout destroys the session behind token. An empty token is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("service/auth: %w", err)
	}
	return nil
}

// CurrentUser returns the user behind an authenticated session, or nil for
// an anonymous request (empty userID).
//
// A session pointing at a missing user is an internal inconsistency, not a
// 404: the not-found error is dropped from the chain.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: session user %s does not exist", userID)
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}

	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: starting session for user %s: %w", user.ID, err)
	}

	// Never hand the hash back up the stack.
	user.PasswordHash = ""

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func invalidCredentials() error {
	return apperror.ValidationFailed("", "Invalid credentials")
}
