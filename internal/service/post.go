// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never *sqlite.DB, so tests can pass
// hand-written fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

// PostService handles the feed: listing, posting and deleting.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the whole feed, newest first. Never nil.
func (s *PostService) List(ctx context.Context) ([]model.AuthoredPost, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	if posts == nil {
		posts = []model.AuthoredPost{}
	}
	return posts, nil
}

// Create publishes content as userID. Surrounding whitespace is trimmed
// before storage; nothing left means apperror.ErrValidation.
func (s *PostService) Create(ctx context.Context, userID, content string) (*model.AuthoredPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Empty content")
	}

	post := &model.Post{UserID: userID, Content: content}
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", created.ID),
		slog.String("userID", userID),
	)

	return created, nil
}

// Delete removes postID on behalf of userID.
//
// Malformed ids are rejected before the store is touched. Ownership is
// enforced by the repository inside its transaction.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	if _, err := xid.FromString(postID); err != nil {
		return apperror.ValidationFailed("id", "Invalid post id")
	}

	if err := s.repo.Delete(ctx, postID, userID); err != nil {
		return fmt.Errorf("service/post: deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted",
		slog.String("id", postID),
		slog.String("userID", userID),
	)
	return nil
}
