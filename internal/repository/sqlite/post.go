package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

var _ repository.PostRepository = (*PostDB)(nil)

// PostDB stores posts in the posts table and joins them with their authors.
type PostDB struct {
	conn *sql.DB
}

const selectAuthoredPost = `
	SELECT p.id, p.user_id, p.content, p.created_at, u.name, u.surname
	FROM posts p
	JOIN users u ON u.id = p.user_id`

// List returns every post, newest first.
//
// created_at alone is not a total order (two posts can share a timestamp), so
// rowid breaks ties: a later insert always sorts before an earlier one.
func (p *PostDB) List(ctx context.Context) ([]model.AuthoredPost, error) {
	rows, err := p.conn.QueryContext(ctx,
		selectAuthoredPost+` ORDER BY p.created_at DESC, p.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty feed encodes as [] rather than null.
	posts := make([]model.AuthoredPost, 0)

	for rows.Next() {
		var ap model.AuthoredPost
		if err := scanAuthoredPost(rows, &ap); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, ap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Create inserts post and returns it joined with its author. ID and
// CreatedAt are assigned here and written back into post.
func (p *PostDB) Create(ctx context.Context, post *model.Post) (*model.AuthoredPost, error) {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now().UTC()

	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, content, created_at) VALUES (?, ?, ?, ?)`,
		post.ID,
		post.UserID,
		post.Content,
		post.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting post: %w", err)
	}

	var ap model.AuthoredPost
	row := tx.QueryRowContext(ctx, selectAuthoredPost+` WHERE p.id = ?`, post.ID)
	if err := scanAuthoredPost(row, &ap); err != nil {
		return nil, fmt.Errorf("sqlite: reading back post %s: %w", post.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing post: %w", err)
	}

	return &ap, nil
}

// Delete removes a post owned by requestingUserID.
//
// The ownership check and the delete share one transaction, so the row
// cannot change owner or disappear between them.
func (p *PostDB) Delete(ctx context.Context, postID, requestingUserID string) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM posts WHERE id = ?`, postID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFoundMessage("Post not found")
		}
		return fmt.Errorf("sqlite: looking up post %s: %w", postID, err)
	}

	if ownerID != requestingUserID {
		return apperror.Forbidden("Not allowed")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, postID); err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", postID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post delete: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAuthoredPost(s scanner, ap *model.AuthoredPost) error {
	return s.Scan(
		&ap.ID,
		&ap.UserID,
		&ap.Content,
		&ap.CreatedAt,
		&ap.Name,
		&ap.Surname,
	)
}
