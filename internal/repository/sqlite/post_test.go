package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
)

func createTestPost(t *testing.T, db *DB, userID, content string) *model.AuthoredPost {
	t.Helper()
	ap, err := db.Posts().Create(context.Background(), &model.Post{UserID: userID, Content: content})
	if err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return ap
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestPostCreate_ReturnsAuthoredRow(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")

	post := &model.Post{UserID: author.ID, Content: "hello"}
	ap, err := db.Posts().Create(context.Background(), post)
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, post.ID, ap.ID)
	assert.Equal(t, author.ID, ap.UserID)
	assert.Equal(t, "hello", ap.Content)
	assert.Equal(t, "Ada", ap.Name)
	assert.Equal(t, "Tester", ap.Surname)
	assert.False(t, ap.CreatedAt.IsZero())
}

func TestPostCreate_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Posts().Create(context.Background(), &model.Post{UserID: "ghost", Content: "hi"})
	assert.Error(t, err, "foreign key must reject posts by unknown users")
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestPostList_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)

	posts, err := db.Posts().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostList_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")

	first := createTestPost(t, db, author.ID, "first")
	second := createTestPost(t, db, author.ID, "second")
	third := createTestPost(t, db, author.ID, "third")

	posts, err := db.Posts().List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, third.ID, posts[0].ID)
	assert.Equal(t, second.ID, posts[1].ID)
	assert.Equal(t, first.ID, posts[2].ID)
}

// Identical timestamps fall back to insertion order, newest first.
func TestPostList_TiesBrokenByInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")

	same := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"p-a", "p-b", "p-c"} {
		_, err := db.conn.Exec(
			`INSERT INTO posts (id, user_id, content, created_at) VALUES (?, ?, ?, ?)`,
			id, author.ID, id, same)
		require.NoError(t, err)
	}

	posts, err := db.Posts().List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, []string{"p-c", "p-b", "p-a"},
		[]string{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestPostList_IncludesAuthorNames(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "Ada", "ada@example.com")
	grace := createTestUser(t, db, "Grace", "grace@example.com")

	createTestPost(t, db, ada.ID, "from ada")
	createTestPost(t, db, grace.ID, "from grace")

	posts, err := db.Posts().List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "Grace", posts[0].Name)
	assert.Equal(t, "Ada", posts[1].Name)
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestPostDelete_ByOwner(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")
	post := createTestPost(t, db, author.ID, "bye")

	require.NoError(t, db.Posts().Delete(context.Background(), post.ID, author.ID))

	posts, err := db.Posts().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostDelete_NotFound(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")

	err := db.Posts().Delete(context.Background(), "missing", author.ID)

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	assert.Equal(t, "Post not found", err.Error())
}

func TestPostDelete_NotOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	other := createTestUser(t, db, "Eve", "eve@example.com")
	post := createTestPost(t, db, owner.ID, "mine")

	err := db.Posts().Delete(context.Background(), post.ID, other.ID)

	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Delete() error = %v, want ErrForbidden", err)
	}
	assert.Equal(t, "Not allowed", err.Error())

	// The post must still be there.
	posts, err := db.Posts().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostDelete_Twice(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")
	post := createTestPost(t, db, author.ID, "once")

	require.NoError(t, db.Posts().Delete(context.Background(), post.ID, author.ID))
	err := db.Posts().Delete(context.Background(), post.ID, author.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
