package board

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/memberboard/pkg/validator"
)

func testPost(authorID uuid.UUID) *Post {
	now := time.Now().UTC()
	return &Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     "First post",
		Body:      "Hello, board.",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("stores the post", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		authorID := uuid.New()

		storage.On("CreatePost", mock.Anything, mock.AnythingOfType("*board.Post")).Return(nil)

		post, err := svc.Create(context.Background(), authorID, "First post", "Hello, board.")
		require.NoError(t, err)

		assert.Equal(t, authorID, post.AuthorID)
		assert.NotEqual(t, uuid.Nil, post.ID)
		storage.AssertExpectations(t)
	})

	t.Run("empty title", func(t *testing.T) {
		t.Parallel()

		svc := NewService(new(MockStorage))

		_, err := svc.Create(context.Background(), uuid.New(), "", "body")
		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("oversized body", func(t *testing.T) {
		t.Parallel()

		svc := NewService(new(MockStorage))

		_, err := svc.Create(context.Background(), uuid.New(), "title", strings.Repeat("x", maxBodyLen+1))
		assert.True(t, validator.IsValidationError(err))
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("defaults and clamps limit", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)

		storage.On("ListPosts", mock.Anything, DefaultPageSize, 0).Return([]*Post{}, nil).Once()
		storage.On("ListPosts", mock.Anything, maxPageSize, 0).Return([]*Post{}, nil).Once()

		_, err := svc.List(context.Background(), 0, -5)
		require.NoError(t, err)
		_, err = svc.List(context.Background(), 5000, 0)
		require.NoError(t, err)

		storage.AssertExpectations(t)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("author can update", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		authorID := uuid.New()
		post := testPost(authorID)

		storage.On("GetPost", mock.Anything, post.ID).Return(post, nil)
		storage.On("UpdatePost", mock.Anything, post).Return(nil)

		updated, err := svc.Update(context.Background(), authorID, post.ID, "New title", "New body")
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		post := testPost(uuid.New())

		storage.On("GetPost", mock.Anything, post.ID).Return(post, nil)

		_, err := svc.Update(context.Background(), uuid.New(), post.ID, "New title", "New body")
		assert.ErrorIs(t, err, ErrNotPostAuthor)
		storage.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		postID := uuid.New()

		storage.On("GetPost", mock.Anything, postID).Return(nil, ErrPostNotFound)

		_, err := svc.Update(context.Background(), uuid.New(), postID, "t", "b")
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("author can delete", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		authorID := uuid.New()
		post := testPost(authorID)

		storage.On("GetPost", mock.Anything, post.ID).Return(post, nil)
		storage.On("DeletePost", mock.Anything, post.ID).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), authorID, post.ID))
		storage.AssertExpectations(t)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		post := testPost(uuid.New())

		storage.On("GetPost", mock.Anything, post.ID).Return(post, nil)

		err := svc.Delete(context.Background(), uuid.New(), post.ID)
		assert.ErrorIs(t, err, ErrNotPostAuthor)
		storage.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything)
	})
}
