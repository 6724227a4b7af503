package board

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/memberboard/pkg/logger"
	"github.com/dmitrymomot/memberboard/pkg/validator"
)

const (
	maxTitleLen = 200
	maxBodyLen  = 10000

	// DefaultPageSize bounds List when the caller does not specify a limit.
	DefaultPageSize = 20
	maxPageSize     = 100
)

// Storage defines the persistence operations the board service needs.
type Storage interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context, limit, offset int) ([]*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// Service implements board operations on top of Storage.
type Service struct {
	storage Storage
	log     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates the board service.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new post authored by authorID.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, title, body string) (*Post, error) {
	if err := validatePostContent(title, body); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.log.InfoContext(ctx, "post created", logger.PostID(post.ID.String()), logger.UserID(authorID.String()))

	return post, nil
}

// Get returns a single post by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.storage.GetPost(ctx, id)
}

// List returns posts newest first. A non-positive limit falls back to
// DefaultPageSize; limits above maxPageSize are clamped.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Post, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.storage.ListPosts(ctx, limit, offset)
}

// Update replaces the title and body of a post. Only the author may update.
func (s *Service) Update(ctx context.Context, actorID, postID uuid.UUID, title, body string) (*Post, error) {
	if err := validatePostContent(title, body); err != nil {
		return nil, err
	}

	post, err := s.storage.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrNotPostAuthor
	}

	post.Title = title
	post.Body = body
	post.UpdatedAt = time.Now().UTC()
	if err := s.storage.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// Delete removes a post. Only the author may delete.
func (s *Service) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	post, err := s.storage.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return ErrNotPostAuthor
	}

	if err := s.storage.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.log.InfoContext(ctx, "post deleted", logger.PostID(postID.String()), logger.UserID(actorID.String()))

	return nil
}

func validatePostContent(title, body string) error {
	return validator.Apply(
		validator.Required("title", title),
		validator.MaxLen("title", title, maxTitleLen),
		validator.Required("body", body),
		validator.MaxLen("body", body, maxBodyLen),
	)
}
