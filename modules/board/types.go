// Package board implements the discussion board: text posts created,
// listed, edited and deleted by confirmed members.
package board

import (
	"time"

	"github.com/google/uuid"
)

// Post is a single board entry.
type Post struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicPost is the wire representation of a post.
type PublicPost struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Public converts a Post to its wire representation.
func (p *Post) Public() PublicPost {
	return PublicPost{
		ID:        p.ID.String(),
		AuthorID:  p.AuthorID.String(),
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
