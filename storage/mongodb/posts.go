package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/memberboard/modules/board"
)

const postsCollection = "posts"

type postDocument struct {
	ID        string    `bson:"_id"`
	AuthorID  string    `bson:"author_id"`
	Title     string    `bson:"title"`
	Body      string    `bson:"body"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toPostDocument(p *board.Post) postDocument {
	return postDocument{
		ID:        p.ID.String(),
		AuthorID:  p.AuthorID.String(),
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d postDocument) toPost() (*board.Post, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt post id %q: %w", d.ID, err)
	}
	authorID, err := uuid.Parse(d.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("corrupt author id %q: %w", d.AuthorID, err)
	}
	return &board.Post{
		ID:        id,
		AuthorID:  authorID,
		Title:     d.Title,
		Body:      d.Body,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// PostRepository implements board.Storage on a MongoDB collection.
type PostRepository struct {
	col *mongo.Collection
}

// NewPostRepository creates the repository over db's posts collection.
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(postsCollection)}
}

// EnsureIndexes creates the listing and author indexes. Call once at startup.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create posts indexes: %w", err)
	}
	return nil
}

func (r *PostRepository) CreatePost(ctx context.Context, post *board.Post) error {
	if _, err := r.col.InsertOne(ctx, toPostDocument(post)); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetPost(ctx context.Context, id uuid.UUID) (*board.Post, error) {
	var doc postDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, board.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return doc.toPost()
}

func (r *PostRepository) ListPosts(ctx context.Context, limit, offset int) ([]*board.Post, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset)))
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []*board.Post
	for cursor.Next(ctx) {
		var doc postDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode post: %w", err)
		}
		post, err := doc.toPost()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor failure while listing posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) UpdatePost(ctx context.Context, post *board.Post) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": post.ID.String()}, bson.M{"$set": bson.M{
		"title":      post.Title,
		"body":       post.Body,
		"updated_at": post.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return board.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return board.ErrPostNotFound
	}
	return nil
}
