// Package mongodb implements the persistence interfaces of the auth and
// board modules on MongoDB collections.
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

	"github.com/dmitrymomot/memberboard/modules/auth"
)

const usersCollection = "users"

type userDocument struct {
	ID             string    `bson:"_id"`
	Email          string    `bson:"email"`
	Name           string    `bson:"name,omitempty"`
	PasswordHash   []byte    `bson:"password_hash"`
	EmailConfirmed bool      `bson:"email_confirmed"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toUserDocument(u *auth.User) userDocument {
	return userDocument{
		ID:             u.ID.String(),
		Email:          u.Email,
		Name:           u.Name,
		PasswordHash:   u.PasswordHash,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDocument) toUser() (*auth.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", d.ID, err)
	}
	return &auth.User{
		ID:             id,
		Email:          d.Email,
		Name:           d.Name,
		PasswordHash:   d.PasswordHash,
		EmailConfirmed: d.EmailConfirmed,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

// UserRepository implements auth.Storage on a MongoDB collection.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates the repository over db's users collection.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	_, err := r.col.InsertOne(ctx, toUserDocument(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toUser()
}

func (r *UserRepository) SetEmailConfirmed(ctx context.Context, id uuid.UUID) error {
	return r.updateOne(ctx, id, bson.M{"email_confirmed": true})
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	return r.updateOne(ctx, id, bson.M{"password_hash": hash})
}

func (r *UserRepository) updateOne(ctx context.Context, id uuid.UUID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
