// Package store defines the persistence interfaces for posts and users.
// Services depend on these interfaces; the mongo implementations live in
// mongo.go and the in-memory test doubles in fake.go.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// PostFilter selects the posts a listing operation matches.
type PostFilter struct {
	OwnerID    *primitive.ObjectID // restrict to a single owner
	PublicOnly bool                // exclude isPrivate posts
	Search     string              // exact tag match or caption substring
}

// PostUpdate is a partial update; nil fields keep their stored value.
type PostUpdate struct {
	Caption   *string
	Tags      []string
	IsPrivate *bool
}

// UserUpdate is a partial update; nil fields keep their stored value.
type UserUpdate struct {
	Username      *string
	Bio           *string
	IsPrivate     *bool
	Avatar        *string
	AvatarMediaID *string
}

type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// List returns one page sorted by createdAt descending plus the total
	// number of matching documents.
	List(ctx context.Context, f PostFilter, skip, limit int64) ([]models.Post, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, u PostUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Like and comment mutations use atomic field-level operators so
	// concurrent engagement from different users never loses updates.
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, u UserUpdate) error
	IncPostCount(ctx context.Context, id primitive.ObjectID, delta int64) error
}
