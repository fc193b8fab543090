package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an embedded subdocument; its ID is assigned by the server at
// creation time and never changes. User is populated for responses only.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	User      *PublicUser        `bson:"-" json:"user,omitempty"`
}

// Post is the document of record. UserID is nil for anonymous posts, which
// carry DisplayName instead. Likes holds at most one entry per user.
type Post struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      *primitive.ObjectID  `bson:"userId,omitempty" json:"userId,omitempty"`
	DisplayName string               `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Caption     string               `bson:"caption" json:"caption"`
	ImageURL    string               `bson:"imageUrl" json:"imageUrl"`
	MediaID     string               `bson:"mediaId" json:"-"`
	Tags        []string             `bson:"tags" json:"tags"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments    []Comment            `bson:"comments" json:"comments"`
	IsPrivate   bool                 `bson:"isPrivate" json:"isPrivate"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
	User        *PublicUser          `bson:"-" json:"user,omitempty"` // Populated in response only
}

// OwnedBy reports whether userID owns the post. Anonymous posts have no owner.
func (p *Post) OwnedBy(userID primitive.ObjectID) bool {
	return p.UserID != nil && *p.UserID == userID
}

// LikedBy reports whether userID is in the like set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CommentByID returns the comment with the given id, or nil.
func (p *Post) CommentByID(commentID primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
