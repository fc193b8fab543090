package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username      string             `bson:"username" json:"username"`
	PasswordHash  string             `bson:"passwordHash" json:"-"`
	Avatar        string             `bson:"avatar" json:"avatar"`
	AvatarMediaID string             `bson:"avatarMediaId,omitempty" json:"-"`
	Bio           string             `bson:"bio" json:"bio"`
	TotalPosts    int64              `bson:"totalPosts" json:"totalPosts"`
	IsPrivate     bool               `bson:"isPrivate" json:"isPrivate"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the projection embedded in posts and comments. It never
// carries credential or session fields.
type PublicUser struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
