// Package engagement mutates a post's like set and comment list.
package engagement

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/apperr"
	"pixshare/models"
	"pixshare/store"
)

type Service struct {
	posts store.PostStore
	users store.UserStore
}

func NewService(posts store.PostStore, users store.UserStore) *Service {
	return &Service{posts: posts, users: users}
}

// LikeResult reports the authoritative like state after a toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// ToggleLike adds userID to the post's like set if absent and removes it if
// present. The membership check and the set mutation are separate store
// calls; the mutation itself is an atomic set-add/set-remove, so concurrent
// toggles from different users cannot lose each other's updates. Two
// concurrent toggles from the same user remain racy, but the document stays
// well-formed either way.
func (s *Service) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*LikeResult, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, mapStoreErr(err, "post not found")
	}

	if p.LikedBy(userID) {
		err = s.posts.RemoveLike(ctx, postID, userID)
	} else {
		err = s.posts.AddLike(ctx, postID, userID)
	}
	if err != nil {
		return nil, mapStoreErr(err, "post not found")
	}

	// Re-read so the response reflects the like set as stored, not a local
	// guess that concurrent engagement could have invalidated.
	p, err = s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, mapStoreErr(err, "post not found")
	}

	return &LikeResult{Liked: p.LikedBy(userID), Likes: len(p.Likes)}, nil
}

// AddComment appends a comment with a server-assigned id and timestamp and
// returns it with the author's public projection attached.
func (s *Service) AddComment(ctx context.Context, postID, userID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.New(apperr.InvalidInput, "comment text is required")
	}

	c := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.posts.AddComment(ctx, postID, c); err != nil {
		return nil, mapStoreErr(err, "post not found")
	}

	if author, err := s.users.GetByID(ctx, userID); err == nil {
		c.User = author.Public()
	}

	return &c, nil
}

// RemoveComment deletes a comment. Only the comment's author or the post's
// owner may do so.
func (s *Service) RemoveComment(ctx context.Context, postID, commentID, requester primitive.ObjectID) error {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return mapStoreErr(err, "post not found")
	}

	c := p.CommentByID(commentID)
	if c == nil {
		return apperr.New(apperr.NotFound, "comment not found")
	}

	if c.UserID != requester && !p.OwnedBy(requester) {
		return apperr.New(apperr.Forbidden, "not authorized to delete this comment")
	}

	if err := s.posts.RemoveComment(ctx, postID, commentID); err != nil {
		return mapStoreErr(err, "comment not found")
	}
	return nil
}

func mapStoreErr(err error, notFoundMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.NotFound, notFoundMsg)
	}
	return apperr.Wrap(apperr.Upstream, "database error", err)
}
