// Package postsvc owns the post lifecycle: create with media upload, partial
// update, authorized fetch and delete.
package postsvc

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/apperr"
	"pixshare/media"
	"pixshare/models"
	"pixshare/store"
)

const postFolder = "pixshare/posts"

type Service struct {
	posts store.PostStore
	users store.UserStore
	media media.Store
	log   zerolog.Logger
}

func NewService(posts store.PostStore, users store.UserStore, m media.Store, log zerolog.Logger) *Service {
	return &Service{posts: posts, users: users, media: m, log: log}
}

type CreateInput struct {
	Owner       *primitive.ObjectID
	DisplayName string
	Caption     string
	Tags        string // raw comma-separated form value
	IsPrivate   bool
	File        io.Reader
	Size        int64
	ContentType string
}

// Create stores the image at the media CDN first and only then inserts the
// document; a post never exists without a resolved image URL. If the insert
// fails after the upload succeeded the media object is orphaned; that is
// logged, not repaired.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Post, error) {
	if in.File == nil {
		return nil, apperr.New(apperr.InvalidInput, "please upload an image")
	}
	if !media.ValidImageType(in.ContentType) {
		return nil, apperr.New(apperr.InvalidInput, "images only (jpeg, jpg, png, gif, webp)")
	}
	if in.Size > media.MaxUploadBytes {
		return nil, apperr.New(apperr.InvalidInput, "image exceeds the 5MB limit")
	}
	if in.Owner == nil && strings.TrimSpace(in.DisplayName) == "" {
		return nil, apperr.New(apperr.InvalidInput, "a display name is required for anonymous posts")
	}

	up, err := s.media.Upload(ctx, in.File, postFolder)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to store image", err)
	}

	now := time.Now().UTC()
	p := &models.Post{
		UserID:      in.Owner,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Caption:     strings.TrimSpace(in.Caption),
		ImageURL:    up.URL,
		MediaID:     up.ID,
		Tags:        NormalizeTags(strings.Split(in.Tags, ",")),
		Likes:       []primitive.ObjectID{},
		Comments:    []models.Comment{},
		IsPrivate:   in.IsPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.posts.Insert(ctx, p); err != nil {
		s.log.Warn().Str("mediaId", up.ID).Err(err).
			Msg("post insert failed after media upload, media object orphaned")
		return nil, apperr.Wrap(apperr.Upstream, "failed to create post", err)
	}

	if in.Owner != nil {
		if err := s.users.IncPostCount(ctx, *in.Owner, 1); err != nil {
			s.log.Warn().Str("userId", in.Owner.Hex()).Err(err).Msg("failed to bump post counter")
		}
	}

	s.attachOwner(ctx, p)
	return p, nil
}

// UpdateInput fields are independently optional; nil keeps the stored value.
type UpdateInput struct {
	Caption   *string  `json:"caption"`
	Tags      *TagList `json:"tags"`
	IsPrivate *bool    `json:"isPrivate"`
}

func (s *Service) Update(ctx context.Context, postID, requester primitive.ObjectID, in UpdateInput) (*models.Post, error) {
	p, err := s.authorize(ctx, postID, requester, "not authorized to update this post")
	if err != nil {
		return nil, err
	}

	upd := store.PostUpdate{Caption: in.Caption, IsPrivate: in.IsPrivate}
	if in.Tags != nil {
		upd.Tags = NormalizeTags(*in.Tags)
	}

	if err := s.posts.Update(ctx, p.ID, upd); err != nil {
		return nil, mapStoreErr(err)
	}

	p, err = s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.attachOwner(ctx, p)
	return p, nil
}

// Delete removes the media object first, best-effort: a failing CDN must not
// leave an undeletable post. The owner's counter decrement is best-effort too.
func (s *Service) Delete(ctx context.Context, postID, requester primitive.ObjectID) error {
	p, err := s.authorize(ctx, postID, requester, "not authorized to delete this post")
	if err != nil {
		return err
	}

	if p.MediaID != "" {
		if err := s.media.Delete(ctx, p.MediaID); err != nil {
			s.log.Warn().Str("mediaId", p.MediaID).Err(err).Msg("media delete failed, continuing with post delete")
		}
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return mapStoreErr(err)
	}

	if p.UserID != nil {
		if err := s.users.IncPostCount(ctx, *p.UserID, -1); err != nil {
			s.log.Warn().Str("userId", p.UserID.Hex()).Err(err).Msg("failed to decrement post counter")
		}
	}
	return nil
}

// Get returns a single post. Private posts are visible to their owner only.
func (s *Service) Get(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if p.IsPrivate && (viewer == nil || !p.OwnedBy(*viewer)) {
		return nil, apperr.New(apperr.Forbidden, "this post is private")
	}

	s.attachOwner(ctx, p)
	s.attachCommentAuthors(ctx, p)
	return p, nil
}

func (s *Service) authorize(ctx context.Context, postID, requester primitive.ObjectID, denyMsg string) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !p.OwnedBy(requester) {
		return nil, apperr.New(apperr.Forbidden, denyMsg)
	}
	return p, nil
}

func (s *Service) attachOwner(ctx context.Context, p *models.Post) {
	if p.UserID == nil {
		return
	}
	if u, err := s.users.GetByID(ctx, *p.UserID); err == nil {
		p.User = u.Public()
	}
}

func (s *Service) attachCommentAuthors(ctx context.Context, p *models.Post) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for i := range p.Comments {
		if !seen[p.Comments[i].UserID] {
			seen[p.Comments[i].UserID] = true
			ids = append(ids, p.Comments[i].UserID)
		}
	}
	if len(ids) == 0 {
		return
	}

	authors, err := s.users.GetMany(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load comment authors")
		return
	}
	for i := range p.Comments {
		if u, ok := authors[p.Comments[i].UserID]; ok {
			p.Comments[i].User = u.Public()
		}
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.NotFound, "post not found")
	}
	return apperr.Wrap(apperr.Upstream, "database error", err)
}
