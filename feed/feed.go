// Package feed computes paginated, visibility-scoped post listings.
package feed

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/apperr"
	"pixshare/models"
	"pixshare/store"
)

// DefaultPageSize applies when the caller does not supply a limit.
const DefaultPageSize = 12

// Scope restricts which posts a listing matches.
type Scope struct {
	userID *primitive.ObjectID
}

// Global matches all public posts.
func Global() Scope { return Scope{} }

// ByUser matches posts owned by userID; private ones are included only when
// the viewer is that user.
func ByUser(userID primitive.ObjectID) Scope { return Scope{userID: &userID} }

// Page is one slice of a feed. Offset pagination is consistent only under a
// static snapshot; inserts between fetches shift offsets, which is a known
// limitation rather than something this service hides.
type Page struct {
	Posts       []models.Post `json:"posts"`
	TotalPages  int64         `json:"totalPages"`
	CurrentPage int64         `json:"currentPage"`
}

type Service struct {
	posts store.PostStore
	users store.UserStore
}

func NewService(posts store.PostStore, users store.UserStore) *Service {
	return &Service{posts: posts, users: users}
}

// List returns one page of the feed identified by scope, newest first.
// viewer is nil for anonymous requests.
func (s *Service) List(ctx context.Context, viewer *primitive.ObjectID, scope Scope, page, pageSize int64) (*Page, error) {
	filter := store.PostFilter{PublicOnly: true}
	if scope.userID != nil {
		filter.OwnerID = scope.userID
		if viewer != nil && *viewer == *scope.userID {
			filter.PublicOnly = false
		}
	}
	return s.list(ctx, filter, page, pageSize)
}

// Search returns public posts matching an exact tag or a caption substring.
func (s *Service) Search(ctx context.Context, query string, page, pageSize int64) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.New(apperr.InvalidInput, "search query is required")
	}
	return s.list(ctx, store.PostFilter{PublicOnly: true, Search: query}, page, pageSize)
}

func (s *Service) list(ctx context.Context, filter store.PostFilter, page, pageSize int64) (*Page, error) {
	if page < 1 {
		return nil, apperr.New(apperr.InvalidInput, "page must be a positive integer")
	}
	if pageSize < 1 {
		return nil, apperr.New(apperr.InvalidInput, "limit must be a positive integer")
	}

	skip := (page - 1) * pageSize
	posts, total, err := s.posts.List(ctx, filter, skip, pageSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to fetch posts", err)
	}

	if err := s.attachOwners(ctx, posts); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to fetch post owners", err)
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &Page{Posts: posts, TotalPages: totalPages, CurrentPage: page}, nil
}

// attachOwners fills the owner projection on each post. Anonymous posts and
// posts whose owner document is gone keep a nil User; their stored display
// name is all the feed can show.
func (s *Service) attachOwners(ctx context.Context, posts []models.Post) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for i := range posts {
		if posts[i].UserID != nil && !seen[*posts[i].UserID] {
			seen[*posts[i].UserID] = true
			ids = append(ids, *posts[i].UserID)
		}
	}

	owners, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("load owners: %w", err)
	}

	for i := range posts {
		if posts[i].UserID == nil {
			continue
		}
		if u, ok := owners[*posts[i].UserID]; ok {
			posts[i].User = u.Public()
		}
	}
	return nil
}
