package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/models"
)

// FakePosts is an in-memory PostStore for tests. Mutations hold a single
// lock, mirroring the atomicity the mongo operators provide per document.
type FakePosts struct {
	mu    sync.Mutex
	posts []models.Post
}

func NewFakePosts() *FakePosts {
	return &FakePosts{}
}

func (s *FakePosts) Insert(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.posts = append(s.posts, *p)
	return nil
}

func (s *FakePosts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	p := clonePost(s.posts[i])
	return &p, nil
}

func matches(p models.Post, f PostFilter) bool {
	if f.OwnerID != nil && (p.UserID == nil || *p.UserID != *f.OwnerID) {
		return false
	}
	if f.PublicOnly && p.IsPrivate {
		return false
	}
	if f.Search != "" {
		tagHit := false
		for _, t := range p.Tags {
			if t == f.Search {
				tagHit = true
				break
			}
		}
		captionHit := strings.Contains(strings.ToLower(p.Caption), strings.ToLower(f.Search))
		if !tagHit && !captionHit {
			return false
		}
	}
	return true
}

func (s *FakePosts) List(_ context.Context, f PostFilter, skip, limit int64) ([]models.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []models.Post{}
	for _, p := range s.posts {
		if matches(p, f) {
			matched = append(matched, clonePost(p))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if skip >= total {
		return []models.Post{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (s *FakePosts) Update(_ context.Context, id primitive.ObjectID, u PostUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	if u.Caption != nil {
		s.posts[i].Caption = *u.Caption
	}
	if u.Tags != nil {
		s.posts[i].Tags = u.Tags
	}
	if u.IsPrivate != nil {
		s.posts[i].IsPrivate = *u.IsPrivate
	}
	return nil
}

func (s *FakePosts) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return nil
}

func (s *FakePosts) AddLike(_ context.Context, postID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(postID)
	if i < 0 {
		return ErrNotFound
	}
	for _, id := range s.posts[i].Likes {
		if id == userID {
			return nil
		}
	}
	s.posts[i].Likes = append(s.posts[i].Likes, userID)
	return nil
}

func (s *FakePosts) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(postID)
	if i < 0 {
		return ErrNotFound
	}
	likes := s.posts[i].Likes[:0]
	for _, id := range s.posts[i].Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	s.posts[i].Likes = likes
	return nil
}

func (s *FakePosts) AddComment(_ context.Context, postID primitive.ObjectID, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(postID)
	if i < 0 {
		return ErrNotFound
	}
	s.posts[i].Comments = append(s.posts[i].Comments, c)
	return nil
}

func (s *FakePosts) RemoveComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(postID)
	if i < 0 {
		return ErrNotFound
	}
	for j, c := range s.posts[i].Comments {
		if c.ID == commentID {
			s.posts[i].Comments = append(s.posts[i].Comments[:j], s.posts[i].Comments[j+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *FakePosts) index(id primitive.ObjectID) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePost(p models.Post) models.Post {
	p.Tags = append([]string(nil), p.Tags...)
	p.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	p.Comments = append([]models.Comment(nil), p.Comments...)
	return p
}

// FakeUsers is an in-memory UserStore for tests.
type FakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewFakeUsers() *FakeUsers {
	return &FakeUsers{users: make(map[primitive.ObjectID]models.User)}
}

func (s *FakeUsers) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *FakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *FakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FakeUsers) GetMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

func (s *FakeUsers) Update(_ context.Context, id primitive.ObjectID, upd UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Username != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Username == *upd.Username {
				return ErrDuplicate
			}
		}
		u.Username = *upd.Username
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.IsPrivate != nil {
		u.IsPrivate = *upd.IsPrivate
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.AvatarMediaID != nil {
		u.AvatarMediaID = *upd.AvatarMediaID
	}
	s.users[id] = u
	return nil
}

func (s *FakeUsers) IncPostCount(_ context.Context, id primitive.ObjectID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.TotalPosts += delta
	s.users[id] = u
	return nil
}
