package client

import (
	"context"
	"sync"
)

// Fetcher loads one page of a feed scope.
type Fetcher func(ctx context.Context, page, limit int64) (*FeedPage, error)

// LikeSender submits a like toggle and returns the authoritative result.
type LikeSender func(ctx context.Context, postID string) (*LikeResult, error)

// FeedView mirrors one feed scope as a locally ordered sequence. All state
// lives behind the mutex; readers get copies via Snapshot. Pages are
// appended as fetched, without de-duplication: duplicates across pages can
// appear when concurrent inserts shift offsets server-side, and the view
// does not defend against that.
type FeedView struct {
	mu          sync.Mutex
	fetch       Fetcher
	limit       int64
	posts       []Post
	currentPage int64
	totalPages  int64
	loading     bool
}

func NewFeedView(fetch Fetcher, limit int64) *FeedView {
	if limit <= 0 {
		limit = 12
	}
	return &FeedView{fetch: fetch, limit: limit}
}

// Refresh replaces the local sequence with page 1. On failure the previous
// contents are kept so the UI can keep showing them alongside the error.
func (v *FeedView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	v.mu.Unlock()

	page, err := v.fetch(ctx, 1, v.limit)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		return err
	}

	v.posts = normalize(page.Posts)
	v.currentPage = page.CurrentPage
	v.totalPages = page.TotalPages
	return nil
}

// LoadMore appends the next page to the end of the sequence, preserving
// order. It is a no-op when already on the last page, before the first
// Refresh, or while another load is in flight.
func (v *FeedView) LoadMore(ctx context.Context) error {
	v.mu.Lock()
	if v.loading || v.currentPage == 0 || v.currentPage >= v.totalPages {
		v.mu.Unlock()
		return nil
	}
	next := v.currentPage + 1
	v.loading = true
	v.mu.Unlock()

	page, err := v.fetch(ctx, next, v.limit)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		return err
	}

	v.posts = append(v.posts, normalize(page.Posts)...)
	v.currentPage = page.CurrentPage
	v.totalPages = page.TotalPages
	return nil
}

// Snapshot returns a copy of the mirrored sequence. The nested slices are
// copied too, so a snapshot never changes once returned, no matter what the
// view does afterwards.
func (v *FeedView) Snapshot() []Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Post, len(v.posts))
	for i := range v.posts {
		out[i] = clonePost(v.posts[i])
	}
	return out
}

func (v *FeedView) CurrentPage() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentPage
}

func (v *FeedView) TotalPages() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalPages
}

// ToggleLike runs the three-phase optimistic protocol: flip the local like
// membership immediately, send the toggle, then reconcile to the
// server-declared truth on success or revert to the pre-toggle state on
// error.
func (v *FeedView) ToggleLike(ctx context.Context, postID, userID string, send LikeSender) (*LikeResult, error) {
	v.mu.Lock()
	i := v.index(postID)
	if i < 0 {
		v.mu.Unlock()
		return send(ctx, postID)
	}

	prevLikes := append([]string(nil), v.posts[i].Likes...)
	prevCount := v.posts[i].LikeCount
	if v.posts[i].likedBy(userID) {
		v.removeLike(i, userID)
	} else {
		v.posts[i].Likes = append(v.posts[i].Likes, userID)
		v.posts[i].LikeCount++
	}
	v.mu.Unlock()

	res, err := send(ctx, postID)

	v.mu.Lock()
	defer v.mu.Unlock()
	i = v.index(postID)
	if i < 0 {
		// The post left the view while the request was in flight; nothing
		// left to reconcile.
		return res, err
	}

	if err != nil {
		v.posts[i].Likes = prevLikes
		v.posts[i].LikeCount = prevCount
		return nil, err
	}

	// Reconcile membership and count to the authoritative response.
	if res.Liked && !v.posts[i].likedBy(userID) {
		v.posts[i].Likes = append(v.posts[i].Likes, userID)
	} else if !res.Liked {
		v.removeLike(i, userID)
	}
	v.posts[i].LikeCount = res.Likes
	return res, nil
}

// AppendComment mirrors a server-confirmed comment onto the local post.
func (v *FeedView) AppendComment(postID string, c Comment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.index(postID); i >= 0 {
		v.posts[i].Comments = append(v.posts[i].Comments, c)
	}
}

// RemoveComment mirrors a server-confirmed comment deletion.
func (v *FeedView) RemoveComment(postID, commentID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.index(postID)
	if i < 0 {
		return
	}
	for j, c := range v.posts[i].Comments {
		if c.ID == commentID {
			v.posts[i].Comments = append(v.posts[i].Comments[:j], v.posts[i].Comments[j+1:]...)
			return
		}
	}
}

// Forget removes a post from the mirror. Call it only after the server has
// confirmed the deletion, never optimistically.
func (v *FeedView) Forget(postID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.posts {
		if v.posts[i].ID == postID {
			v.posts = append(v.posts[:i], v.posts[i+1:]...)
			return
		}
	}
}

func (v *FeedView) index(postID string) int {
	for i := range v.posts {
		if v.posts[i].ID == postID {
			return i
		}
	}
	return -1
}

func (v *FeedView) removeLike(i int, userID string) {
	likes := v.posts[i].Likes[:0]
	for _, id := range v.posts[i].Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	v.posts[i].Likes = likes
	if v.posts[i].LikeCount > 0 {
		v.posts[i].LikeCount--
	}
}

func clonePost(p Post) Post {
	p.Tags = append([]string(nil), p.Tags...)
	p.Likes = append([]string(nil), p.Likes...)
	p.Comments = append([]Comment(nil), p.Comments...)
	return p
}

func normalize(posts []Post) []Post {
	for i := range posts {
		posts[i].LikeCount = len(posts[i].Likes)
	}
	return posts
}
