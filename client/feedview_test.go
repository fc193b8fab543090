package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedFetcher serves a fixed set of pages and counts calls.
func pagedFetcher(pages map[int64]*FeedPage) (Fetcher, *int) {
	calls := 0
	return func(_ context.Context, page, _ int64) (*FeedPage, error) {
		calls++
		p, ok := pages[page]
		if !ok {
			return nil, fmt.Errorf("no page %d", page)
		}
		return p, nil
	}, &calls
}

func post(id string, likes ...string) Post {
	return Post{ID: id, Likes: likes}
}

func snapshotIDs(v *FeedView) []string {
	var out []string
	for _, p := range v.Snapshot() {
		out = append(out, p.ID)
	}
	return out
}

func TestRefreshReplacesSequence(t *testing.T) {
	fetch, _ := pagedFetcher(map[int64]*FeedPage{
		1: {Posts: []Post{post("a"), post("b")}, CurrentPage: 1, TotalPages: 2},
	})
	v := NewFeedView(fetch, 12)

	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{"a", "b"}, snapshotIDs(v))

	// A second refresh replaces rather than appends.
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{"a", "b"}, snapshotIDs(v))
	assert.EqualValues(t, 1, v.CurrentPage())
	assert.EqualValues(t, 2, v.TotalPages())
}

func TestLoadMoreAppendsWithoutDedup(t *testing.T) {
	// Page 2 repeats "b", as happens when inserts shift offsets; the view
	// accepts the duplicate.
	fetch, calls := pagedFetcher(map[int64]*FeedPage{
		1: {Posts: []Post{post("a"), post("b")}, CurrentPage: 1, TotalPages: 2},
		2: {Posts: []Post{post("b"), post("c")}, CurrentPage: 2, TotalPages: 2},
	})
	v := NewFeedView(fetch, 12)

	require.NoError(t, v.Refresh(context.Background()))
	require.NoError(t, v.LoadMore(context.Background()))

	assert.Equal(t, []string{"a", "b", "b", "c"}, snapshotIDs(v))

	// On the last page LoadMore is a no-op.
	require.NoError(t, v.LoadMore(context.Background()))
	assert.Equal(t, 2, *calls)
}

func TestLoadMoreBeforeRefreshIsNoop(t *testing.T) {
	fetch, calls := pagedFetcher(nil)
	v := NewFeedView(fetch, 12)

	require.NoError(t, v.LoadMore(context.Background()))
	assert.Zero(t, *calls)
}

func TestRefreshErrorKeepsOldContents(t *testing.T) {
	failing := false
	fetch := Fetcher(func(_ context.Context, page, _ int64) (*FeedPage, error) {
		if failing {
			return nil, errors.New("backend unavailable")
		}
		return &FeedPage{Posts: []Post{post("a")}, CurrentPage: 1, TotalPages: 1}, nil
	})
	v := NewFeedView(fetch, 12)

	require.NoError(t, v.Refresh(context.Background()))
	failing = true
	require.Error(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{"a"}, snapshotIDs(v))
}

func likeSender(res *LikeResult, err error) (LikeSender, *int) {
	calls := 0
	return func(context.Context, string) (*LikeResult, error) {
		calls++
		return res, err
	}, &calls
}

func seededView(t *testing.T, posts ...Post) *FeedView {
	t.Helper()
	fetch, _ := pagedFetcher(map[int64]*FeedPage{
		1: {Posts: posts, CurrentPage: 1, TotalPages: 1},
	})
	v := NewFeedView(fetch, 12)
	require.NoError(t, v.Refresh(context.Background()))
	return v
}

func TestToggleLikeReconcilesToServerTruth(t *testing.T) {
	v := seededView(t, post("p1", "someone-else"))

	// Server reports three likes total; the local mirror only knows two ids.
	send, _ := likeSender(&LikeResult{Liked: true, Likes: 3}, nil)
	res, err := v.ToggleLike(context.Background(), "p1", "me", send)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	got := v.Snapshot()[0]
	assert.Contains(t, got.Likes, "me")
	assert.Equal(t, 3, got.LikeCount)
}

func TestToggleLikeRevertsOnError(t *testing.T) {
	v := seededView(t, post("p1", "someone-else"))

	send, _ := likeSender(nil, errors.New("backend unavailable"))
	_, err := v.ToggleLike(context.Background(), "p1", "me", send)
	require.Error(t, err)

	got := v.Snapshot()[0]
	assert.Equal(t, []string{"someone-else"}, got.Likes)
	assert.Equal(t, 1, got.LikeCount)
}

func TestToggleLikeUnlike(t *testing.T) {
	v := seededView(t, post("p1", "me", "someone-else"))

	send, _ := likeSender(&LikeResult{Liked: false, Likes: 1}, nil)
	res, err := v.ToggleLike(context.Background(), "p1", "me", send)
	require.NoError(t, err)
	assert.False(t, res.Liked)

	got := v.Snapshot()[0]
	assert.NotContains(t, got.Likes, "me")
	assert.Equal(t, 1, got.LikeCount)
}

func TestForgetRemovesPost(t *testing.T) {
	v := seededView(t, post("p1"), post("p2"))

	v.Forget("p1")
	assert.Equal(t, []string{"p2"}, snapshotIDs(v))

	// Unknown ids are ignored.
	v.Forget("p1")
	assert.Equal(t, []string{"p2"}, snapshotIDs(v))
}

func TestCommentMirroring(t *testing.T) {
	v := seededView(t, post("p1"))

	v.AppendComment("p1", Comment{ID: "c1", Text: "hi"})
	v.AppendComment("p1", Comment{ID: "c2", Text: "again"})
	require.Len(t, v.Snapshot()[0].Comments, 2)

	v.RemoveComment("p1", "c1")
	got := v.Snapshot()[0].Comments
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)
}

func TestSnapshotIsACopy(t *testing.T) {
	p := post("p1", "me")
	p.Tags = []string{"beach"}
	p.Comments = []Comment{{ID: "c1", Text: "hi"}}
	v := seededView(t, p)

	snap := v.Snapshot()
	snap[0].ID = "mutated"
	snap[0].Likes[0] = "mutated"
	snap[0].Tags[0] = "mutated"
	snap[0].Comments[0].Text = "mutated"

	got := v.Snapshot()[0]
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, []string{"me"}, got.Likes)
	assert.Equal(t, []string{"beach"}, got.Tags)
	assert.Equal(t, "hi", got.Comments[0].Text)
}

func TestSnapshotUnaffectedByLaterToggle(t *testing.T) {
	v := seededView(t, post("p1", "me", "other"))
	snap := v.Snapshot()

	send, _ := likeSender(&LikeResult{Liked: false, Likes: 1}, nil)
	_, err := v.ToggleLike(context.Background(), "p1", "me", send)
	require.NoError(t, err)

	// The snapshot taken before the unlike keeps its like set.
	assert.Equal(t, []string{"me", "other"}, snap[0].Likes)
	assert.Equal(t, []string{"other"}, v.Snapshot()[0].Likes)
}

func TestSnapshotUnaffectedByLaterCommentRemoval(t *testing.T) {
	v := seededView(t, post("p1"))
	v.AppendComment("p1", Comment{ID: "c1", Text: "hi"})
	v.AppendComment("p1", Comment{ID: "c2", Text: "again"})
	snap := v.Snapshot()

	v.RemoveComment("p1", "c1")

	require.Len(t, snap[0].Comments, 2)
	assert.Equal(t, "c1", snap[0].Comments[0].ID)
	assert.Equal(t, "c2", snap[0].Comments[1].ID)
}
