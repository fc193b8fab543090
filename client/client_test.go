package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "login successful",
			"token":   "tok-123",
			"userId":  "user-1",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Login(context.Background(), "alice", "secret1"))
	assert.Equal(t, "user-1", c.UserID())
}

func TestBearerAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(LikeResult{Liked: true, Likes: 1})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetAuth("tok-123", "user-1")
	_, err := c.ToggleLike(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestCookieAuth(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("authToken"); err == nil {
			gotCookie = ck.Value
		}
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(LikeResult{Liked: true, Likes: 1})
	}))
	defer srv.Close()

	c := New(srv.URL, WithCookieAuth())
	c.SetAuth("tok-123", "user-1")
	_, err := c.ToggleLike(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", gotCookie)
}

func TestErrorEnvelopeDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "forbidden",
			"message": "you do not own this post",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.DeletePost(context.Background(), "p1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "forbidden", apiErr.Kind)
	assert.Equal(t, "you do not own this post", apiErr.Message)
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Explore(context.Background(), 1, 12)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Kind)
}

func TestExploreParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/explore", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(FeedPage{
			Posts:       []Post{{ID: "p1", Caption: "sunset"}},
			TotalPages:  4,
			CurrentPage: 2,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.Explore(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.TotalPages)
	assert.EqualValues(t, 2, page.CurrentPage)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "sunset", page.Posts[0].Caption)
}

func TestCreatePostSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "beach day", r.FormValue("caption"))
		assert.Equal(t, "beach,surf", r.FormValue("tags"))
		assert.Equal(t, "true", r.FormValue("isPrivate"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "pic.jpg", header.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "post created",
			"post":    Post{ID: "p1", Caption: "beach day"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetAuth("tok", "user-1")
	post, err := c.CreatePost(context.Background(),
		strings.NewReader("not-really-a-jpeg"), "pic.jpg", "beach day", "beach,surf", true)
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
}

func TestAddCommentUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"comment": Comment{ID: "c1", Text: "nice"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetAuth("tok", "user-1")
	comment, err := c.AddComment(context.Background(), "p1", "nice")
	require.NoError(t, err)
	assert.Equal(t, "c1", comment.ID)
	assert.Equal(t, "nice", comment.Text)
}
