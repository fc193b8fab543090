// Package client is the state layer an application embeds to talk to a
// pixshare server: a thin REST client plus FeedView, a reconciling mirror of
// one feed scope. Connectivity failure is a property of each individual
// request's outcome; there is no background health poll.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	User      *User     `json:"user,omitempty"`
}

type Post struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Caption     string    `json:"caption"`
	ImageURL    string    `json:"imageUrl"`
	Tags        []string  `json:"tags"`
	Likes       []string  `json:"likes"`
	Comments    []Comment `json:"comments"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `json:"createdAt"`
	User        *User     `json:"user,omitempty"`

	// LikeCount tracks the server-declared count, which can drift from
	// len(Likes) after an optimistic reconcile.
	LikeCount int `json:"-"`
}

func (p *Post) likedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

type FeedPage struct {
	Posts       []Post `json:"posts"`
	TotalPages  int64  `json:"totalPages"`
	CurrentPage int64  `json:"currentPage"`
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// APIError is a non-2xx response decoded into the server's error envelope.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Kind, e.Message)
}

type Client struct {
	baseURL   string
	http      *http.Client
	token     string
	userID    string
	useCookie bool
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCookieAuth sends the token as the authToken cookie instead of a
// bearer header, the way the web client does.
func WithCookieAuth() Option {
	return func(c *Client) { c.useCookie = true }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuth installs the token and identity used for authenticated calls.
func (c *Client) SetAuth(token, userID string) {
	c.token = token
	c.userID = userID
}

// UserID returns the authenticated identity, empty when anonymous.
func (c *Client) UserID() string { return c.userID }

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		if c.useCookie {
			req.AddCookie(&http.Cookie{Name: "authToken", Value: c.token})
		} else {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var envelope struct {
			Kind    string `json:"error"`
			Message string `json:"message"`
		}
		if json.NewDecoder(res.Body).Decode(&envelope) == nil {
			apiErr.Kind = envelope.Kind
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	var res authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register",
		map[string]string{"username": username, "password": password}, &res)
	if err != nil {
		return err
	}
	c.SetAuth(res.Token, res.UserID)
	return nil
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	var res authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login",
		map[string]string{"username": username, "password": password}, &res)
	if err != nil {
		return err
	}
	c.SetAuth(res.Token, res.UserID)
	return nil
}

func (c *Client) Explore(ctx context.Context, page, limit int64) (*FeedPage, error) {
	var res FeedPage
	path := fmt.Sprintf("/posts/explore?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UserPosts(ctx context.Context, userID string, page, limit int64) (*FeedPage, error) {
	var res FeedPage
	path := fmt.Sprintf("/posts/user/%s?page=%d&limit=%d", userID, page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	var res Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+postID, nil, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreatePost uploads an image with its metadata as a multipart form.
func (c *Client) CreatePost(ctx context.Context, image io.Reader, filename, caption, tags string, isPrivate bool) (*Post, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	_ = form.WriteField("caption", caption)
	_ = form.WriteField("tags", tags)
	if isPrivate {
		_ = form.WriteField("isPrivate", "true")
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	var res struct {
		Post Post `json:"post"`
	}
	if err := c.do(ctx, http.MethodPost, "/posts", &buf, form.FormDataContentType(), &res); err != nil {
		return nil, err
	}
	return &res.Post, nil
}

type PostUpdate struct {
	Caption   *string   `json:"caption,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	IsPrivate *bool     `json:"isPrivate,omitempty"`
}

func (c *Client) UpdatePost(ctx context.Context, postID string, upd PostUpdate) (*Post, error) {
	var res struct {
		Post Post `json:"post"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/posts/"+postID, upd, &res); err != nil {
		return nil, err
	}
	return &res.Post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/posts/"+postID, nil, nil)
}

func (c *Client) ToggleLike(ctx context.Context, postID string) (*LikeResult, error) {
	var res LikeResult
	if err := c.doJSON(ctx, http.MethodPost, "/posts/"+postID+"/like", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AddComment(ctx context.Context, postID, text string) (*Comment, error) {
	var res struct {
		Comment Comment `json:"comment"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/posts/"+postID+"/comment",
		map[string]string{"text": text}, &res)
	if err != nil {
		return nil, err
	}
	return &res.Comment, nil
}

func (c *Client) RemoveComment(ctx context.Context, postID, commentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/posts/"+postID+"/comment/"+commentID, nil, nil)
}
