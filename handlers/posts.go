package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/engagement"
	"pixshare/feed"
	"pixshare/middleware"
	"pixshare/postsvc"
)

type PostHandler struct {
	Feed       *feed.Service
	Engagement *engagement.Service
	Posts      *postsvc.Service
	Log        zerolog.Logger
}

func (h *PostHandler) requestCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

// Explore serves the global public feed.
func (h *PostHandler) Explore(c *gin.Context) {
	page, limit := pagination(c)

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.Feed.List(ctx, nil, feed.Global(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Search serves public posts matching a tag or caption query.
func (h *PostHandler) Search(c *gin.Context) {
	page, limit := pagination(c)

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.Feed.Search(ctx, c.Query("query"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UserPosts serves one user's posts; the owner also sees private ones.
func (h *PostHandler) UserPosts(c *gin.Context) {
	userID, ok := parseObjectID(c, "userId")
	if !ok {
		return
	}
	page, limit := pagination(c)

	var viewer *primitive.ObjectID
	if id, ok := middleware.CurrentUserID(c); ok {
		viewer = &id
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.Feed.List(ctx, viewer, feed.ByUser(userID), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var viewer *primitive.ObjectID
	if id, ok := middleware.CurrentUserID(c); ok {
		viewer = &id
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	post, err := h.Posts.Get(ctx, postID, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create accepts a multipart form: image (required), caption, tags (comma
// separated), isPrivate, anonymous, displayName.
func (h *PostHandler) Create(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		invalidInput(c, "please upload an image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		invalidInput(c, "failed to read uploaded image")
		return
	}
	defer file.Close()

	in := postsvc.CreateInput{
		Caption:     c.PostForm("caption"),
		Tags:        c.PostForm("tags"),
		IsPrivate:   c.PostForm("isPrivate") == "true",
		File:        file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if c.PostForm("anonymous") == "true" {
		in.DisplayName = c.PostForm("displayName")
	} else {
		in.Owner = &userID
	}

	// Media upload can be slow; give it more room than document operations.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	post, err := h.Posts.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "post created successfully",
		"post":    post,
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	postID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	var in postsvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidInput(c, err.Error())
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	post, err := h.Posts.Update(ctx, postID, userID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "post updated successfully",
		"post":    post,
	})
}

func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	// Room for the best-effort media delete ahead of the document delete.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := h.Posts.Delete(ctx, postID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted successfully"})
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.Engagement.ToggleLike(ctx, postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (h *PostHandler) AddComment(c *gin.Context) {
	postID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err.Error())
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	comment, err := h.Engagement.AddComment(ctx, postID, userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

func (h *PostHandler) RemoveComment(c *gin.Context) {
	postID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseObjectID(c, "commentId")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	if err := h.Engagement.RemoveComment(ctx, postID, commentID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}
