package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pixshare/apperr"
	"pixshare/media"
	"pixshare/middleware"
	"pixshare/store"
)

const avatarFolder = "pixshare/avatars"

type UserHandler struct {
	Users store.UserStore
	Media media.Store
	Log   zerolog.Logger
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "database error", err))
		return
	}

	// The User json tags already withhold credential fields.
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Username  *string `json:"username"`
	Bio       *string `json:"bio"`
	IsPrivate *bool   `json:"isPrivate"`
}

func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	requester, _ := middleware.CurrentUserID(c)
	if requester != userID {
		respondError(c, apperr.New(apperr.Forbidden, "not authorized to update this profile"))
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err.Error())
		return
	}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if len(trimmed) < 3 {
			invalidInput(c, "username must be at least 3 characters")
			return
		}
		req.Username = &trimmed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	upd := store.UserUpdate{Username: req.Username, Bio: req.Bio, IsPrivate: req.IsPrivate}
	if err := h.Users.Update(ctx, userID, upd); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   string(apperr.InvalidInput),
				"message": "username is already taken",
			})
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, apperr.New(apperr.NotFound, "user not found"))
			return
		}
		respondError(c, apperr.Wrap(apperr.Upstream, "failed to update user", err))
		return
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "database error", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "user updated successfully",
		"user":    user,
	})
}

// UploadAvatar replaces the requester's avatar; the previous media object is
// deleted best-effort.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	requester, _ := middleware.CurrentUserID(c)
	if requester != userID {
		respondError(c, apperr.New(apperr.Forbidden, "not authorized to update this profile"))
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		invalidInput(c, "please upload an image")
		return
	}
	if !media.ValidImageType(fileHeader.Header.Get("Content-Type")) {
		invalidInput(c, "images only (jpeg, jpg, png, gif, webp)")
		return
	}
	if fileHeader.Size > media.MaxUploadBytes {
		invalidInput(c, "image exceeds the 5MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		invalidInput(c, "failed to read uploaded image")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "database error", err))
		return
	}

	up, err := h.Media.Upload(ctx, file, avatarFolder)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "failed to store image", err))
		return
	}

	if user.AvatarMediaID != "" {
		if err := h.Media.Delete(ctx, user.AvatarMediaID); err != nil {
			h.Log.Warn().Str("mediaId", user.AvatarMediaID).Err(err).Msg("old avatar delete failed")
		}
	}

	upd := store.UserUpdate{Avatar: &up.URL, AvatarMediaID: &up.ID}
	if err := h.Users.Update(ctx, userID, upd); err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "failed to update user", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": up.URL})
}
