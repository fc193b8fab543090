package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"pixshare/apperr"
	"pixshare/middleware"
	"pixshare/models"
	"pixshare/store"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	Users  store.UserStore
	Secret string
	Log    zerolog.Logger
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "failed to create user", err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   string(apperr.InvalidInput),
				"message": "username is already taken",
			})
			return
		}
		respondError(c, apperr.Wrap(apperr.Upstream, "failed to create user", err))
		return
	}

	token, err := h.issueToken(user.ID.Hex())
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "failed to generate token", err))
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "user created successfully",
		"token":   token,
		"userId":  user.ID.Hex(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, apperr.New(apperr.Unauthenticated, "invalid username or password"))
		return
	}
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "database error", err))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, apperr.New(apperr.Unauthenticated, "invalid username or password"))
		return
	}

	token, err := h.issueToken(user.ID.Hex())
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Upstream, "failed to generate token", err))
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   token,
		"userId":  user.ID.Hex(),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) issueToken(userID string) (string, error) {
	claims := &middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.Secret))
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.AuthCookie, token, int(tokenTTL/time.Second), "/", "", false, true)
}
