package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/apperr"
)

// AuthCookie is the cookie the web client carries the token in; mobile
// clients send the same token as a bearer header.
const AuthCookie = "authToken"

const contextUserKey = "userId"

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func tokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie(AuthCookie); err == nil && tok != "" {
		return tok
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func parseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// RequireAuth rejects requests without a decodable identity: no token at all
// is 401, a present but invalid token is 403.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   string(apperr.Unauthenticated),
				"message": "authentication required",
			})
			return
		}

		claims, err := parseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   string(apperr.Unauthenticated),
				"message": "invalid token, access denied",
			})
			return
		}

		c.Set(contextUserKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through. A token that is present but invalid is still
// rejected rather than silently downgraded to anonymous.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := parseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   string(apperr.Unauthenticated),
				"message": "invalid token, access denied",
			})
			return
		}

		c.Set(contextUserKey, claims.UserID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated identity attached by RequireAuth
// or OptionalAuth, if any.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr := c.GetString(contextUserKey)
	if idStr == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
