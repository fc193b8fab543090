package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pixshare/handlers"
	"pixshare/middleware"
)

type Deps struct {
	Auth           *handlers.AuthHandler
	Posts          *handlers.PostHandler
	Users          *handlers.UserHandler
	JWTSecret      string
	AllowedOrigins []string
	Log            zerolog.Logger
}

func Setup(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(d.Log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health checks for the hosting platform.
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "pixshare"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	limiter := middleware.NewIPRateLimiter(60, time.Minute)
	requireAuth := middleware.RequireAuth(d.JWTSecret)
	optionalAuth := middleware.OptionalAuth(d.JWTSecret)

	auth := router.Group("/auth")
	auth.Use(middleware.RateLimit(limiter))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)

	posts := router.Group("/posts")
	posts.GET("/explore", d.Posts.Explore)
	posts.GET("/search", d.Posts.Search)
	posts.GET("/user/:userId", optionalAuth, d.Posts.UserPosts)
	posts.GET("/:id", optionalAuth, d.Posts.Get)

	authedPosts := router.Group("/posts")
	authedPosts.Use(requireAuth, middleware.RateLimit(limiter))
	authedPosts.POST("", d.Posts.Create)
	authedPosts.PUT("/:id", d.Posts.Update)
	authedPosts.DELETE("/:id", d.Posts.Delete)
	authedPosts.POST("/:id/like", d.Posts.ToggleLike)
	authedPosts.POST("/:id/comment", d.Posts.AddComment)
	authedPosts.DELETE("/:id/comment/:commentId", d.Posts.RemoveComment)

	users := router.Group("/users")
	users.GET("/:id", d.Users.Get)

	authedUsers := router.Group("/users")
	authedUsers.Use(requireAuth, middleware.RateLimit(limiter))
	authedUsers.PUT("/:id", d.Users.Update)
	authedUsers.POST("/:id/avatar", d.Users.UploadAvatar)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "endpoint not found",
		})
	})

	return router
}
