package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pixshare/config"
	"pixshare/database"
	"pixshare/engagement"
	"pixshare/feed"
	"pixshare/handlers"
	"pixshare/media"
	"pixshare/postsvc"
	"pixshare/routes"
	"pixshare/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().Msg("connecting to MongoDB")
	var db *database.Mongo
	for attempt := 1; attempt <= 3; attempt++ {
		db, err = database.Connect(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err == nil {
			break
		}
		log.Warn().Int("attempt", attempt).Err(err).Msg("MongoDB connection failed")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Msg("MongoDB connected")

	var mediaStore media.Store
	if cfg.CloudinaryURL != "" {
		mediaStore, err = media.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid Cloudinary configuration")
		}
	} else {
		log.Warn().Msg("CLOUDINARY_URL not set, uploads will fail")
		mediaStore = &media.FakeStore{}
	}

	posts := store.NewMongoPosts(db.Posts)
	users := store.NewMongoUsers(db.Users)

	router := routes.Setup(routes.Deps{
		Auth: &handlers.AuthHandler{Users: users, Secret: cfg.JWTSecret, Log: log.Logger},
		Posts: &handlers.PostHandler{
			Feed:       feed.NewService(posts, users),
			Engagement: engagement.NewService(posts, users),
			Posts:      postsvc.NewService(posts, users, mediaStore, log.Logger),
			Log:        log.Logger,
		},
		Users:          &handlers.UserHandler{Users: users, Media: mediaStore, Log: log.Logger},
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: allowedOrigins(),
		Log:            log.Logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("MongoDB disconnect failed")
	}

	log.Info().Msg("server stopped")
}

func allowedOrigins() []string {
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
