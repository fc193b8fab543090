package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the server reads from the environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	CloudinaryURL string
	GinMode       string
}

// Load reads .env (if present) and the process environment.
// JWT_SECRET and MONGODB_URI are mandatory; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDB:       getenv("MONGO_DB", "pixshare"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		GinMode:       os.Getenv("GIN_MODE"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI must be set")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
