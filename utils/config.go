package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port           string
	MongoURI       string
	MongoDBName    string
	JWTSecret      []byte
	TokenTTL       time.Duration
	RedisAddr      string
	RedisPassword  string
	EmailProvider  string
	PostmarkToken  string
	SendgridKey    string
	EmailSender    string
	UploadDir      string
	RequestTimeout time.Duration
}

// LoadConfig reads a .env file when present and then the process
// environment. JWT_SECRET has no default.
func LoadConfig(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, proceeding with environment variables")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8000"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "ecommerce"),
		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		EmailProvider: os.Getenv("EMAIL_PROVIDER"),
		PostmarkToken: os.Getenv("POSTMARK_API_TOKEN"),
		SendgridKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailSender:   os.Getenv("EMAIL_SENDER"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWT_SECRET is not set")
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
