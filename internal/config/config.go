// Package config loads service configuration from the environment.
// main loads .env via godotenv before calling FromEnv; nothing here touches
// the filesystem.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// BackendLocal stores uploads on the local disk under UploadDir.
	BackendLocal = "local"
	// BackendS3 stores uploads in an S3-compatible bucket (R2 included).
	BackendS3 = "s3"
)

type Config struct {
	Addr          string
	DatabaseDSN   string
	JWTSecret     string
	TokenTTL      time.Duration
	UploadDir     string
	PublicBaseURL string

	MaxUploadBytes int64

	StorageBackend    string
	S3Bucket          string
	S3AccountID       string
	S3AccessKeyID     string
	S3AccessKeySecret string
}

func FromEnv() (Config, error) {
	cfg := Config{
		Addr:           envOr("ADDR", ":5000"),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       envDuration("TOKEN_TTL", 7*24*time.Hour),
		UploadDir:      envOr("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 3<<20),

		StorageBackend:    envOr("STORAGE_BACKEND", BackendLocal),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3AccountID:       os.Getenv("S3_ACCOUNT_ID"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3AccessKeySecret: os.Getenv("S3_ACCESS_KEY_SECRET"),
	}

	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("config: DATABASE_DSN must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET must be set")
	}
	switch cfg.StorageBackend {
	case BackendLocal:
	case BackendS3:
		if cfg.S3Bucket == "" {
			return Config{}, fmt.Errorf("config: S3_BUCKET must be set for the s3 backend")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
