package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/uniarchive/photoarchive/internal/accounts"
	"github.com/uniarchive/photoarchive/internal/auth"
	"github.com/uniarchive/photoarchive/internal/catalog"
	"github.com/uniarchive/photoarchive/internal/config"
	"github.com/uniarchive/photoarchive/internal/handlers"
	"github.com/uniarchive/photoarchive/internal/processing"
	"github.com/uniarchive/photoarchive/internal/storage"
	"github.com/uniarchive/photoarchive/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Image{}); err != nil {
		slog.Error("failed to migrate models", "error", err)
		os.Exit(1)
	}

	store, uploadDir, err := buildStore(cfg)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	repo := catalog.NewRepo(db)

	router := handlers.NewRouter(handlers.Deps{
		Verifier:       auth.NewVerifier(tokens, db),
		Accounts:       accounts.NewService(db, tokens),
		Repo:           repo,
		Catalog:        catalog.NewService(repo, store, logger),
		Store:          store,
		Processor:      processing.NewProcessor(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		UploadDir:      uploadDir,
	})

	slog.Info("starting API server", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildStore picks the blob backend. The local backend also exposes its
// directory for static serving; the s3 backend serves from the bucket's
// public URL instead.
func buildStore(cfg config.Config) (storage.Store, string, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3AccessKeySecret, ""),
			),
			awsconfig.WithRegion("auto"),
		)
		if err != nil {
			return nil, "", err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3AccountID != "" {
				o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.S3AccountID))
			}
		})
		return storage.NewS3(client, cfg.S3Bucket, cfg.PublicBaseURL), "", nil
	default:
		local, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			return nil, "", err
		}
		return local, cfg.UploadDir, nil
	}
}
