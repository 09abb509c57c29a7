package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/internal/auth"
	"github.com/uniarchive/photoarchive/internal/storage"
	"github.com/uniarchive/photoarchive/models"
)

// Service is the mutation gate over the catalog: every write validates, then
// authorizes, then persists, in that order.
type Service struct {
	repo  *Repo
	store storage.Store
	log   *slog.Logger
}

func NewService(repo *Repo, store storage.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, store: store, log: log}
}

// CreateImageInput carries the metadata of a new image. ImagePath,
// ThumbnailPath and FileSize arrive already computed by the processing and
// storage collaborators.
type CreateImageInput struct {
	Title         string
	Description   *string
	ImagePath     string
	ThumbnailPath *string
	CategoryID    *uint
	Year          *int
	Location      *string
	Department    *string
	Source        *string
	Keywords      *string
	FileSize      int64
}

func (s *Service) CreateImage(ctx context.Context, ident auth.Identity, in CreateImageInput) (*models.Image, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("Image title is required.")
	}
	if strings.TrimSpace(in.ImagePath) == "" {
		return nil, apperr.Validation("Image path is required.")
	}
	if err := auth.CanCreateImage(ident); err != nil {
		return nil, err
	}

	uploaderID := ident.User.ID
	img := &models.Image{
		Title:         in.Title,
		Description:   in.Description,
		ImagePath:     in.ImagePath,
		ThumbnailPath: in.ThumbnailPath,
		CategoryID:    in.CategoryID,
		Year:          in.Year,
		Location:      in.Location,
		Department:    in.Department,
		Source:        in.Source,
		Keywords:      in.Keywords,
		UploadedBy:    &uploaderID,
		FileSize:      in.FileSize,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Service) UpdateImage(ctx context.Context, ident auth.Identity, id uint, patch ImagePatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanModifyImage(ident, &row.Image); err != nil {
		return err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	if !updated {
		// Row vanished between the lookup and the update.
		return apperr.NotFound("Image not found.")
	}
	return nil
}

// DeleteResult reports the two phases of an image deletion separately. The
// operation is successful once RecordDeleted is true; AssetCleanup carries
// any file-removal failure for observation, never for propagation.
type DeleteResult struct {
	RecordDeleted bool
	AssetCleanup  error
}

// DeleteImage removes the catalog record, then makes a best-effort attempt at
// removing the two backing files. Cleanup failures are logged and reported in
// the result but do not change the outcome.
func (s *Service) DeleteImage(ctx context.Context, ident auth.Identity, id uint) (DeleteResult, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if err := auth.CanModifyImage(ident, &row.Image); err != nil {
		return DeleteResult{}, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if !deleted {
		return DeleteResult{}, apperr.NotFound("Image not found.")
	}

	res := DeleteResult{RecordDeleted: true}
	var cleanup []error
	if err := s.store.Remove(ctx, row.ImagePath); err != nil {
		cleanup = append(cleanup, err)
	}
	if row.ThumbnailPath != nil {
		if err := s.store.Remove(ctx, *row.ThumbnailPath); err != nil {
			cleanup = append(cleanup, err)
		}
	}
	if len(cleanup) > 0 {
		res.AssetCleanup = errors.Join(cleanup...)
		s.log.Warn("image asset cleanup failed",
			"image_id", id,
			"error", res.AssetCleanup,
		)
	}
	return res, nil
}
