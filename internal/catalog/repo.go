package catalog

import (
	"context"
	"errors"

	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/models"
	"gorm.io/gorm"
)

// ImageRow is an image joined with its category and uploader names, the only
// shape read endpoints ever return.
type ImageRow struct {
	models.Image
	CategoryName *string `json:"category_name"`
	UploaderName *string `json:"uploader_name"`
}

// Repo is the data access layer over the images, categories and users tables.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// filterScope translates ListParams into a WHERE clause. The page query and
// the count query both go through here, so the two can never disagree on the
// predicate.
func filterScope(p ListParams) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if p.Query != "" {
			tx = textSearch(tx, p.Query)
		}
		if p.CategoryID != nil {
			tx = tx.Where("images.category_id = ?", *p.CategoryID)
		}
		if p.Year != nil {
			tx = tx.Where("images.year = ?", *p.Year)
		}
		if p.Department != "" {
			tx = contains(tx, "images.department", p.Department)
		}
		if p.Location != "" {
			tx = contains(tx, "images.location", p.Location)
		}
		return tx
	}
}

// textSearch matches q against the combined text surface of an image. On
// Postgres this is a natural-language full-text match; other dialects fall
// back to LIKE across the same columns. Ordering stays recency-based either
// way.
func textSearch(tx *gorm.DB, q string) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Where(
			`to_tsvector('english', concat_ws(' ',
				images.title, images.description, images.keywords,
				images.location, images.department)) @@ plainto_tsquery('english', ?)`,
			q,
		)
	}
	pat := "%" + q + "%"
	return tx.Where(
		`images.title LIKE ? OR images.description LIKE ? OR images.keywords LIKE ?
			OR images.location LIKE ? OR images.department LIKE ?`,
		pat, pat, pat, pat, pat,
	)
}

// contains is a case-insensitive substring match on a fixed column name.
func contains(tx *gorm.DB, column, value string) *gorm.DB {
	pat := "%" + value + "%"
	if tx.Dialector.Name() == "postgres" {
		return tx.Where(column+" ILIKE ?", pat)
	}
	return tx.Where(column+" LIKE ?", pat)
}

func (r *Repo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Image{}).
		Select("images.*, categories.name AS category_name, users.name AS uploader_name").
		Joins("LEFT JOIN categories ON categories.id = images.category_id").
		Joins("LEFT JOIN users ON users.id = images.uploaded_by")
}

// List returns one page of the catalog plus the total under the same
// predicate. An empty normalized Query lists everything; otherwise the text
// search applies on top of the filters.
func (r *Repo) List(ctx context.Context, p ListParams) (*Page, error) {
	p = p.Normalize()
	scope := filterScope(p)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Image{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, apperr.Storage("count images", err)
	}

	items := make([]ImageRow, 0, p.Limit)
	err := r.joined(ctx).Scopes(scope).
		Order("images.created_at DESC, images.id DESC").
		Offset(p.offset()).Limit(p.Limit).
		Scan(&items).Error
	if err != nil {
		return nil, apperr.Storage("list images", err)
	}

	return &Page{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: pageCount(total, p.Limit),
	}, nil
}

func (r *Repo) FindByID(ctx context.Context, id uint) (*ImageRow, error) {
	var rows []ImageRow
	err := r.joined(ctx).Where("images.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("find image", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("Image not found.")
	}
	return &rows[0], nil
}

func (r *Repo) Create(ctx context.Context, img *models.Image) error {
	if err := r.db.WithContext(ctx).Create(img).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperr.Validation("Unknown category.")
		}
		return apperr.Storage("create image", err)
	}
	return nil
}

// Update applies the present patch fields and reports whether a row changed.
func (r *Repo) Update(ctx context.Context, id uint, patch ImagePatch) (bool, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return false, apperr.Validation("No fields to update.")
	}
	res := r.db.WithContext(ctx).Model(&models.Image{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return false, apperr.Validation("Unknown category.")
		}
		return false, apperr.Storage("update image", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the catalog record only; blob cleanup is the service's job.
func (r *Repo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Image{}, id)
	if res.Error != nil {
		return false, apperr.Storage("delete image", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Related samples up to limit other images in the same category, in no
// particular order. Images without a category have no related set.
func (r *Repo) Related(ctx context.Context, id uint, limit int) ([]ImageRow, error) {
	if limit < 1 {
		limit = DefaultRelatedLimit
	}

	var img models.Image
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Image not found or has no category.")
		}
		return nil, apperr.Storage("find image", err)
	}
	if img.CategoryID == nil {
		return nil, apperr.NotFound("Image not found or has no category.")
	}

	rows := make([]ImageRow, 0, limit)
	err := r.db.WithContext(ctx).Model(&models.Image{}).
		Select("images.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = images.category_id").
		Where("images.category_id = ? AND images.id <> ?", *img.CategoryID, id).
		Order("RANDOM()").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("related images", err)
	}
	return rows, nil
}

// FilterOptions are the distinct non-null values used to populate filter UIs.
type FilterOptions struct {
	Years       []int    `json:"years"`
	Departments []string `json:"departments"`
	Locations   []string `json:"locations"`
}

// Distinct collects the filter options over the whole catalog, unfiltered.
func (r *Repo) Distinct(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{
		Years:       []int{},
		Departments: []string{},
		Locations:   []string{},
	}

	err := r.db.WithContext(ctx).Model(&models.Image{}).
		Distinct("year").Where("year IS NOT NULL").Order("year DESC").
		Pluck("year", &opts.Years).Error
	if err != nil {
		return nil, apperr.Storage("distinct years", err)
	}

	err = r.db.WithContext(ctx).Model(&models.Image{}).
		Distinct("department").Where("department IS NOT NULL").Order("department").
		Pluck("department", &opts.Departments).Error
	if err != nil {
		return nil, apperr.Storage("distinct departments", err)
	}

	err = r.db.WithContext(ctx).Model(&models.Image{}).
		Distinct("location").Where("location IS NOT NULL").Order("location").
		Pluck("location", &opts.Locations).Error
	if err != nil {
		return nil, apperr.Storage("distinct locations", err)
	}

	return opts, nil
}
