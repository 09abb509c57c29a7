package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/models"
	"gorm.io/gorm"
)

// Categories lists all categories ordered by name.
func (r *Repo) Categories(ctx context.Context) ([]models.Category, error) {
	cats := make([]models.Category, 0)
	if err := r.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, apperr.Storage("list categories", err)
	}
	return cats, nil
}

func (r *Repo) CategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := r.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Category not found.")
		}
		return nil, apperr.Storage("find category", err)
	}
	return &cat, nil
}

func (r *Repo) CreateCategory(ctx context.Context, name string, description *string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("Category name is required.")
	}
	cat := &models.Category{Name: name, Description: description}
	if err := r.db.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, apperr.Storage("create category", err)
	}
	return cat, nil
}

func (r *Repo) UpdateCategory(ctx context.Context, id uint, name string, description *string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("Category name is required.")
	}
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return apperr.Storage("update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Category not found.")
	}
	return nil
}

// DeleteCategory removes the category row. The SET NULL constraint detaches
// dependent images; nothing here cascades.
func (r *Repo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return apperr.Storage("delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Category not found.")
	}
	return nil
}
