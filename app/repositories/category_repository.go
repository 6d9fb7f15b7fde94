package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CategoryRepositoryImpl interface {
	Create(ctx context.Context, category *models.Category) error
	FirstOrCreateByName(ctx context.Context, name string) (*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepositoryImpl {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = slug.Make(category.Name)
	}
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) FirstOrCreateByName(ctx context.Context, name string) (*models.Category, error) {
	category := models.Category{Name: name, Slug: slug.Make(name)}
	err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&category).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create category %q: %w", name, err)
	}
	return &category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByIDs returns the categories among ids that exist. Unknown ids are skipped.
func (r *categoryRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	return resolveCategories(r.db.WithContext(ctx), ids)
}

func resolveCategories(tx *gorm.DB, ids []string) ([]models.Category, error) {
	categories := []models.Category{}
	if len(ids) == 0 {
		return categories, nil
	}
	if err := tx.Where("id IN ?", ids).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}
	return categories, nil
}
