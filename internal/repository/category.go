package repository

import (
	"context"

	"workshophub/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines read operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(categories) == 0 {
		return categories, nil
	}

	ids := make([]uint, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	counts, err := r.activeWorkshopCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].WorkshopCount = counts[categories[i].ID]
	}
	return categories, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translate(err, "Category", slug)
	}
	counts, err := r.activeWorkshopCounts(ctx, []uint{category.ID})
	if err != nil {
		return nil, err
	}
	category.WorkshopCount = counts[category.ID]
	return &category, nil
}

func (r *categoryRepository) activeWorkshopCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		N          int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Workshop{}).
		Select("category_id, COUNT(*) AS n").
		Where("category_id IN ? AND is_active = ?", ids, true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	return counts, nil
}
