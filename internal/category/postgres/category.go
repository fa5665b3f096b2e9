package postgres

import (
	"context"

	"github.com/ussdlab/journey-console/internal/category"
	categoryDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/category"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetByCountry(ctx context.Context, country string) ([]*categoryDatamodel.JourneyCategory, error) {
	var categories []*categoryDatamodel.JourneyCategory
	err := r.db.WithContext(ctx).
		Where("country = ?", country).
		Order("created_at ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*categoryDatamodel.JourneyCategory, error) {
	var record categoryDatamodel.JourneyCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *CategoryRepository) Create(ctx context.Context, record *categoryDatamodel.JourneyCategory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *CategoryRepository) Update(ctx context.Context, record *categoryDatamodel.JourneyCategory) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&categoryDatamodel.JourneyCategory{}, "id = ?", id).Error
}
