package postgres

import (
	"context"
	"strings"

	journeyDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/journey"
	"github.com/ussdlab/journey-console/internal/journey"
	"gorm.io/gorm"
)

type JourneyRepository struct {
	db *gorm.DB
}

func NewJourneyRepository(db *gorm.DB) journey.RepositoryAPI {
	return &JourneyRepository{db: db}
}

func (r *JourneyRepository) List(ctx context.Context, filter journey.Filter) ([]*journeyDatamodel.Journey, error) {
	query := r.db.WithContext(ctx).Where("country = ?", filter.Country)

	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	}

	var journeys []*journeyDatamodel.Journey
	err := query.Order("created_at ASC, id ASC").Find(&journeys).Error
	return journeys, err
}

func (r *JourneyRepository) GetByID(ctx context.Context, id string) (*journeyDatamodel.Journey, error) {
	var record journeyDatamodel.Journey
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create writes the journey and its initial version in one transaction so a
// journey never exists without a version.
func (r *JourneyRepository) Create(ctx context.Context, record *journeyDatamodel.Journey, version *journeyDatamodel.JourneyVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Create(version).Error
	})
}

func (r *JourneyRepository) Update(ctx context.Context, record *journeyDatamodel.Journey) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *JourneyRepository) ListVersions(ctx context.Context, journeyID string) ([]*journeyDatamodel.JourneyVersion, error) {
	var versions []*journeyDatamodel.JourneyVersion
	err := r.db.WithContext(ctx).
		Where("journey_id = ?", journeyID).
		Order("created_at ASC, id ASC").
		Find(&versions).Error
	return versions, err
}

func (r *JourneyRepository) GetVersion(ctx context.Context, versionID string) (*journeyDatamodel.JourneyVersion, error) {
	var version journeyDatamodel.JourneyVersion
	err := r.db.WithContext(ctx).Where("id = ?", versionID).First(&version).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

func (r *JourneyRepository) CreateVersion(ctx context.Context, version *journeyDatamodel.JourneyVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *JourneyRepository) UpdateVersion(ctx context.Context, version *journeyDatamodel.JourneyVersion) error {
	return r.db.WithContext(ctx).Save(version).Error
}
