package postgres

import (
	"context"

	"github.com/ussdlab/journey-console/internal/carrier"
	carrierDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/carrier"
	"gorm.io/gorm"
)

type CarrierRepository struct {
	db *gorm.DB
}

func NewCarrierRepository(db *gorm.DB) carrier.RepositoryAPI {
	return &CarrierRepository{db: db}
}

func (r *CarrierRepository) GetByCountry(ctx context.Context, country string) ([]*carrierDatamodel.Carrier, error) {
	var carriers []*carrierDatamodel.Carrier
	err := r.db.WithContext(ctx).
		Where("country = ?", country).
		Order("created_at ASC, id ASC").
		Find(&carriers).Error
	return carriers, err
}

func (r *CarrierRepository) GetByID(ctx context.Context, id string) (*carrierDatamodel.Carrier, error) {
	var record carrierDatamodel.Carrier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *CarrierRepository) Create(ctx context.Context, record *carrierDatamodel.Carrier) error {
	return r.db.WithContext(ctx).Create(record).Error
}
