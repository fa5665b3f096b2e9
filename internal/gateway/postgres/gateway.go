package postgres

import (
	"context"
	"strings"

	gatewayDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/gateway"
	"github.com/ussdlab/journey-console/internal/gateway"
	"gorm.io/gorm"
)

type GatewayRepository struct {
	db *gorm.DB
}

func NewGatewayRepository(db *gorm.DB) gateway.RepositoryAPI {
	return &GatewayRepository{db: db}
}

// List applies the filter predicates in SQL and returns survivors in
// insertion order (seq is assigned on insert and never updated).
func (r *GatewayRepository) List(ctx context.Context, filter gateway.Filter) ([]*gatewayDatamodel.Gateway, error) {
	query := r.db.WithContext(ctx).Where("country = ?", filter.Country)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CarrierID != "" {
		query = query.Where("carrier_id = ?", filter.CarrierID)
	}
	if filter.GatewayType != "" {
		query = query.Where("gateway_type = ?", filter.GatewayType)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(short_code) LIKE ?",
			needle, needle, needle)
	}

	var gateways []*gatewayDatamodel.Gateway
	err := query.Order("seq ASC").Find(&gateways).Error
	return gateways, err
}

func (r *GatewayRepository) GetByID(ctx context.Context, id string) (*gatewayDatamodel.Gateway, error) {
	var record gatewayDatamodel.Gateway
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create assigns the next insertion sequence number inside the insert
// transaction; seq is what List orders by and is never updated afterwards.
func (r *GatewayRepository) Create(ctx context.Context, record *gatewayDatamodel.Gateway) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxSeq int64
		if err := tx.Model(&gatewayDatamodel.Gateway{}).
			Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
			return err
		}
		record.Seq = maxSeq + 1
		return tx.Create(record).Error
	})
}

func (r *GatewayRepository) Update(ctx context.Context, record *gatewayDatamodel.Gateway) error {
	return r.db.WithContext(ctx).Save(record).Error
}
