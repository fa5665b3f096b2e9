package postgres

import (
	"context"
	"fmt"

	registrationDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/registration"
	"github.com/ussdlab/journey-console/internal/registration"
	"gorm.io/gorm"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) registration.RepositoryAPI {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) ListByGateway(ctx context.Context, gatewayID string) ([]*registrationDatamodel.GatewayRegistration, error) {
	var registrations []*registrationDatamodel.GatewayRegistration
	err := r.db.WithContext(ctx).
		Where("gateway_id = ?", gatewayID).
		Order("position ASC").
		Find(&registrations).Error
	return registrations, err
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*registrationDatamodel.GatewayRegistration, error) {
	var record registrationDatamodel.GatewayRegistration
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *RegistrationRepository) InsertAt(ctx context.Context, record *registrationDatamodel.GatewayRegistration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&registrationDatamodel.GatewayRegistration{}).
			Where("gateway_id = ? AND position >= ?", record.GatewayID, record.Position).
			Update("position", gorm.Expr("position + 1")).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
}

func (r *RegistrationRepository) Update(ctx context.Context, record *registrationDatamodel.GatewayRegistration) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record registrationDatamodel.GatewayRegistration
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Delete(&registrationDatamodel.GatewayRegistration{}, "id = ?", id).Error; err != nil {
			return err
		}
		// close the gap so remaining positions are dense again
		return tx.Model(&registrationDatamodel.GatewayRegistration{}).
			Where("gateway_id = ? AND position > ?", record.GatewayID, record.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
}

// UpdatePositions applies the whole batch in one transaction: a failed row
// update rolls back every previously applied one.
func (r *RegistrationRepository) UpdatePositions(ctx context.Context, gatewayID string, positions map[string]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, position := range positions {
			result := tx.Model(&registrationDatamodel.GatewayRegistration{}).
				Where("id = ? AND gateway_id = ?", id, gatewayID).
				Update("position", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("registration %s not found in gateway %s", id, gatewayID)
			}
		}
		return nil
	})
}
