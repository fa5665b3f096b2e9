package postgres

import (
	"context"
	"fmt"

	menuDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/menu"
	"github.com/ussdlab/journey-console/internal/menu"
	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) menu.RepositoryAPI {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) ListByGateway(ctx context.Context, gatewayID string) ([]*menuDatamodel.GatewayMenu, error) {
	var menus []*menuDatamodel.GatewayMenu
	err := r.db.WithContext(ctx).
		Where("gateway_id = ?", gatewayID).
		Order("position ASC").
		Find(&menus).Error
	return menus, err
}

func (r *MenuRepository) GetByID(ctx context.Context, id string) (*menuDatamodel.GatewayMenu, error) {
	var record menuDatamodel.GatewayMenu
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *MenuRepository) InsertAt(ctx context.Context, record *menuDatamodel.GatewayMenu) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&menuDatamodel.GatewayMenu{}).
			Where("gateway_id = ? AND position >= ?", record.GatewayID, record.Position).
			Update("position", gorm.Expr("position + 1")).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
}

func (r *MenuRepository) Update(ctx context.Context, record *menuDatamodel.GatewayMenu) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record menuDatamodel.GatewayMenu
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Delete(&menuDatamodel.GatewayMenu{}, "id = ?", id).Error; err != nil {
			return err
		}
		// close the gap so remaining positions are dense again
		return tx.Model(&menuDatamodel.GatewayMenu{}).
			Where("gateway_id = ? AND position > ?", record.GatewayID, record.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
}

// UpdatePositions applies the whole batch in one transaction: a failed row
// update rolls back every previously applied one.
func (r *MenuRepository) UpdatePositions(ctx context.Context, gatewayID string, positions map[string]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, position := range positions {
			result := tx.Model(&menuDatamodel.GatewayMenu{}).
				Where("id = ? AND gateway_id = ?", id, gatewayID).
				Update("position", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("menu %s not found in gateway %s", id, gatewayID)
			}
		}
		return nil
	})
}
