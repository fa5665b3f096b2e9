package postgres

import (
	"context"

	"github.com/ussdlab/journey-console/internal/auth"
	operatorDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/operator"
	"gorm.io/gorm"
)

type OperatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) auth.OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*operatorDatamodel.Operator, error) {
	var record operatorDatamodel.Operator
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *OperatorRepository) GetByID(ctx context.Context, id string) (*operatorDatamodel.Operator, error) {
	var record operatorDatamodel.Operator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
