package postgres

import (
	"context"
	"fmt"

	paymentDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/payment"
	"github.com/ussdlab/journey-console/internal/payment"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.RepositoryAPI {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ListByProvider(ctx context.Context, providerID string) ([]*paymentDatamodel.PaymentMethod, error) {
	var methods []*paymentDatamodel.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC, id ASC").
		Find(&methods).Error
	return methods, err
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*paymentDatamodel.PaymentMethod, error) {
	var record paymentDatamodel.PaymentMethod
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *PaymentRepository) Create(ctx context.Context, record *paymentDatamodel.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *PaymentRepository) Update(ctx context.Context, record *paymentDatamodel.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&paymentDatamodel.PaymentMethod{}, "id = ?", id).Error
}

// SetDefault clears the flag on every sibling and sets it on methodID inside
// one transaction, so there is never more than one default per provider.
func (r *PaymentRepository) SetDefault(ctx context.Context, providerID, methodID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&paymentDatamodel.PaymentMethod{}).
			Where("provider_id = ? AND is_default = ?", providerID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&paymentDatamodel.PaymentMethod{}).
			Where("id = ? AND provider_id = ?", methodID, providerID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("payment method %s not found for provider %s", methodID, providerID)
		}
		return nil
	})
}

func (r *PaymentRepository) CreateTransaction(ctx context.Context, record *paymentDatamodel.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *PaymentRepository) GetTransaction(ctx context.Context, id string) (*paymentDatamodel.PaymentTransaction, error) {
	var record paymentDatamodel.PaymentTransaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *PaymentRepository) UpdateTransaction(ctx context.Context, record *paymentDatamodel.PaymentTransaction) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *PaymentRepository) ListTransactionsByMethod(ctx context.Context, methodID string) ([]*paymentDatamodel.PaymentTransaction, error) {
	var transactions []*paymentDatamodel.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("payment_method_id = ?", methodID).
		Order("created_at DESC").
		Find(&transactions).Error
	return transactions, err
}
