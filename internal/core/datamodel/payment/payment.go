package payment

import (
	"encoding/json"
	"time"
)

type PaymentMethod struct {
	ID             string          `gorm:"primaryKey"`
	ProviderID     string          `gorm:"column:provider_id;not null;index"`
	MethodType     string          `gorm:"column:method_type;not null"`
	Status         string          `gorm:"column:status;default:ACTIVE"`
	IsDefault      bool            `gorm:"column:is_default;default:false"`
	Details        json.RawMessage `gorm:"column:details;type:jsonb;not null"`
	BillingAddress json.RawMessage `gorm:"column:billing_address;type:jsonb"`
	CreatedAt      time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;default:now()"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}

type PaymentTransaction struct {
	ID              string     `gorm:"primaryKey"`
	PaymentMethodID string     `gorm:"column:payment_method_id;not null;index"`
	AmountCents     int64      `gorm:"column:amount_cents;not null"`
	Currency        string     `gorm:"column:currency;not null"`
	Status          string     `gorm:"column:status;default:PENDING"`
	FailureReason   *string    `gorm:"column:failure_reason"`
	SettledAt       *time.Time `gorm:"column:settled_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;default:now()"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
