package payment

import (
	"encoding/json"
	"time"

	internal "github.com/ussdlab/journey-console/internal"
	paymentDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/payment"
)

const (
	TypeCard        = "CARD"
	TypeBankAccount = "BANK_ACCOUNT"
	TypeMobileMoney = "MOBILE_MONEY"
)

const (
	MethodActive   = "ACTIVE"
	MethodInactive = "INACTIVE"
)

const (
	TxPending   = "PENDING"
	TxCompleted = "COMPLETED"
	TxFailed    = "FAILED"
	TxCancelled = "CANCELLED"
)

func ValidMethodType(t string) bool {
	return t == TypeCard || t == TypeBankAccount || t == TypeMobileMoney
}

// Settled reports whether a transaction status is final. Settled transactions
// are immutable.
func Settled(status string) bool {
	return status == TxCompleted || status == TxFailed || status == TxCancelled
}

// PaymentMethod carries the common fields plus exactly one detail variant
// selected by Type.
type PaymentMethod struct {
	ID             string              `json:"id"`
	ProviderID     string              `json:"provider_id"`
	Type           string              `json:"type"`
	Status         string              `json:"status"`
	IsDefault      bool                `json:"is_default"`
	Card           *CardDetails        `json:"card,omitempty"`
	Bank           *BankDetails        `json:"bank,omitempty"`
	MobileMoney    *MobileMoneyDetails `json:"mobile_money,omitempty"`
	BillingAddress *BillingAddress     `json:"billing_address,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type CardDetails struct {
	LastFour    string `json:"last_four"`
	Brand       string `json:"brand"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	HolderName  string `json:"holder_name"`
}

type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	HolderName    string `json:"holder_name"`
}

type MobileMoneyDetails struct {
	Msisdn   string `json:"msisdn"`
	Operator string `json:"operator"`
}

type BillingAddress struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// details returns the variant matching the method type. Exactly one variant
// must be set and it must match Type.
func (m *PaymentMethod) details() (interface{}, *internal.AppError) {
	set := 0
	if m.Card != nil {
		set++
	}
	if m.Bank != nil {
		set++
	}
	if m.MobileMoney != nil {
		set++
	}
	if set != 1 {
		return nil, internal.NewValidationFieldError("details",
			"exactly one detail payload must be provided", internal.ErrCodeInvalidDetails)
	}

	switch m.Type {
	case TypeCard:
		if m.Card == nil {
			break
		}
		return m.Card, nil
	case TypeBankAccount:
		if m.Bank == nil {
			break
		}
		return m.Bank, nil
	case TypeMobileMoney:
		if m.MobileMoney == nil {
			break
		}
		return m.MobileMoney, nil
	}
	return nil, internal.NewValidationFieldError("details",
		"detail payload does not match the method type", internal.ErrCodeInvalidDetails)
}

type PaymentTransaction struct {
	ID              string     `json:"id"`
	PaymentMethodID string     `json:"payment_method_id"`
	AmountCents     int64      `json:"amount_cents"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	FailureReason   *string    `json:"failure_reason,omitempty"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func FromDataModel(m *paymentDatamodel.PaymentMethod) (*PaymentMethod, error) {
	method := &PaymentMethod{
		ID:         m.ID,
		ProviderID: m.ProviderID,
		Type:       m.MethodType,
		Status:     m.Status,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}

	switch m.MethodType {
	case TypeCard:
		var details CardDetails
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return nil, internal.NewInternalError("corrupt card details", err)
		}
		method.Card = &details
	case TypeBankAccount:
		var details BankDetails
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return nil, internal.NewInternalError("corrupt bank details", err)
		}
		method.Bank = &details
	case TypeMobileMoney:
		var details MobileMoneyDetails
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return nil, internal.NewInternalError("corrupt mobile money details", err)
		}
		method.MobileMoney = &details
	}

	if len(m.BillingAddress) > 0 {
		var address BillingAddress
		if err := json.Unmarshal(m.BillingAddress, &address); err != nil {
			return nil, internal.NewInternalError("corrupt billing address", err)
		}
		method.BillingAddress = &address
	}
	return method, nil
}

func ToDataModel(m *PaymentMethod) (*paymentDatamodel.PaymentMethod, error) {
	variant, appErr := m.details()
	if appErr != nil {
		return nil, appErr
	}
	details, err := json.Marshal(variant)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode payment details", err)
	}

	record := &paymentDatamodel.PaymentMethod{
		ID:         m.ID,
		ProviderID: m.ProviderID,
		MethodType: m.Type,
		Status:     m.Status,
		IsDefault:  m.IsDefault,
		Details:    details,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.BillingAddress != nil {
		address, err := json.Marshal(m.BillingAddress)
		if err != nil {
			return nil, internal.NewInternalError("failed to encode billing address", err)
		}
		record.BillingAddress = address
	}
	return record, nil
}

func TransactionFromDataModel(t *paymentDatamodel.PaymentTransaction) *PaymentTransaction {
	return &PaymentTransaction{
		ID:              t.ID,
		PaymentMethodID: t.PaymentMethodID,
		AmountCents:     t.AmountCents,
		Currency:        t.Currency,
		Status:          t.Status,
		FailureReason:   t.FailureReason,
		SettledAt:       t.SettledAt,
		CreatedAt:       t.CreatedAt,
	}
}
