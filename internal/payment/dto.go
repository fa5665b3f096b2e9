package payment

import (
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/core/common/validation"
)

type CreateMethodDTO struct {
	ProviderID     string              `json:"provider_id"`
	Type           string              `json:"type"`
	Card           *CardDetails        `json:"card,omitempty"`
	Bank           *BankDetails        `json:"bank,omitempty"`
	MobileMoney    *MobileMoneyDetails `json:"mobile_money,omitempty"`
	BillingAddress *BillingAddress     `json:"billing_address,omitempty"`
}

func (dto CreateMethodDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("provider_id", dto.ProviderID).Required()
	v.Field("type", dto.Type).Required().OneOf(TypeCard, TypeBankAccount, TypeMobileMoney)
	if err := v.Validate(); err != nil {
		return err
	}
	return dto.validateDetails()
}

// validateDetails dispatches per-variant validation over the closed type set.
func (dto CreateMethodDTO) validateDetails() *internal.AppError {
	switch dto.Type {
	case TypeCard:
		if dto.Card == nil {
			return internal.NewValidationFieldError("card", "card details are required", internal.ErrCodeInvalidDetails)
		}
		return dto.Card.validate()
	case TypeBankAccount:
		if dto.Bank == nil {
			return internal.NewValidationFieldError("bank", "bank details are required", internal.ErrCodeInvalidDetails)
		}
		return dto.Bank.validate()
	case TypeMobileMoney:
		if dto.MobileMoney == nil {
			return internal.NewValidationFieldError("mobile_money", "mobile money details are required", internal.ErrCodeInvalidDetails)
		}
		return dto.MobileMoney.validate()
	}
	return nil
}

func (d *CardDetails) validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("card.last_four", d.LastFour).Required().MaxLen(4)
	v.Field("card.brand", d.Brand).Required()
	v.Field("card.holder_name", d.HolderName).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if d.ExpiryMonth < 1 || d.ExpiryMonth > 12 {
		return internal.NewValidationFieldError("card.expiry_month", "expiry month must be 1-12", internal.ErrCodeInvalidDetails)
	}
	if d.ExpiryYear < 2000 {
		return internal.NewValidationFieldError("card.expiry_year", "expiry year must be a four digit year", internal.ErrCodeInvalidDetails)
	}
	return nil
}

func (d *BankDetails) validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("bank.bank_name", d.BankName).Required()
	v.Field("bank.account_number", d.AccountNumber).Required()
	v.Field("bank.routing_number", d.RoutingNumber).Required()
	v.Field("bank.holder_name", d.HolderName).Required()
	return v.Validate()
}

func (d *MobileMoneyDetails) validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("mobile_money.msisdn", d.Msisdn).Required().MaxLen(16)
	v.Field("mobile_money.operator", d.Operator).Required()
	return v.Validate()
}

type UpdateMethodDTO struct {
	Status         *string         `json:"status,omitempty"`
	BillingAddress *BillingAddress `json:"billing_address,omitempty"`
}

type CreateTransactionDTO struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

func (dto CreateTransactionDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("amount_cents", dto.AmountCents).Required().Positive(internal.ErrCodeValidationFailed)
	v.Field("currency", dto.Currency).Required().MaxLen(3)
	return v.Validate()
}

type FailTransactionDTO struct {
	Reason string `json:"reason"`
}

type MethodsResponse struct {
	Methods []PaymentMethod `json:"methods"`
}

type TransactionsResponse struct {
	Transactions []PaymentTransaction `json:"transactions"`
}
