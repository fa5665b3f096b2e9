package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	internal "github.com/ussdlab/journey-console/internal"
	paymentDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/payment"
	"github.com/ussdlab/journey-console/internal/core/events"
	"github.com/ussdlab/journey-console/pkg/resourcestore"
)

type RepositoryAPI interface {
	ListByProvider(ctx context.Context, providerID string) ([]*paymentDatamodel.PaymentMethod, error)
	GetByID(ctx context.Context, id string) (*paymentDatamodel.PaymentMethod, error)
	Create(ctx context.Context, record *paymentDatamodel.PaymentMethod) error
	Update(ctx context.Context, record *paymentDatamodel.PaymentMethod) error
	Delete(ctx context.Context, id string) error
	// SetDefault flips the default flag to methodID and clears it on every
	// sibling of the same provider, in one transaction.
	SetDefault(ctx context.Context, providerID, methodID string) error

	CreateTransaction(ctx context.Context, record *paymentDatamodel.PaymentTransaction) error
	GetTransaction(ctx context.Context, id string) (*paymentDatamodel.PaymentTransaction, error)
	UpdateTransaction(ctx context.Context, record *paymentDatamodel.PaymentTransaction) error
	ListTransactionsByMethod(ctx context.Context, methodID string) ([]*paymentDatamodel.PaymentTransaction, error)
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	muts   *resourcestore.Guard
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		muts:   resourcestore.NewGuard(),
		logger: logger,
	}
}

// guarded serializes mutations against a single record. A second mutation
// arriving while one is still in flight is rejected rather than queued.
func (s *Service) guarded(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	err := s.muts.Do(ctx, id, fn)
	if errors.Is(err, resourcestore.ErrMutationInFlight) {
		return internal.ErrMutationInFlight
	}
	return err
}

func (s *Service) ListByProvider(ctx context.Context, providerID string) ([]PaymentMethod, error) {
	if providerID == "" {
		return nil, internal.NewValidationFieldError("provider_id", "provider_id is required", internal.ErrCodeValidationFailed)
	}

	records, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("failed to list payment methods", "provider_id", providerID, "error", err)
		return nil, internal.NewTransportError("failed to list payment methods", err)
	}

	methods := make([]PaymentMethod, 0, len(records))
	for _, record := range records {
		method, err := FromDataModel(record)
		if err != nil {
			return nil, err
		}
		methods = append(methods, *method)
	}
	return methods, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*PaymentMethod, error) {
	record, err := s.loadMethod(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(record)
}

// Create stores a new payment method. The first method of a provider becomes
// its default.
func (s *Service) Create(ctx context.Context, dto CreateMethodDTO) (*PaymentMethod, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("payment method validation failed", "error", err.GetDetailedMessage())
		return nil, err
	}

	siblings, err := s.repo.ListByProvider(ctx, dto.ProviderID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list payment methods", err)
	}

	now := time.Now()
	method := &PaymentMethod{
		ID:             "pm-" + uuid.NewString(),
		ProviderID:     dto.ProviderID,
		Type:           dto.Type,
		Status:         MethodActive,
		IsDefault:      len(siblings) == 0,
		Card:           dto.Card,
		Bank:           dto.Bank,
		MobileMoney:    dto.MobileMoney,
		BillingAddress: dto.BillingAddress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	record, err := ToDataModel(method)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create payment method", "provider_id", dto.ProviderID, "error", err)
		return nil, internal.NewTransportError("failed to create payment method", err)
	}

	s.logger.Info("payment method created", "method_id", method.ID, "provider_id", dto.ProviderID, "type", dto.Type)
	return method, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateMethodDTO) (*PaymentMethod, error) {
	var updated *PaymentMethod
	err := s.guarded(ctx, id, func(ctx context.Context) error {
		var innerErr error
		updated, innerErr = s.update(ctx, id, dto)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) update(ctx context.Context, id string, dto UpdateMethodDTO) (*PaymentMethod, error) {
	record, err := s.loadMethod(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Status != nil {
		if *dto.Status != MethodActive && *dto.Status != MethodInactive {
			return nil, internal.NewValidationFieldError("status", "unknown payment method status", internal.ErrCodeInvalidStatus)
		}
		record.Status = *dto.Status
	}
	if dto.BillingAddress != nil {
		method, err := FromDataModel(record)
		if err != nil {
			return nil, err
		}
		method.BillingAddress = dto.BillingAddress
		updated, err := ToDataModel(method)
		if err != nil {
			return nil, err
		}
		record.BillingAddress = updated.BillingAddress
	}
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to update payment method", err)
	}
	return FromDataModel(record)
}

// Delete refuses to remove the provider's default method; another method must
// be made default first.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.guarded(ctx, id, func(ctx context.Context) error {
		return s.delete(ctx, id)
	})
}

func (s *Service) delete(ctx context.Context, id string) error {
	record, err := s.loadMethod(ctx, id)
	if err != nil {
		return err
	}
	if record.IsDefault {
		return internal.NewConflictError("default payment method cannot be deleted", internal.ErrCodeDefaultMethodInUse)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete payment method", "method_id", id, "error", err)
		return internal.NewTransportError("failed to delete payment method", err)
	}

	s.logger.Info("payment method deleted", "method_id", id)
	return nil
}

// SetDefault makes the method its provider's single default: the flag is set
// on it and cleared on every sibling in the same logical operation.
func (s *Service) SetDefault(ctx context.Context, id string) (*PaymentMethod, error) {
	var method *PaymentMethod
	err := s.guarded(ctx, id, func(ctx context.Context) error {
		var innerErr error
		method, innerErr = s.setDefault(ctx, id)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

func (s *Service) setDefault(ctx context.Context, id string) (*PaymentMethod, error) {
	record, err := s.loadMethod(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != MethodActive {
		return nil, internal.NewConflictError("inactive payment method cannot be the default", internal.ErrCodeInvalidStatus)
	}

	if err := s.repo.SetDefault(ctx, record.ProviderID, id); err != nil {
		s.logger.Error("failed to set default payment method", "method_id", id, "error", err)
		return nil, internal.NewTransportError("failed to set default payment method", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewDefaultMethodChangedEvent(record.ProviderID, id))
	}
	s.logger.Info("default payment method changed", "provider_id", record.ProviderID, "method_id", id)
	return s.GetByID(ctx, id)
}

func (s *Service) CreateTransaction(ctx context.Context, methodID string, dto CreateTransactionDTO) (*PaymentTransaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	method, err := s.loadMethod(ctx, methodID)
	if err != nil {
		return nil, err
	}
	if method.Status != MethodActive {
		return nil, internal.NewConflictError("payment method is not active", internal.ErrCodeInvalidStatus)
	}

	now := time.Now()
	record := &paymentDatamodel.PaymentTransaction{
		ID:              "txn-" + uuid.NewString(),
		PaymentMethodID: methodID,
		AmountCents:     dto.AmountCents,
		Currency:        dto.Currency,
		Status:          TxPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateTransaction(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to create transaction", err)
	}

	s.logger.Info("transaction created", "transaction_id", record.ID, "method_id", methodID, "amount_cents", dto.AmountCents)
	return TransactionFromDataModel(record), nil
}

// CompleteTransaction settles a pending transaction as COMPLETED.
func (s *Service) CompleteTransaction(ctx context.Context, id string) (*PaymentTransaction, error) {
	return s.settle(ctx, id, TxCompleted, nil)
}

// FailTransaction settles a pending transaction as FAILED with a reason.
func (s *Service) FailTransaction(ctx context.Context, id string, dto FailTransactionDTO) (*PaymentTransaction, error) {
	reason := dto.Reason
	return s.settle(ctx, id, TxFailed, &reason)
}

// CancelTransaction settles a pending transaction as CANCELLED.
func (s *Service) CancelTransaction(ctx context.Context, id string) (*PaymentTransaction, error) {
	return s.settle(ctx, id, TxCancelled, nil)
}

func (s *Service) ListTransactions(ctx context.Context, methodID string) ([]PaymentTransaction, error) {
	if _, err := s.loadMethod(ctx, methodID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListTransactionsByMethod(ctx, methodID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list transactions", err)
	}
	transactions := make([]PaymentTransaction, 0, len(records))
	for _, record := range records {
		transactions = append(transactions, *TransactionFromDataModel(record))
	}
	return transactions, nil
}

// settle transitions a PENDING transaction into a final status. Settled
// transactions are immutable, and concurrent settles against the same
// transaction are serialized by the mutation guard.
func (s *Service) settle(ctx context.Context, id, status string, reason *string) (*PaymentTransaction, error) {
	var txn *PaymentTransaction
	err := s.guarded(ctx, id, func(ctx context.Context) error {
		var innerErr error
		txn, innerErr = s.settleLocked(ctx, id, status, reason)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Service) settleLocked(ctx context.Context, id, status string, reason *string) (*PaymentTransaction, error) {
	record, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load transaction", err)
	}
	if record == nil {
		return nil, internal.ErrTransactionNotFound
	}
	if Settled(record.Status) {
		return nil, internal.ErrTransactionSettled
	}

	now := time.Now()
	record.Status = status
	record.FailureReason = reason
	record.SettledAt = &now
	record.UpdatedAt = now

	if err := s.repo.UpdateTransaction(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to settle transaction", err)
	}

	s.logger.Info("transaction settled", "transaction_id", id, "status", status)
	return TransactionFromDataModel(record), nil
}

func (s *Service) loadMethod(ctx context.Context, id string) (*paymentDatamodel.PaymentMethod, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load payment method", err)
	}
	if record == nil {
		return nil, internal.ErrPaymentMethodNotFound
	}
	return record, nil
}
