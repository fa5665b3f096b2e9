package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	internal "github.com/ussdlab/journey-console/internal"
	registrationDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/registration"
	"github.com/ussdlab/journey-console/internal/core/events"
	"github.com/ussdlab/journey-console/pkg/resourcestore"
)

type RepositoryAPI interface {
	ListByGateway(ctx context.Context, gatewayID string) ([]*registrationDatamodel.GatewayRegistration, error)
	GetByID(ctx context.Context, id string) (*registrationDatamodel.GatewayRegistration, error)
	// InsertAt shifts every sibling at or after record.Position up by one and
	// inserts the record, atomically.
	InsertAt(ctx context.Context, record *registrationDatamodel.GatewayRegistration) error
	Update(ctx context.Context, record *registrationDatamodel.GatewayRegistration) error
	// Delete removes the record and closes the position gap, atomically.
	Delete(ctx context.Context, id string) error
	// UpdatePositions applies all position changes in one transaction:
	// either every row is updated or none is.
	UpdatePositions(ctx context.Context, gatewayID string, positions map[string]int) error
}

type GatewayLookup interface {
	Exists(ctx context.Context, gatewayID string) (bool, error)
}

type JourneyLookup interface {
	IsPublished(ctx context.Context, journeyID string) (bool, error)
}

type Service struct {
	repo     RepositoryAPI
	gateways GatewayLookup
	journeys JourneyLookup
	bus      *events.EventBus
	muts     *resourcestore.Guard
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, gateways GatewayLookup, journeys JourneyLookup, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		gateways: gateways,
		journeys: journeys,
		bus:      bus,
		muts:     resourcestore.NewGuard(),
		logger:   logger,
	}
}

// guarded serializes read-modify-write mutations per registration id: a second
// mutation racing the first on the same record is rejected instead of silently
// losing one of the two writes.
func (s *Service) guarded(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	err := s.muts.Do(ctx, id, fn)
	if errors.Is(err, resourcestore.ErrMutationInFlight) {
		return internal.ErrMutationInFlight
	}
	return err
}

func (s *Service) ListByGateway(ctx context.Context, gatewayID string) ([]GatewayRegistration, error) {
	if err := s.requireGateway(ctx, gatewayID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByGateway(ctx, gatewayID)
	if err != nil {
		s.logger.Error("failed to list registrations", "gateway_id", gatewayID, "error", err)
		return nil, internal.NewTransportError("failed to list registrations", err)
	}

	registrations := make([]GatewayRegistration, 0, len(records))
	for _, record := range records {
		registrations = append(registrations, *FromDataModel(record))
	}
	return registrations, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*GatewayRegistration, error) {
	record, err := s.loadRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(record), nil
}

// Create binds a published journey into the gateway's menu at the requested
// position. Positions stay dense; a position past the end is clamped to N+1.
func (s *Service) Create(ctx context.Context, gatewayID string, dto CreateRegistrationDTO) (*GatewayRegistration, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("registration validation failed", "error", err.GetDetailedMessage())
		return nil, err
	}
	if dto.Credits != nil {
		if err := dto.Credits.ToBalance().Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.requireGateway(ctx, gatewayID); err != nil {
		return nil, err
	}

	published, err := s.journeys.IsPublished(ctx, dto.JourneyID)
	if err != nil {
		return nil, err
	}
	if !published {
		return nil, internal.ErrJourneyNotPublished
	}

	siblings, err := s.repo.ListByGateway(ctx, gatewayID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list registrations", err)
	}

	position := dto.Position
	if position > len(siblings)+1 {
		position = len(siblings) + 1
	}

	now := time.Now()
	record := &registrationDatamodel.GatewayRegistration{
		ID:          "reg-" + uuid.NewString(),
		Name:        dto.Name,
		MenuText:    dto.MenuText,
		Position:    position,
		GatewayID:   gatewayID,
		JourneyID:   dto.JourneyID,
		ProviderID:  dto.ProviderID,
		PricePlanID: dto.PricePlanID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if dto.Credits != nil {
		record.TotalCredits = &dto.Credits.Total
		record.UsedCredits = &dto.Credits.Used
		record.RemainingCredits = &dto.Credits.Remaining
		record.CreditsExpireAt = dto.Credits.ExpiresAt
	}

	if err := s.repo.InsertAt(ctx, record); err != nil {
		s.logger.Error("failed to create registration", "gateway_id", gatewayID, "error", err)
		return nil, internal.NewTransportError("failed to create registration", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewRegistrationCreatedEvent(record.ID, gatewayID, dto.JourneyID))
	}
	s.logger.Info("registration created",
		"registration_id", record.ID, "gateway_id", gatewayID, "journey_id", dto.JourneyID, "position", position)
	return FromDataModel(record), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateRegistrationDTO) (*GatewayRegistration, error) {
	var updated *GatewayRegistration
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

func (s *Service) update(ctx context.Context, id string, dto UpdateRegistrationDTO) (*GatewayRegistration, error) {
	record, err := s.loadRegistration(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		if *dto.Name == "" {
			return nil, internal.NewValidationFieldError("name", "name cannot be empty", internal.ErrCodeValidationFailed)
		}
		record.Name = *dto.Name
	}
	if dto.MenuText != nil {
		if *dto.MenuText == "" {
			return nil, internal.NewValidationFieldError("menu_text", "menu_text cannot be empty", internal.ErrCodeValidationFailed)
		}
		record.MenuText = *dto.MenuText
	}
	if dto.PricePlanID != nil {
		record.PricePlanID = dto.PricePlanID
	}
	if dto.Credits != nil {
		balance := dto.Credits.ToBalance()
		if err := balance.Validate(); err != nil {
			return nil, err
		}
		record.TotalCredits = &balance.Total
		record.UsedCredits = &balance.Used
		record.RemainingCredits = &balance.Remaining
		record.CreditsExpireAt = balance.ExpiresAt
	}
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update registration", "registration_id", id, "error", err)
		return nil, internal.NewTransportError("failed to update registration", err)
	}
	return FromDataModel(record), nil
}

// Delete removes the registration; the repository closes the gap so remaining
// positions are again exactly 1..N.
func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.loadRegistration(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete registration", "registration_id", id, "error", err)
		return internal.NewTransportError("failed to delete registration", err)
	}

	s.logger.Info("registration deleted", "registration_id", id, "gateway_id", record.GatewayID)
	return nil
}

// Reorder recomputes every registration's position as its 1-based index in the
// given ordering and persists all changes as one batch, same contract as menu
// reordering.
func (s *Service) Reorder(ctx context.Context, gatewayID string, dto ReorderDTO) ([]GatewayRegistration, error) {
	current, err := s.repo.ListByGateway(ctx, gatewayID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list registrations", err)
	}

	if err := validatePermutation(current, dto.OrderedIDs); err != nil {
		return nil, err
	}

	positions := make(map[string]int, len(dto.OrderedIDs))
	for i, id := range dto.OrderedIDs {
		positions[id] = i + 1
	}

	if err := s.repo.UpdatePositions(ctx, gatewayID, positions); err != nil {
		s.logger.Error("registration reorder failed", "gateway_id", gatewayID, "error", err)
		return nil, internal.NewConflictError("registration reorder could not be applied", internal.ErrCodeReorderFailed).WithCause(err)
	}

	s.logger.Info("registrations reordered", "gateway_id", gatewayID, "count", len(positions))
	return s.ListByGateway(ctx, gatewayID)
}

// ConsumeCredits moves amount from the registration's remaining credits to its
// used credits. The total is conserved, and concurrent consumes against the
// same registration are serialized by the mutation guard.
func (s *Service) ConsumeCredits(ctx context.Context, id string, dto ConsumeCreditsDTO) (*GatewayRegistration, error) {
	var consumed *GatewayRegistration
	err := s.guarded(ctx, id, func(ctx context.Context) error {
		var innerErr error
		consumed, innerErr = s.consumeCredits(ctx, id, dto)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

func (s *Service) consumeCredits(ctx context.Context, id string, dto ConsumeCreditsDTO) (*GatewayRegistration, error) {
	record, err := s.loadRegistration(ctx, id)
	if err != nil {
		return nil, err
	}

	reg := FromDataModel(record)
	if reg.Credits == nil {
		return nil, internal.NewValidationFieldError("credits", "registration has no credit balance", internal.ErrCodeInvalidBalance)
	}
	if reg.Credits.Expired(time.Now()) {
		return nil, internal.NewConflictError("credit balance has expired", internal.ErrCodeInvalidBalance)
	}
	if err := reg.Credits.Consume(dto.Amount); err != nil {
		return nil, err
	}

	record.UsedCredits = &reg.Credits.Used
	record.RemainingCredits = &reg.Credits.Remaining
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to consume credits", "registration_id", id, "error", err)
		return nil, internal.NewTransportError("failed to consume credits", err)
	}

	s.logger.Info("credits consumed", "registration_id", id, "amount", dto.Amount, "remaining", reg.Credits.Remaining)
	return reg, nil
}

func validatePermutation(current []*registrationDatamodel.GatewayRegistration, orderedIDs []string) *internal.AppError {
	if len(orderedIDs) != len(current) {
		return internal.NewValidationFieldError("ordered_ids",
			"ordering must include every registration of the gateway exactly once", internal.ErrCodeInvalidPosition)
	}
	known := make(map[string]bool, len(current))
	for _, record := range current {
		known[record.ID] = true
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !known[id] || seen[id] {
			return internal.NewValidationFieldError("ordered_ids",
				"ordering must include every registration of the gateway exactly once", internal.ErrCodeInvalidPosition)
		}
		seen[id] = true
	}
	return nil
}

func (s *Service) loadRegistration(ctx context.Context, id string) (*registrationDatamodel.GatewayRegistration, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load registration", err)
	}
	if record == nil {
		return nil, internal.ErrRegistrationNotFound
	}
	return record, nil
}

func (s *Service) requireGateway(ctx context.Context, gatewayID string) error {
	ok, err := s.gateways.Exists(ctx, gatewayID)
	if err != nil {
		return internal.NewTransportError("failed to check gateway", err)
	}
	if !ok {
		return internal.ErrGatewayNotFound
	}
	return nil
}
