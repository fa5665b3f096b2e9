package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/cache"
	"github.com/ussdlab/journey-console/internal/core/events"
	gatewayDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/gateway"
	"github.com/ussdlab/journey-console/pkg/resourcestore"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*gatewayDatamodel.Gateway, error)
	GetByID(ctx context.Context, id string) (*gatewayDatamodel.Gateway, error)
	Create(ctx context.Context, record *gatewayDatamodel.Gateway) error
	Update(ctx context.Context, record *gatewayDatamodel.Gateway) error
}

type CarrierLookup interface {
	GetByID(ctx context.Context, id string) (*CarrierRef, error)
}

// CarrierRef is the slice of a carrier the gateway service needs to validate
// ownership without importing the carrier package wholesale.
type CarrierRef struct {
	ID      string
	Country string
}

type Service struct {
	repo     RepositoryAPI
	carriers CarrierLookup
	cache    *cache.Cache
	bus      *events.EventBus
	muts     *resourcestore.Guard
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, carriers CarrierLookup, c *cache.Cache, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		carriers: carriers,
		cache:    c,
		bus:      bus,
		muts:     resourcestore.NewGuard(),
		logger:   logger,
	}
}

// guarded serializes mutations against a single gateway. A second mutation
// arriving while one is still in flight is rejected rather than queued.
func (s *Service) guarded(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	err := s.muts.Do(ctx, id, fn)
	if errors.Is(err, resourcestore.ErrMutationInFlight) {
		return internal.ErrMutationInFlight
	}
	return err
}

// List returns gateways for the filter's country, narrowed by the remaining
// predicates, in insertion order. Results are read through the cache when one
// is configured.
func (s *Service) List(ctx context.Context, filter Filter) ([]Gateway, error) {
	if filter.Country == "" {
		return nil, internal.NewValidationFieldError("country", "country is required", internal.ErrCodeValidationFailed)
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, internal.NewValidationFieldError("status", "unknown gateway status", internal.ErrCodeInvalidStatus)
	}

	var cached []Gateway
	if s.cache.GetJSON(ctx, filter.CacheKey(), &cached) {
		return cached, nil
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list gateways", "country", filter.Country, "error", err)
		return nil, internal.NewTransportError("failed to list gateways", err)
	}

	gateways := make([]Gateway, 0, len(records))
	for _, record := range records {
		gateways = append(gateways, *FromDataModel(record))
	}

	s.cache.SetJSON(ctx, filter.CacheKey(), gateways)
	s.logger.Info("retrieved gateways", "country", filter.Country, "count", len(gateways))
	return gateways, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Gateway, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get gateway", "gateway_id", id, "error", err)
		return nil, internal.NewTransportError("failed to load gateway", err)
	}
	if record == nil {
		return nil, internal.ErrGatewayNotFound
	}
	return FromDataModel(record), nil
}

// Create validates the input before any repository write: a validation
// failure must short-circuit without touching the store.
func (s *Service) Create(ctx context.Context, dto CreateGatewayDTO) (*Gateway, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("gateway validation failed", "error", err.GetDetailedMessage())
		return nil, err
	}

	carrierRef, err := s.carriers.GetByID(ctx, dto.CarrierID)
	if err != nil {
		return nil, err
	}
	if carrierRef.Country != dto.Country {
		return nil, internal.NewValidationFieldError("carrier_id",
			"carrier does not operate in this country", internal.ErrCodeCarrierCountryScope)
	}

	now := time.Now()
	record := &gatewayDatamodel.Gateway{
		ID:          "gw-" + uuid.NewString(),
		Name:        dto.Name,
		Status:      StatusInactive,
		CarrierID:   dto.CarrierID,
		Country:     dto.Country,
		ShortCode:   dto.ShortCode,
		GatewayType: dto.GatewayType,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create gateway", "error", err)
		return nil, internal.NewTransportError("failed to create gateway", err)
	}

	s.cache.Invalidate(ctx, "gateways:"+dto.Country+":*")
	s.logger.Info("gateway created", "gateway_id", record.ID, "carrier_id", dto.CarrierID, "country", dto.Country)
	return FromDataModel(record), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateGatewayDTO) (*Gateway, error) {
	var updated *Gateway
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

func (s *Service) update(ctx context.Context, id string, dto UpdateGatewayDTO) (*Gateway, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load gateway", err)
	}
	if record == nil {
		return nil, internal.ErrGatewayNotFound
	}

	record.Name = dto.Name
	record.ShortCode = dto.ShortCode
	record.Description = dto.Description
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update gateway", "gateway_id", id, "error", err)
		return nil, internal.NewTransportError("failed to update gateway", err)
	}

	s.cache.Invalidate(ctx, "gateways:"+record.Country+":*")
	s.logger.Info("gateway updated", "gateway_id", id)
	return FromDataModel(record), nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, dto UpdateGatewayStatusDTO) (*Gateway, error) {
	var updated *Gateway
	err := s.guarded(ctx, id, func(ctx context.Context) error {
		var innerErr error
		updated, innerErr = s.updateStatus(ctx, id, dto)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) updateStatus(ctx context.Context, id string, dto UpdateGatewayStatusDTO) (*Gateway, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load gateway", err)
	}
	if record == nil {
		return nil, internal.ErrGatewayNotFound
	}

	oldStatus := record.Status
	record.Status = dto.Status
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update gateway status", "gateway_id", id, "error", err)
		return nil, internal.NewTransportError("failed to update gateway status", err)
	}

	s.cache.Invalidate(ctx, "gateways:"+record.Country+":*")
	if s.bus != nil && oldStatus != dto.Status {
		s.bus.Publish(ctx, events.NewGatewayStatusChangedEvent(id, oldStatus, dto.Status))
	}

	s.logger.Info("gateway status changed", "gateway_id", id, "old_status", oldStatus, "new_status", dto.Status)
	return FromDataModel(record), nil
}
