package menu

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	internal "github.com/ussdlab/journey-console/internal"
	menuDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/menu"
)

type RepositoryAPI interface {
	ListByGateway(ctx context.Context, gatewayID string) ([]*menuDatamodel.GatewayMenu, error)
	GetByID(ctx context.Context, id string) (*menuDatamodel.GatewayMenu, error)
	// InsertAt shifts every sibling at or after record.Position up by one and
	// inserts the record, atomically.
	InsertAt(ctx context.Context, record *menuDatamodel.GatewayMenu) error
	Update(ctx context.Context, record *menuDatamodel.GatewayMenu) error
	// Delete removes the record and closes the position gap, atomically.
	Delete(ctx context.Context, id string) error
	// UpdatePositions applies all position changes in one transaction:
	// either every row is updated or none is.
	UpdatePositions(ctx context.Context, gatewayID string, positions map[string]int) error
}

type GatewayLookup interface {
	Exists(ctx context.Context, gatewayID string) (bool, error)
}

type Service struct {
	repo     RepositoryAPI
	gateways GatewayLookup
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, gateways GatewayLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		gateways: gateways,
		logger:   logger,
	}
}

func (s *Service) ListByGateway(ctx context.Context, gatewayID string) ([]GatewayMenu, error) {
	if err := s.requireGateway(ctx, gatewayID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByGateway(ctx, gatewayID)
	if err != nil {
		s.logger.Error("failed to list menus", "gateway_id", gatewayID, "error", err)
		return nil, internal.NewTransportError("failed to list menus", err)
	}

	menus := make([]GatewayMenu, 0, len(records))
	for _, record := range records {
		menus = append(menus, *FromDataModel(record))
	}
	return menus, nil
}

// Create inserts the menu at the requested position, pushing later siblings
// down so positions stay dense. A position past the end is clamped to N+1.
func (s *Service) Create(ctx context.Context, gatewayID string, dto CreateMenuDTO) (*GatewayMenu, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("menu validation failed", "error", err.GetDetailedMessage())
		return nil, err
	}
	if err := s.requireGateway(ctx, gatewayID); err != nil {
		return nil, err
	}

	siblings, err := s.repo.ListByGateway(ctx, gatewayID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list menus", err)
	}

	position := dto.Position
	if position > len(siblings)+1 {
		position = len(siblings) + 1
	}

	now := time.Now()
	record := &menuDatamodel.GatewayMenu{
		ID:          "gwm-" + uuid.NewString(),
		GatewayID:   gatewayID,
		CategoryID:  dto.CategoryID,
		Position:    position,
		IsActive:    true,
		MenuText:    dto.MenuText,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertAt(ctx, record); err != nil {
		s.logger.Error("failed to create menu", "gateway_id", gatewayID, "error", err)
		return nil, internal.NewTransportError("failed to create menu", err)
	}

	s.logger.Info("menu created", "menu_id", record.ID, "gateway_id", gatewayID, "position", position)
	return FromDataModel(record), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateMenuDTO) (*GatewayMenu, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load menu", err)
	}
	if record == nil {
		return nil, internal.ErrMenuNotFound
	}

	record.MenuText = dto.MenuText
	record.CategoryID = dto.CategoryID
	record.IsActive = dto.IsActive
	record.Description = dto.Description
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update menu", "menu_id", id, "error", err)
		return nil, internal.NewTransportError("failed to update menu", err)
	}
	return FromDataModel(record), nil
}

// Delete removes the menu; the repository closes the gap so remaining
// positions are again exactly 1..N.
func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewTransportError("failed to load menu", err)
	}
	if record == nil {
		return internal.ErrMenuNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete menu", "menu_id", id, "error", err)
		return internal.NewTransportError("failed to delete menu", err)
	}

	s.logger.Info("menu deleted", "menu_id", id, "gateway_id", record.GatewayID)
	return nil
}

// Reorder recomputes every item's position as its 1-based index in the given
// ordering and persists all changes as one batch. The ordering must be a
// permutation of the gateway's current menu ids; the batch either fully
// applies or fully fails.
func (s *Service) Reorder(ctx context.Context, gatewayID string, dto ReorderDTO) ([]GatewayMenu, error) {
	current, err := s.repo.ListByGateway(ctx, gatewayID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list menus", err)
	}

	if err := validatePermutation(gatewayID, current, dto.OrderedIDs); err != nil {
		return nil, err
	}

	positions := make(map[string]int, len(dto.OrderedIDs))
	for i, id := range dto.OrderedIDs {
		positions[id] = i + 1
	}

	if err := s.repo.UpdatePositions(ctx, gatewayID, positions); err != nil {
		s.logger.Error("menu reorder failed", "gateway_id", gatewayID, "error", err)
		return nil, internal.NewConflictError("menu reorder could not be applied", internal.ErrCodeReorderFailed).WithCause(err)
	}

	s.logger.Info("menus reordered", "gateway_id", gatewayID, "count", len(positions))
	return s.ListByGateway(ctx, gatewayID)
}

func validatePermutation(gatewayID string, current []*menuDatamodel.GatewayMenu, orderedIDs []string) *internal.AppError {
	if len(orderedIDs) != len(current) {
		return internal.NewValidationFieldError("ordered_ids",
			"ordering must include every menu of the gateway exactly once", internal.ErrCodeInvalidPosition)
	}
	known := make(map[string]bool, len(current))
	for _, record := range current {
		known[record.ID] = true
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !known[id] || seen[id] {
			return internal.NewValidationFieldError("ordered_ids",
				"ordering must include every menu of the gateway exactly once", internal.ErrCodeInvalidPosition)
		}
		seen[id] = true
	}
	return nil
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
