package category

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	internal "github.com/ussdlab/journey-console/internal"
	categoryDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/category"
	"github.com/ussdlab/journey-console/pkg/resourcestore"
)

type RepositoryAPI interface {
	GetByCountry(ctx context.Context, country string) ([]*categoryDatamodel.JourneyCategory, error)
	GetByID(ctx context.Context, id string) (*categoryDatamodel.JourneyCategory, error)
	Create(ctx context.Context, record *categoryDatamodel.JourneyCategory) error
	Update(ctx context.Context, record *categoryDatamodel.JourneyCategory) error
	Delete(ctx context.Context, id string) error
}

// Service keeps a per-country snapshot store over category reference data.
// Writes go straight to the repository and drop the country's snapshot so the
// next read refetches.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger

	mu     sync.Mutex
	stores map[string]*resourcestore.Store[JourneyCategory]
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		stores: make(map[string]*resourcestore.Store[JourneyCategory]),
	}
}

func (s *Service) storeFor(country string) *resourcestore.Store[JourneyCategory] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[country]; ok {
		return st
	}
	st := resourcestore.New(func(ctx context.Context, q resourcestore.Query) ([]JourneyCategory, error) {
		records, err := s.repo.GetByCountry(ctx, q.Scope)
		if err != nil {
			return nil, internal.NewTransportError("failed to load categories", err)
		}
		categories := make([]JourneyCategory, 0, len(records))
		for _, record := range records {
			categories = append(categories, *FromDataModel(record))
		}
		return categories, nil
	}, s.logger)
	s.stores[country] = st
	return st
}

func (s *Service) ListByCountry(ctx context.Context, country string) ([]JourneyCategory, error) {
	if country == "" {
		return nil, internal.NewValidationFieldError("country", "country is required", internal.ErrCodeValidationFailed)
	}

	st := s.storeFor(country)
	query := resourcestore.Query{Scope: country}

	if snap := st.Snapshot(); st.Query() == query && !snap.Loading && snap.Err == nil {
		return snap.Data, nil
	}

	snap, err := st.Load(ctx, query)
	if err != nil {
		s.logger.Error("failed to load categories", "country", country, "error", err)
		return nil, err
	}
	return snap.Data, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*JourneyCategory, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load category", err)
	}
	if record == nil {
		return nil, internal.ErrCategoryNotFound
	}
	return FromDataModel(record), nil
}

func (s *Service) Create(ctx context.Context, dto CreateCategoryDTO) (*JourneyCategory, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &categoryDatamodel.JourneyCategory{
		ID:          "cat-" + uuid.NewString(),
		Name:        dto.Name,
		Country:     dto.Country,
		Description: dto.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create category", "name", dto.Name, "error", err)
		return nil, internal.NewTransportError("failed to create category", err)
	}

	s.Invalidate(dto.Country)
	s.logger.Info("category created", "category_id", record.ID, "country", record.Country)
	return FromDataModel(record), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateCategoryDTO) (*JourneyCategory, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load category", err)
	}
	if record == nil {
		return nil, internal.ErrCategoryNotFound
	}

	if dto.Name != nil {
		if *dto.Name == "" {
			return nil, internal.NewValidationFieldError("name", "name cannot be empty", internal.ErrCodeValidationFailed)
		}
		record.Name = *dto.Name
	}
	if dto.Description != nil {
		record.Description = *dto.Description
	}
	if dto.IsActive != nil {
		record.IsActive = *dto.IsActive
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to update category", err)
	}

	s.Invalidate(record.Country)
	return FromDataModel(record), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewTransportError("failed to load category", err)
	}
	if record == nil {
		return internal.ErrCategoryNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewTransportError("failed to delete category", err)
	}

	s.Invalidate(record.Country)
	s.logger.Info("category deleted", "category_id", id)
	return nil
}

// Exists reports whether an active category exists, for journey validation.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, internal.NewTransportError("failed to check category", err)
	}
	return record != nil && record.IsActive, nil
}

// Invalidate drops the snapshot for a country so the next list call refetches.
func (s *Service) Invalidate(country string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[country]; ok {
		st.Close()
		delete(s.stores, country)
	}
}
