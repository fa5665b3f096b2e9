package carrier

import (
	"context"
	"log/slog"
	"sync"

	internal "github.com/ussdlab/journey-console/internal"
	carrierDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/carrier"
	"github.com/ussdlab/journey-console/pkg/resourcestore"
)

type RepositoryAPI interface {
	GetByCountry(ctx context.Context, country string) ([]*carrierDatamodel.Carrier, error)
	GetByID(ctx context.Context, id string) (*carrierDatamodel.Carrier, error)
	Create(ctx context.Context, carrier *carrierDatamodel.Carrier) error
}

// Service serves carrier reference data through per-country snapshot stores,
// so repeated list calls for the same country hit the snapshot instead of the
// database and concurrent refreshes resolve last-request-wins.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger

	mu     sync.Mutex
	stores map[string]*resourcestore.Store[Carrier]
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		stores: make(map[string]*resourcestore.Store[Carrier]),
	}
}

func (s *Service) storeFor(country string) *resourcestore.Store[Carrier] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[country]; ok {
		return st
	}
	st := resourcestore.New(func(ctx context.Context, q resourcestore.Query) ([]Carrier, error) {
		records, err := s.repo.GetByCountry(ctx, q.Scope)
		if err != nil {
			return nil, internal.NewTransportError("failed to load carriers", err)
		}
		carriers := make([]Carrier, 0, len(records))
		for _, record := range records {
			carriers = append(carriers, *FromDataModel(record))
		}
		return carriers, nil
	}, s.logger)
	s.stores[country] = st
	return st
}

func (s *Service) ListByCountry(ctx context.Context, country string) ([]Carrier, error) {
	if country == "" {
		return nil, internal.NewValidationFieldError("country", "country is required", internal.ErrCodeValidationFailed)
	}

	st := s.storeFor(country)
	query := resourcestore.Query{Scope: country}

	// serve the settled snapshot when it already answers this query
	if snap := st.Snapshot(); st.Query() == query && !snap.Loading && snap.Err == nil {
		return snap.Data, nil
	}

	snap, err := st.Load(ctx, query)
	if err != nil {
		s.logger.Error("failed to load carriers", "country", country, "error", err)
		return nil, err
	}

	s.logger.Info("retrieved carriers", "country", country, "count", len(snap.Data))
	return snap.Data, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Carrier, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get carrier", "carrier_id", id, "error", err)
		return nil, internal.NewTransportError("failed to load carrier", err)
	}
	if record == nil {
		return nil, internal.ErrCarrierNotFound
	}
	return FromDataModel(record), nil
}

// Invalidate drops the snapshot for a country so the next list call refetches.
// Called by the seeder after writing reference data.
func (s *Service) Invalidate(country string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[country]; ok {
		st.Close()
		delete(s.stores, country)
	}
}
