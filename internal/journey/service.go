package journey

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/cache"
	journeyDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/journey"
	"github.com/ussdlab/journey-console/internal/core/events"
	"github.com/ussdlab/journey-console/pkg/resourcestore"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*journeyDatamodel.Journey, error)
	GetByID(ctx context.Context, id string) (*journeyDatamodel.Journey, error)
	Create(ctx context.Context, record *journeyDatamodel.Journey, version *journeyDatamodel.JourneyVersion) error
	Update(ctx context.Context, record *journeyDatamodel.Journey) error
	ListVersions(ctx context.Context, journeyID string) ([]*journeyDatamodel.JourneyVersion, error)
	GetVersion(ctx context.Context, versionID string) (*journeyDatamodel.JourneyVersion, error)
	CreateVersion(ctx context.Context, version *journeyDatamodel.JourneyVersion) error
	UpdateVersion(ctx context.Context, version *journeyDatamodel.JourneyVersion) error
}

type CategoryLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryLookup
	cache      *cache.Cache
	bus        *events.EventBus
	muts       *resourcestore.Guard
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryLookup, c *cache.Cache, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		cache:      c,
		bus:        bus,
		muts:       resourcestore.NewGuard(),
		logger:     logger,
	}
}

// guarded serializes mutations against a single journey, version edits
// included. A second mutation arriving while one is still in flight is
// rejected rather than queued.
func (s *Service) guarded(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	err := s.muts.Do(ctx, id, fn)
	if errors.Is(err, resourcestore.ErrMutationInFlight) {
		return internal.ErrMutationInFlight
	}
	return err
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Journey, error) {
	if filter.Country == "" {
		return nil, internal.NewValidationFieldError("country", "country is required", internal.ErrCodeValidationFailed)
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, internal.NewValidationFieldError("status", "unknown journey status", internal.ErrCodeInvalidStatus)
	}

	var cached []Journey
	if s.cache.GetJSON(ctx, filter.CacheKey(), &cached) {
		return cached, nil
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list journeys", "country", filter.Country, "error", err)
		return nil, internal.NewTransportError("failed to list journeys", err)
	}

	journeys := make([]Journey, 0, len(records))
	for _, record := range records {
		journeys = append(journeys, *FromDataModel(record))
	}

	s.cache.SetJSON(ctx, filter.CacheKey(), journeys)
	return journeys, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Journey, error) {
	record, err := s.loadJourney(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(record), nil
}

// Create stores a new DRAFT journey together with its initial version. The
// document is validated before anything is written.
func (s *Service) Create(ctx context.Context, dto CreateJourneyDTO) (*Journey, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseDocument(dto.Content); err != nil {
		return nil, err
	}

	if s.categories != nil {
		ok, err := s.categories.Exists(ctx, dto.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, internal.ErrCategoryNotFound
		}
	}

	now := time.Now().UTC()
	visibility := dto.Visibility
	if visibility == "" {
		visibility = VisibilityPrivate
	}

	version := &journeyDatamodel.JourneyVersion{
		ID:            "jv-" + uuid.NewString(),
		Content:       dto.Content,
		SchemaVersion: SchemaVersion,
		CreatedAt:     now,
	}
	record := &journeyDatamodel.Journey{
		ID:          "jrn-" + uuid.NewString(),
		Name:        dto.Name,
		Status:      StatusDraft,
		Visibility:  visibility,
		CategoryID:  dto.CategoryID,
		ProviderID:  dto.ProviderID,
		Country:     dto.Country,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	version.JourneyID = record.ID

	if err := s.repo.Create(ctx, record, version); err != nil {
		s.logger.Error("failed to create journey", "name", dto.Name, "error", err)
		return nil, internal.NewTransportError("failed to create journey", err)
	}

	s.cache.Invalidate(ctx, "journeys:"+record.Country+":*")
	s.logger.Info("journey created", "journey_id", record.ID, "country", record.Country)
	return FromDataModel(record), nil
}

// Update changes name, description or visibility. Only DRAFT journeys accept
// edits.
func (s *Service) Update(ctx context.Context, id string, dto UpdateJourneyDTO) (*Journey, error) {
	var updated *Journey
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

func (s *Service) update(ctx context.Context, id string, dto UpdateJourneyDTO) (*Journey, error) {
	record, err := s.loadJourney(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusDraft {
		return nil, internal.NewConflictError("only draft journeys can be edited", internal.ErrCodeInvalidStatus)
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
	if dto.Visibility != nil {
		if !ValidVisibility(*dto.Visibility) {
			return nil, internal.NewValidationFieldError("visibility", "unknown visibility", internal.ErrCodeInvalidStatus)
		}
		record.Visibility = *dto.Visibility
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to update journey", err)
	}

	s.cache.Invalidate(ctx, "journeys:"+record.Country+":*")
	return FromDataModel(record), nil
}

// Publish moves a DRAFT journey to PUBLISHED, stamps publishedAt, publishes
// the journey's pending version and promotes it to current. Publishing an
// already published journey is a conflict.
func (s *Service) Publish(ctx context.Context, id string) (*Journey, error) {
	var published *Journey
	err := s.guarded(ctx, id, func(ctx context.Context) error {
		var innerErr error
		published, innerErr = s.publish(ctx, id)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return published, nil
}

func (s *Service) publish(ctx context.Context, id string) (*Journey, error) {
	record, err := s.loadJourney(ctx, id)
	if err != nil {
		return nil, err
	}
	switch record.Status {
	case StatusPublished:
		return nil, internal.ErrAlreadyPublished
	case StatusArchived:
		return nil, internal.NewConflictError("archived journeys cannot be published", internal.ErrCodeInvalidStatus)
	}

	now := time.Now().UTC()
	pending, err := s.pendingVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		pending.PublishedAt = &now
		if err := s.repo.UpdateVersion(ctx, pending); err != nil {
			return nil, internal.NewTransportError("failed to publish journey version", err)
		}
		record.CurrentVersionID = &pending.ID
	}

	record.Status = StatusPublished
	record.PublishedAt = &now
	record.UpdatedAt = now
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to publish journey", err)
	}

	s.cache.Invalidate(ctx, "journeys:"+record.Country+":*")
	if s.bus != nil {
		versionID := ""
		if record.CurrentVersionID != nil {
			versionID = *record.CurrentVersionID
		}
		s.bus.Publish(ctx, events.NewJourneyPublishedEvent(record.ID, versionID))
	}
	s.logger.Info("journey published", "journey_id", record.ID)
	return FromDataModel(record), nil
}

// Archive moves a PUBLISHED journey to ARCHIVED. The transition is one-way.
func (s *Service) Archive(ctx context.Context, id string) (*Journey, error) {
	var archived *Journey
	err := s.guarded(ctx, id, func(ctx context.Context) error {
		var innerErr error
		archived, innerErr = s.archive(ctx, id)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func (s *Service) archive(ctx context.Context, id string) (*Journey, error) {
	record, err := s.loadJourney(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusPublished {
		return nil, internal.NewConflictError("only published journeys can be archived", internal.ErrCodeInvalidStatus)
	}

	record.Status = StatusArchived
	record.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to archive journey", err)
	}

	s.cache.Invalidate(ctx, "journeys:"+record.Country+":*")
	s.logger.Info("journey archived", "journey_id", record.ID)
	return FromDataModel(record), nil
}

func (s *Service) ListVersions(ctx context.Context, journeyID string) ([]Version, error) {
	if _, err := s.loadJourney(ctx, journeyID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListVersions(ctx, journeyID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list journey versions", err)
	}
	versions := make([]Version, 0, len(records))
	for _, record := range records {
		versions = append(versions, *VersionFromDataModel(record))
	}
	return versions, nil
}

// CreateVersion adds a new unpublished version. At most one unpublished
// version may be pending per journey.
func (s *Service) CreateVersion(ctx context.Context, journeyID string, dto CreateVersionDTO) (*Version, error) {
	var created *Version
	err := s.guarded(ctx, journeyID, func(ctx context.Context) error {
		var innerErr error
		created, innerErr = s.createVersion(ctx, journeyID, dto)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) createVersion(ctx context.Context, journeyID string, dto CreateVersionDTO) (*Version, error) {
	if _, err := s.loadJourney(ctx, journeyID); err != nil {
		return nil, err
	}
	if _, err := ParseDocument(dto.Content); err != nil {
		return nil, err
	}

	pending, err := s.pendingVersion(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, internal.ErrVersionPending
	}

	version := &journeyDatamodel.JourneyVersion{
		ID:            "jv-" + uuid.NewString(),
		JourneyID:     journeyID,
		Content:       dto.Content,
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateVersion(ctx, version); err != nil {
		return nil, internal.NewTransportError("failed to create journey version", err)
	}

	s.logger.Info("journey version created", "journey_id", journeyID, "version_id", version.ID)
	return VersionFromDataModel(version), nil
}

// PublishVersion stamps a pending version's publishedAt. It does not touch the
// journey's current-version pointer; promotion is a separate explicit call.
func (s *Service) PublishVersion(ctx context.Context, journeyID, versionID string) (*Version, error) {
	var published *Version
	err := s.guarded(ctx, journeyID, func(ctx context.Context) error {
		var innerErr error
		published, innerErr = s.publishVersion(ctx, journeyID, versionID)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return published, nil
}

func (s *Service) publishVersion(ctx context.Context, journeyID, versionID string) (*Version, error) {
	version, err := s.loadVersion(ctx, journeyID, versionID)
	if err != nil {
		return nil, err
	}
	if version.PublishedAt != nil {
		return nil, internal.NewConflictError("version is already published", internal.ErrCodeAlreadyPublished)
	}

	now := time.Now().UTC()
	version.PublishedAt = &now
	if err := s.repo.UpdateVersion(ctx, version); err != nil {
		return nil, internal.NewTransportError("failed to publish journey version", err)
	}

	s.logger.Info("journey version published", "journey_id", journeyID, "version_id", versionID)
	return VersionFromDataModel(version), nil
}

// PromoteVersionToCurrent points the journey at a published version. Only
// published versions can become current.
func (s *Service) PromoteVersionToCurrent(ctx context.Context, journeyID, versionID string) (*Journey, error) {
	var promoted *Journey
	err := s.guarded(ctx, journeyID, func(ctx context.Context) error {
		var innerErr error
		promoted, innerErr = s.promoteVersionToCurrent(ctx, journeyID, versionID)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

func (s *Service) promoteVersionToCurrent(ctx context.Context, journeyID, versionID string) (*Journey, error) {
	record, err := s.loadJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	version, err := s.loadVersion(ctx, journeyID, versionID)
	if err != nil {
		return nil, err
	}
	if version.PublishedAt == nil {
		return nil, internal.NewConflictError("only published versions can be promoted", internal.ErrCodeInvalidStatus)
	}

	record.CurrentVersionID = &version.ID
	record.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internal.NewTransportError("failed to promote journey version", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewVersionPromotedEvent(journeyID, versionID))
	}
	s.logger.Info("journey version promoted", "journey_id", journeyID, "version_id", versionID)
	return FromDataModel(record), nil
}

// IsPublished reports whether a journey exists and is currently PUBLISHED.
// Registration creation depends on it.
func (s *Service) IsPublished(ctx context.Context, id string) (bool, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, internal.NewTransportError("failed to check journey", err)
	}
	return record != nil && record.Status == StatusPublished, nil
}

func (s *Service) loadJourney(ctx context.Context, id string) (*journeyDatamodel.Journey, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewTransportError("failed to load journey", err)
	}
	if record == nil {
		return nil, internal.ErrJourneyNotFound
	}
	return record, nil
}

func (s *Service) loadVersion(ctx context.Context, journeyID, versionID string) (*journeyDatamodel.JourneyVersion, error) {
	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, internal.NewTransportError("failed to load journey version", err)
	}
	if version == nil || version.JourneyID != journeyID {
		return nil, internal.ErrVersionNotFound
	}
	return version, nil
}

func (s *Service) pendingVersion(ctx context.Context, journeyID string) (*journeyDatamodel.JourneyVersion, error) {
	versions, err := s.repo.ListVersions(ctx, journeyID)
	if err != nil {
		return nil, internal.NewTransportError("failed to list journey versions", err)
	}
	for _, version := range versions {
		if version.PublishedAt == nil {
			return version, nil
		}
	}
	return nil, nil
}
