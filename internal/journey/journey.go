package journey

import (
	"time"

	journeyDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/journey"
)

// Journey lifecycle. DRAFT journeys are editable; publishing is one-way into
// PUBLISHED and from there only ARCHIVED.
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

const (
	VisibilityPrivate  = "PRIVATE"
	VisibilityPublic   = "PUBLIC"
	VisibilityUnlisted = "UNLISTED"
)

func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

func ValidVisibility(v string) bool {
	return v == VisibilityPrivate || v == VisibilityPublic || v == VisibilityUnlisted
}

type Journey struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	Visibility       string     `json:"visibility"`
	CategoryID       string     `json:"category_id"`
	ProviderID       string     `json:"provider_id"`
	Country          string     `json:"country"`
	Description      string     `json:"description"`
	CurrentVersionID *string    `json:"current_version_id,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Version struct {
	ID            string     `json:"id"`
	JourneyID     string     `json:"journey_id"`
	Content       string     `json:"content"`
	SchemaVersion string     `json:"schema_version"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Pending reports whether this version has not been published yet. At most one
// pending version may exist per journey.
func (v *Version) Pending() bool {
	return v.PublishedAt == nil
}

func FromDataModel(j *journeyDatamodel.Journey) *Journey {
	return &Journey{
		ID:               j.ID,
		Name:             j.Name,
		Status:           j.Status,
		Visibility:       j.Visibility,
		CategoryID:       j.CategoryID,
		ProviderID:       j.ProviderID,
		Country:          j.Country,
		Description:      j.Description,
		CurrentVersionID: j.CurrentVersionID,
		PublishedAt:      j.PublishedAt,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
}

func ToDataModel(j *Journey) *journeyDatamodel.Journey {
	return &journeyDatamodel.Journey{
		ID:               j.ID,
		Name:             j.Name,
		Status:           j.Status,
		Visibility:       j.Visibility,
		CategoryID:       j.CategoryID,
		ProviderID:       j.ProviderID,
		Country:          j.Country,
		Description:      j.Description,
		CurrentVersionID: j.CurrentVersionID,
		PublishedAt:      j.PublishedAt,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
}

func VersionFromDataModel(v *journeyDatamodel.JourneyVersion) *Version {
	return &Version{
		ID:            v.ID,
		JourneyID:     v.JourneyID,
		Content:       v.Content,
		SchemaVersion: v.SchemaVersion,
		PublishedAt:   v.PublishedAt,
		CreatedAt:     v.CreatedAt,
	}
}
