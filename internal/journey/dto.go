package journey

import (
	"net/url"

	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/core/common/validation"
)

// Filter narrows a journey listing. Country scopes the listing; the remaining
// predicates compose with AND, empty values impose no constraint.
type Filter struct {
	Country    string
	CategoryID string
	Status     string
	Search     string
}

// CacheKey addresses the cached listing for this filter.
func (f Filter) CacheKey() string {
	return "journeys:" + f.Country + ":" + f.CategoryID + ":" + f.Status + ":" + f.Search
}

func FilterFromQuery(values url.Values) Filter {
	return Filter{
		Country:    values.Get("country"),
		CategoryID: values.Get("category_id"),
		Status:     values.Get("status"),
		Search:     values.Get("search"),
	}
}

type CreateJourneyDTO struct {
	Name        string `json:"name"`
	CategoryID  string `json:"category_id"`
	ProviderID  string `json:"provider_id"`
	Country     string `json:"country"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	Content     string `json:"content"`
}

func (dto CreateJourneyDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLen(120)
	v.Field("category_id", dto.CategoryID).Required()
	v.Field("provider_id", dto.ProviderID).Required()
	v.Field("country", dto.Country).Required()
	v.Field("content", dto.Content).Required()
	v.Field("visibility", dto.Visibility).OneOf(VisibilityPrivate, VisibilityPublic, VisibilityUnlisted)
	v.Field("description", dto.Description).MaxLen(500)
	return v.Validate()
}

type UpdateJourneyDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
}

type CreateVersionDTO struct {
	Content string `json:"content"`
}

type JourneyResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	Visibility       string  `json:"visibility"`
	CategoryID       string  `json:"category_id"`
	ProviderID       string  `json:"provider_id"`
	Country          string  `json:"country"`
	Description      string  `json:"description,omitempty"`
	CurrentVersionID *string `json:"current_version_id,omitempty"`
	PublishedAt      *string `json:"published_at,omitempty"`
}

type JourneysResponse struct {
	Journeys []JourneyResponse `json:"journeys"`
}

type VersionResponse struct {
	ID            string  `json:"id"`
	JourneyID     string  `json:"journey_id"`
	Content       string  `json:"content"`
	SchemaVersion string  `json:"schema_version"`
	PublishedAt   *string `json:"published_at,omitempty"`
}

type VersionsResponse struct {
	Versions []VersionResponse `json:"versions"`
}

func (j *Journey) ToResponse() JourneyResponse {
	resp := JourneyResponse{
		ID:               j.ID,
		Name:             j.Name,
		Status:           j.Status,
		Visibility:       j.Visibility,
		CategoryID:       j.CategoryID,
		ProviderID:       j.ProviderID,
		Country:          j.Country,
		Description:      j.Description,
		CurrentVersionID: j.CurrentVersionID,
	}
	if j.PublishedAt != nil {
		formatted := j.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.PublishedAt = &formatted
	}
	return resp
}

func (v *Version) ToResponse() VersionResponse {
	resp := VersionResponse{
		ID:            v.ID,
		JourneyID:     v.JourneyID,
		Content:       v.Content,
		SchemaVersion: v.SchemaVersion,
	}
	if v.PublishedAt != nil {
		formatted := v.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.PublishedAt = &formatted
	}
	return resp
}
