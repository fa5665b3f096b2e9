package category

import (
	"time"

	categoryDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/category"
)

// JourneyCategory groups journeys for discovery, scoped to a country.
type JourneyCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(c *categoryDatamodel.JourneyCategory) *JourneyCategory {
	return &JourneyCategory{
		ID:          c.ID,
		Name:        c.Name,
		Country:     c.Country,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToDataModel(c *JourneyCategory) *categoryDatamodel.JourneyCategory {
	return &categoryDatamodel.JourneyCategory{
		ID:          c.ID,
		Name:        c.Name,
		Country:     c.Country,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
