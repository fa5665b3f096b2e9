package category

import (
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/core/common/validation"
)

type CreateCategoryDTO struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	Description string `json:"description"`
}

func (dto CreateCategoryDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLen(120)
	v.Field("country", dto.Country).Required()
	v.Field("description", dto.Description).MaxLen(500)
	return v.Validate()
}

type UpdateCategoryDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

func (c *JourneyCategory) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Country:     c.Country,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}
