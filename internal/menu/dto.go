package menu

import (
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/core/common/validation"
)

type CreateMenuDTO struct {
	MenuText    string  `json:"menu_text"`
	Position    int     `json:"position"`
	CategoryID  *string `json:"category_id,omitempty"`
	Description string  `json:"description"`
}

func (dto CreateMenuDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("menu_text", dto.MenuText).Required().MaxLen(160)
	v.Field("position", dto.Position).Required().Positive(internal.ErrCodeInvalidPosition)
	v.Field("description", dto.Description).MaxLen(500)
	return v.Validate()
}

type UpdateMenuDTO struct {
	MenuText    string  `json:"menu_text"`
	CategoryID  *string `json:"category_id,omitempty"`
	IsActive    bool    `json:"is_active"`
	Description string  `json:"description"`
}

func (dto UpdateMenuDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("menu_text", dto.MenuText).Required().MaxLen(160)
	v.Field("description", dto.Description).MaxLen(500)
	return v.Validate()
}

type ReorderDTO struct {
	OrderedIDs []string `json:"ordered_ids"`
}

type MenusResponse struct {
	Menus []GatewayMenu `json:"menus"`
}
