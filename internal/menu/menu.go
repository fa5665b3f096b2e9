package menu

import (
	"time"

	menuDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/menu"
)

// GatewayMenu is one entry in a gateway's top-level USSD menu. Positions
// within one gateway always form a dense 1..N sequence; the service keeps
// that invariant across inserts, removals and reorders.
type GatewayMenu struct {
	ID          string    `json:"id"`
	GatewayID   string    `json:"gateway_id"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Position    int       `json:"position"`
	IsActive    bool      `json:"is_active"`
	MenuText    string    `json:"menu_text"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(m *menuDatamodel.GatewayMenu) *GatewayMenu {
	return &GatewayMenu{
		ID:          m.ID,
		GatewayID:   m.GatewayID,
		CategoryID:  m.CategoryID,
		Position:    m.Position,
		IsActive:    m.IsActive,
		MenuText:    m.MenuText,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToDataModel(m *GatewayMenu) *menuDatamodel.GatewayMenu {
	return &menuDatamodel.GatewayMenu{
		ID:          m.ID,
		GatewayID:   m.GatewayID,
		CategoryID:  m.CategoryID,
		Position:    m.Position,
		IsActive:    m.IsActive,
		MenuText:    m.MenuText,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
