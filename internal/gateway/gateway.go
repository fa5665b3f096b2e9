package gateway

import (
	"strings"
	"time"

	gatewayDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/gateway"
)

const (
	StatusActive      = "ACTIVE"
	StatusInactive    = "INACTIVE"
	StatusMaintenance = "MAINTENANCE"

	TypeMultiProvider  = "MULTI_PROVIDER"
	TypeSingleProvider = "SINGLE_PROVIDER"
)

// Gateway is an addressable USSD/SMS short-code endpoint operated by a
// carrier. Gateways are never hard-deleted; they are retired by moving to
// INACTIVE.
type Gateway struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	CarrierID   string    `json:"carrier_id"`
	Country     string    `json:"country"`
	ShortCode   string    `json:"short_code"`
	GatewayType string    `json:"gateway_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

func ValidType(gatewayType string) bool {
	return gatewayType == TypeMultiProvider || gatewayType == TypeSingleProvider
}

// Filter narrows a gateway list. Absent fields impose no constraint, present
// fields compose with AND semantics. Country is the scope key and always set
// by the caller.
type Filter struct {
	Country     string `json:"country"`
	Status      string `json:"status,omitempty"`
	CarrierID   string `json:"carrier_id,omitempty"`
	GatewayType string `json:"gateway_type,omitempty"`
	Search      string `json:"search,omitempty"`
}

// Matches reports whether g survives the filter. The repository applies the
// same predicates in SQL; this form exists so filter composition is a pure,
// testable function.
func (f Filter) Matches(g *Gateway) bool {
	if f.Country != "" && g.Country != f.Country {
		return false
	}
	if f.Status != "" && g.Status != f.Status {
		return false
	}
	if f.CarrierID != "" && g.CarrierID != f.CarrierID {
		return false
	}
	if f.GatewayType != "" && g.GatewayType != f.GatewayType {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(g.Name), needle) &&
			!strings.Contains(strings.ToLower(g.Description), needle) &&
			!strings.Contains(strings.ToLower(g.ShortCode), needle) {
			return false
		}
	}
	return true
}

// Apply filters records preserving their relative order.
func (f Filter) Apply(records []*Gateway) []*Gateway {
	surviving := make([]*Gateway, 0, len(records))
	for _, g := range records {
		if f.Matches(g) {
			surviving = append(surviving, g)
		}
	}
	return surviving
}

// CacheKey is the redis key for this filter's list result.
func (f Filter) CacheKey() string {
	return "gateways:" + f.Country + ":" + f.Status + ":" + f.CarrierID + ":" + f.GatewayType + ":" + strings.ToLower(f.Search)
}

func FromDataModel(g *gatewayDatamodel.Gateway) *Gateway {
	return &Gateway{
		ID:          g.ID,
		Name:        g.Name,
		Status:      g.Status,
		CarrierID:   g.CarrierID,
		Country:     g.Country,
		ShortCode:   g.ShortCode,
		GatewayType: g.GatewayType,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func ToDataModel(g *Gateway) *gatewayDatamodel.Gateway {
	return &gatewayDatamodel.Gateway{
		ID:          g.ID,
		Name:        g.Name,
		Status:      g.Status,
		CarrierID:   g.CarrierID,
		Country:     g.Country,
		ShortCode:   g.ShortCode,
		GatewayType: g.GatewayType,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
