package carrier

import (
	"time"

	carrierDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/carrier"
)

// Carrier is immutable reference data: a telecom operator owning gateways
// within one country.
type Carrier struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromDataModel(c *carrierDatamodel.Carrier) *Carrier {
	return &Carrier{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Country:   c.Country,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToDataModel(c *Carrier) *carrierDatamodel.Carrier {
	return &carrierDatamodel.Carrier{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Country:   c.Country,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
