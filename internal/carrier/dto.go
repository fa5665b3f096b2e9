package carrier

type CarrierResponse struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type CarriersResponse struct {
	Carriers []CarrierResponse `json:"carriers"`
}

func (c *Carrier) ToResponse() CarrierResponse {
	return CarrierResponse{
		ID:      c.ID,
		Code:    c.Code,
		Name:    c.Name,
		Country: c.Country,
	}
}
