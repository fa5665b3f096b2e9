package gateway

import (
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/core/common/validation"
)

type CreateGatewayDTO struct {
	Name        string `json:"name"`
	CarrierID   string `json:"carrier_id"`
	Country     string `json:"country"`
	ShortCode   string `json:"short_code"`
	GatewayType string `json:"gateway_type"`
	Description string `json:"description"`
}

func (dto CreateGatewayDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLen(120)
	v.Field("carrier_id", dto.CarrierID).Required()
	v.Field("country", dto.Country).Required()
	v.Field("short_code", dto.ShortCode).Required().MaxLen(20)
	v.Field("gateway_type", dto.GatewayType).Required().OneOf(TypeMultiProvider, TypeSingleProvider)
	v.Field("description", dto.Description).MaxLen(500)
	return v.Validate()
}

type UpdateGatewayDTO struct {
	Name        string `json:"name"`
	ShortCode   string `json:"short_code"`
	Description string `json:"description"`
}

func (dto UpdateGatewayDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLen(120)
	v.Field("short_code", dto.ShortCode).Required().MaxLen(20)
	v.Field("description", dto.Description).MaxLen(500)
	return v.Validate()
}

type UpdateGatewayStatusDTO struct {
	Status string `json:"status"`
}

func (dto UpdateGatewayStatusDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("status", dto.Status).Required().OneOf(StatusActive, StatusInactive, StatusMaintenance)
	return v.Validate()
}

type GatewaysResponse struct {
	Gateways []Gateway `json:"gateways"`
}
