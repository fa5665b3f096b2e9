package gateway

import "time"

type Gateway struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Status      string    `gorm:"column:status;default:INACTIVE"`
	CarrierID   string    `gorm:"column:carrier_id;not null;index"`
	Country     string    `gorm:"column:country;not null;index"`
	ShortCode   string    `gorm:"column:short_code;not null"`
	GatewayType string    `gorm:"column:gateway_type;not null"`
	Description string    `gorm:"column:description"`
	Seq         int64     `gorm:"column:seq;not null;uniqueIndex"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Gateway) TableName() string {
	return "gateways"
}
