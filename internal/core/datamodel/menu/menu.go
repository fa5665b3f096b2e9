package menu

import "time"

type GatewayMenu struct {
	ID          string    `gorm:"primaryKey"`
	GatewayID   string    `gorm:"column:gateway_id;not null;index"`
	CategoryID  *string   `gorm:"column:category_id"`
	Position    int       `gorm:"column:position;not null"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	MenuText    string    `gorm:"column:menu_text;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (GatewayMenu) TableName() string {
	return "gateway_menus"
}
