package carrier

import "time"

type Carrier struct {
	ID        string    `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Country   string    `gorm:"column:country;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Carrier) TableName() string {
	return "carriers"
}
