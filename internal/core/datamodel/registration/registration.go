package registration

import "time"

type GatewayRegistration struct {
	ID          string  `gorm:"primaryKey"`
	Name        string  `gorm:"column:name;not null"`
	MenuText    string  `gorm:"column:menu_text;not null"`
	Position    int     `gorm:"column:position;not null"`
	GatewayID   string  `gorm:"column:gateway_id;not null;index"`
	JourneyID   string  `gorm:"column:journey_id;not null;index"`
	ProviderID  string  `gorm:"column:provider_id;not null;index"`
	PricePlanID *string `gorm:"column:price_plan_id"`

	// Credit balance snapshot; all four are set together or not at all.
	TotalCredits     *int64     `gorm:"column:total_credits"`
	UsedCredits      *int64     `gorm:"column:used_credits"`
	RemainingCredits *int64     `gorm:"column:remaining_credits"`
	CreditsExpireAt  *time.Time `gorm:"column:credits_expire_at"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (GatewayRegistration) TableName() string {
	return "gateway_registrations"
}
