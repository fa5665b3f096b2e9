package journey

import "time"

type Journey struct {
	ID               string    `gorm:"primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Status           string    `gorm:"column:status;default:DRAFT"`
	Visibility       string    `gorm:"column:visibility;default:PRIVATE"`
	CategoryID       string    `gorm:"column:category_id;not null;index"`
	ProviderID       string    `gorm:"column:provider_id;not null;index"`
	Country          string    `gorm:"column:country;not null;index"`
	Description      string    `gorm:"column:description"`
	CurrentVersionID *string   `gorm:"column:current_version_id"`
	PublishedAt      *time.Time `gorm:"column:published_at"`
	CreatedAt        time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;default:now()"`
}

func (Journey) TableName() string {
	return "journeys"
}

type JourneyVersion struct {
	ID            string     `gorm:"primaryKey"`
	JourneyID     string     `gorm:"column:journey_id;not null;index"`
	Content       string     `gorm:"column:content;not null"`
	SchemaVersion string     `gorm:"column:schema_version;not null"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
}

func (JourneyVersion) TableName() string {
	return "journey_versions"
}
