package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhoneNumber is a virtual number attached to a location.
type PhoneNumber struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	LocationID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"location_id"`
	Number          string     `gorm:"type:text;not null;uniqueIndex" json:"number"`
	CountryCode     string     `gorm:"type:text" json:"country_code"`
	Provider        string     `gorm:"type:text;not null" json:"provider"`
	SMSEnabled      bool       `gorm:"not null" json:"sms_enabled"`
	WhatsAppEnabled bool       `gorm:"not null;default:false" json:"whatsapp_enabled"`
	ReleasedAt      *time.Time `json:"released_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TableName specifies the table name
func (PhoneNumber) TableName() string {
	return "phone_numbers"
}

// BeforeCreate sets UUID before creating
func (p *PhoneNumber) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
