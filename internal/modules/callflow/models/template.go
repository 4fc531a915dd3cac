package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Template channels
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// Template purposes
const (
	PurposeMissedCall = "missed_call"
	PurposeGeneral    = "general"
)

// Template is a reply message with {{name}} placeholders.
// DeclaredVariables lists the placeholders in the order they appear.
type Template struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	LocationID        *uuid.UUID `gorm:"type:uuid;index" json:"location_id,omitempty"`
	Name              string     `gorm:"type:text;not null" json:"name"`
	Content           string     `gorm:"type:text;not null" json:"content"`
	DeclaredVariables StringList `json:"declared_variables" swaggertype:"array,string"`
	Channel           string     `gorm:"type:text;not null;default:'sms'" json:"channel"`
	Purpose           string     `gorm:"type:text;not null;default:'general'" json:"purpose"`
	ExternalName      string     `gorm:"type:text" json:"external_name,omitempty"` // approved WhatsApp template name
	Language          string     `gorm:"type:text" json:"language,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Template) TableName() string {
	return "templates"
}

// BeforeCreate sets UUID before creating
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
