package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message statuses
const (
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

const DirectionOutbound = "outbound"

// Message is one automated or manual send attempt. Failed attempts are
// kept with the provider error so they stay visible in history.
type Message struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	LocationID        *uuid.UUID `gorm:"type:uuid;index" json:"location_id,omitempty"`
	TemplateID        *uuid.UUID `gorm:"type:uuid" json:"template_id,omitempty"`
	Direction         string     `gorm:"type:text;not null;default:'outbound'" json:"direction"`
	Channel           string     `gorm:"type:text;not null" json:"channel"`
	FromNumber        string     `gorm:"type:text" json:"from_number"`
	ToNumber          string     `gorm:"type:text;not null" json:"to_number"`
	Body              string     `gorm:"type:text" json:"body"`
	Status            string     `gorm:"type:text;not null" json:"status"`
	Provider          string     `gorm:"type:text" json:"provider"`
	ProviderMessageID string     `gorm:"type:text" json:"provider_message_id,omitempty"`
	Error             string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate sets UUID before creating
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
