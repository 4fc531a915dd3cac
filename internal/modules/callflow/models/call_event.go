package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Call types
const (
	CallTypeMissed    = "missed"
	CallTypeAnswered  = "answered"
	CallTypeVoicemail = "voicemail"
)

// CallEvent is an inbound call as reported by the telephony provider.
// Events are append-only.
type CallEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CallID        string    `gorm:"type:text;not null;uniqueIndex" json:"call_id"`
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	LocationID    uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	VirtualNumber string    `gorm:"type:text" json:"virtual_number"`
	CallerNumber  string    `gorm:"type:text;not null" json:"caller_number"`
	CallType      string    `gorm:"type:text;not null" json:"call_type"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
	Duration      *int      `json:"duration,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name
func (CallEvent) TableName() string {
	return "call_events"
}

// BeforeCreate sets UUID before creating
func (e *CallEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
