package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateCompletion records a template that was actually delivered.
type TemplateCompletion struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"template_id"`
	OwnerID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"owner_id"`
	LocationID      *uuid.UUID        `gorm:"type:uuid" json:"location_id,omitempty"`
	RecipientNumber string            `gorm:"type:text;not null" json:"recipient_number"`
	Variables       datatypes.JSONMap `gorm:"type:jsonb" json:"variables" swaggertype:"object"`
	SentAt          time.Time         `gorm:"not null" json:"sent_at"`
	MessageID       string            `gorm:"type:text" json:"message_id"`
}

// TableName specifies the table name
func (TemplateCompletion) TableName() string {
	return "template_completions"
}

// BeforeCreate sets UUID before creating
func (c *TemplateCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Variables == nil {
		c.Variables = datatypes.JSONMap{}
	}
	return nil
}
