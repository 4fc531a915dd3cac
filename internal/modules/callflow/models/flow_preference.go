package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Preferred automation flows
const (
	FlowTemplates = "templates"
	FlowChatbot   = "chatbot"
	FlowBoth      = "both"
)

// FlowPreference decides what happens after a missed call. One row per
// owner, created with defaults on first access.
type FlowPreference struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID               uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	PreferredFlow         string     `gorm:"type:text;not null;default:'templates'" json:"preferred_flow"`
	AutoActivateTemplates bool       `gorm:"not null;default:false" json:"auto_activate_templates"`
	AutoActivateChatbot   bool       `gorm:"not null;default:false" json:"auto_activate_chatbot"`
	DefaultTemplateID     *uuid.UUID `gorm:"type:uuid" json:"default_template_id,omitempty"`
	DefaultChatbotID      *string    `gorm:"type:text" json:"default_chatbot_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (FlowPreference) TableName() string {
	return "flow_preferences"
}

// BeforeCreate sets UUID before creating
func (p *FlowPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DefaultFlowPreference is what an owner gets before configuring anything.
func DefaultFlowPreference(ownerID uuid.UUID) *FlowPreference {
	return &FlowPreference{
		OwnerID:       ownerID,
		PreferredFlow: FlowTemplates,
	}
}

// ValidFlow reports whether flow is a known preferred flow.
func ValidFlow(flow string) bool {
	return flow == FlowTemplates || flow == FlowChatbot || flow == FlowBoth
}

func (p *FlowPreference) RunsTemplates() bool {
	return p.PreferredFlow == FlowTemplates || p.PreferredFlow == FlowBoth
}

func (p *FlowPreference) RunsChatbot() bool {
	return p.PreferredFlow == FlowChatbot || p.PreferredFlow == FlowBoth
}
