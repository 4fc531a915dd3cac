package models

import (
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location is a provisioned business site. Creating one consumes one unit
// of the owner's credit for PlanType.
type Location struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_locations_owner_request_key;uniqueIndex:ux_locations_owner_first,where:is_first" json:"owner_id"`
	PlanType   string    `gorm:"type:text;not null" json:"plan_type"`
	Name       string    `gorm:"type:text;not null" json:"name"`
	Address    string    `gorm:"type:text" json:"address"`
	Timezone   string    `gorm:"type:text;not null;default:'UTC'" json:"timezone"`
	// IsFirst is held by at most one location per owner.
	IsFirst    bool      `gorm:"not null;default:false" json:"is_first"`
	RequestKey *string   `gorm:"type:text;uniqueIndex:ux_locations_owner_request_key" json:"request_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Location) TableName() string {
	return "locations"
}

// BeforeCreate sets UUID before creating
func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Clock returns the location's time zone, or UTC when it cannot be loaded.
func (l *Location) Clock() *time.Location {
	if l == nil || l.Timezone == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return tz
}
