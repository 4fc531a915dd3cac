package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions recorded by the provisioning and billing paths.
const (
	ActionCreditPurchased     = "credit.purchased"
	ActionLocationProvisioned = "location.provisioned"
	ActionCreditReleased      = "credit.released"
	ActionNumberAssigned      = "phone_number.assigned"
	ActionNumberReleased      = "phone_number.released"
)

// AuditLog represents a system audit log entry
type AuditLog struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;index"`

	Action   string `json:"action" gorm:"type:text;not null;index"`
	Entity   string `json:"entity" gorm:"type:text;not null;index"`
	EntityID string `json:"entity_id" gorm:"type:text;index"`

	OldValue datatypes.JSON `json:"old_value,omitempty" gorm:"type:jsonb"`
	NewValue datatypes.JSON `json:"new_value,omitempty" gorm:"type:jsonb"`

	Description string         `json:"description,omitempty" gorm:"type:text"`
	Metadata    datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	// JSON columns are never left NULL.
	for _, v := range []*datatypes.JSON{&a.OldValue, &a.NewValue, &a.Metadata} {
		if len(*v) == 0 {
			*v = datatypes.JSON("null")
		}
	}
	return nil
}

// AuditFilter narrows GetLogs. Zero fields match everything.
type AuditFilter struct {
	OwnerID   *uuid.UUID
	Action    string
	Entity    string
	EntityID  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

const defaultPageSize = 50

func (f *AuditFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
}

func (f AuditFilter) apply(q *gorm.DB) *gorm.DB {
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	for column, value := range map[string]string{"action": f.Action, "entity": f.Entity, "entity_id": f.EntityID} {
		if value != "" {
			q = q.Where(column+" = ?", value)
		}
	}
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at <= ?", *f.EndDate)
	}
	return q
}

// AuditLogResponse represents paginated audit log response
type AuditLogResponse struct {
	Logs       []AuditLog `json:"logs"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
