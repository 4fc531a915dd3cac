package credit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan types sold to owners.
const (
	PlanSmall = "small"
	PlanPro   = "pro"
)

// Entry tracks purchased vs consumed location capacity for one
// (owner, plan type) pair. 0 <= ConsumedQuantity <= PurchasedQuantity.
type Entry struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_credit_entries_owner_plan" json:"owner_id"`
	PlanType          string    `gorm:"type:text;not null;uniqueIndex:ux_credit_entries_owner_plan" json:"plan_type"`
	PurchasedQuantity int       `gorm:"not null;default:0" json:"purchased_quantity"`
	ConsumedQuantity  int       `gorm:"not null;default:0" json:"consumed_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "credit_entries"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Available returns the unconsumed capacity of the entry.
func (e Entry) Available() int {
	return e.PurchasedQuantity - e.ConsumedQuantity
}

// Purchase records a payment event that has already been applied to the
// ledger, keyed by the payment provider's reference.
type Purchase struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Reference string    `gorm:"type:text;not null;uniqueIndex" json:"reference"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	PlanType  string    `gorm:"type:text;not null" json:"plan_type"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (Purchase) TableName() string {
	return "credit_purchases"
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Reservation is one consumed unit of a specific entry. Hand it back to
// Release to undo the consumption.
type Reservation struct {
	EntryID    uuid.UUID `json:"entry_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	PlanType   string    `json:"plan_type"`
	ReservedAt time.Time `json:"reserved_at"`
}
