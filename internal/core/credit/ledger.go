package credit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/metrics"
)

var (
	// ErrInsufficientCredit means no entry for the key has spare capacity.
	// It is an expected outcome: the owner has to purchase more.
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInvalidPlanType    = errors.New("plan type is required")
	ErrNothingToRelease   = errors.New("reservation has nothing to release")
)

// Ledger gates location provisioning on purchased capacity. Every mutation
// of consumed_quantity is a single guarded UPDATE so that concurrent
// callers, in this process or another, can never oversell an entry.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// GetAvailable returns purchased minus consumed for the key, or 0.
func (l *Ledger) GetAvailable(ctx context.Context, ownerID uuid.UUID, planType string) (int, error) {
	var available int64
	err := l.db.WithContext(ctx).Model(&Entry{}).
		Select("COALESCE(SUM(purchased_quantity - consumed_quantity), 0)").
		Where("owner_id = ? AND plan_type = ?", ownerID, normalizePlan(planType)).
		Scan(&available).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read credit balance: %w", err)
	}
	return int(available), nil
}

// GetEntries lists all ledger entries of an owner.
func (l *Ledger) GetEntries(ctx context.Context, ownerID uuid.UUID) ([]Entry, error) {
	var entries []Entry
	err := l.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("plan_type ASC, created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list credit entries: %w", err)
	}
	return entries, nil
}

// RecordPurchase adds quantity to the (owner, plan type) entry, creating
// it on first purchase. Callers must invoke it at most once per purchase
// event; use RecordPurchaseOnce when the event carries a reference.
func (l *Ledger) RecordPurchase(ctx context.Context, ownerID uuid.UUID, planType string, quantity int) error {
	if err := validatePurchase(planType, quantity); err != nil {
		return err
	}
	return upsertPurchase(l.db.WithContext(ctx), ownerID, normalizePlan(planType), quantity)
}

// RecordPurchaseOnce applies a purchase identified by reference exactly
// once. It reports false when the reference was already applied.
func (l *Ledger) RecordPurchaseOnce(ctx context.Context, reference string, ownerID uuid.UUID, planType string, quantity int) (bool, error) {
	if strings.TrimSpace(reference) == "" {
		return false, fmt.Errorf("purchase reference is required")
	}
	if err := validatePurchase(planType, quantity); err != nil {
		return false, err
	}

	plan := normalizePlan(planType)
	recorded := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		purchase := Purchase{
			Reference: reference,
			OwnerID:   ownerID,
			PlanType:  plan,
			Quantity:  quantity,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&purchase)
		if res.Error != nil {
			return fmt.Errorf("failed to record purchase: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		recorded = true
		return upsertPurchase(tx, ownerID, plan, quantity)
	})
	if err != nil {
		return false, err
	}

	if !recorded {
		log.Info().Str("reference", reference).Msg("purchase already applied, skipping")
	}
	return recorded, nil
}

// Reserve consumes one unit from the oldest entry with spare capacity.
// Candidates are read first, but the write is a compare-and-set on
// consumed_quantity < purchased_quantity, so a lost race only moves on to
// the next candidate.
func (l *Ledger) Reserve(ctx context.Context, ownerID uuid.UUID, planType string) (*Reservation, error) {
	plan := normalizePlan(planType)
	if plan == "" {
		return nil, ErrInvalidPlanType
	}

	db := l.db.WithContext(ctx)

	var candidates []uuid.UUID
	err := db.Model(&Entry{}).
		Where("owner_id = ? AND plan_type = ? AND consumed_quantity < purchased_quantity", ownerID, plan).
		Order("created_at ASC").
		Pluck("id", &candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load credit entries: %w", err)
	}

	for _, entryID := range candidates {
		res := db.Model(&Entry{}).
			Where("id = ? AND consumed_quantity < purchased_quantity", entryID).
			Updates(map[string]interface{}{
				"consumed_quantity": gorm.Expr("consumed_quantity + 1"),
				"updated_at":        time.Now(),
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to reserve credit: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			metrics.CreditReservations.WithLabelValues(plan, metrics.OutcomeSuccess).Inc()
			log.Debug().
				Str("owner_id", ownerID.String()).
				Str("plan_type", plan).
				Str("entry_id", entryID.String()).
				Msg("credit reserved")
			return &Reservation{
				EntryID:    entryID,
				OwnerID:    ownerID,
				PlanType:   plan,
				ReservedAt: time.Now(),
			}, nil
		}
	}

	metrics.CreditReservations.WithLabelValues(plan, metrics.OutcomeExhausted).Inc()
	return nil, ErrInsufficientCredit
}

// Release gives a reserved unit back to the entry it came from.
func (l *Ledger) Release(ctx context.Context, reservation *Reservation) error {
	if reservation == nil {
		return ErrNothingToRelease
	}

	res := l.db.WithContext(ctx).Model(&Entry{}).
		Where("id = ? AND consumed_quantity > 0", reservation.EntryID).
		Updates(map[string]interface{}{
			"consumed_quantity": gorm.Expr("consumed_quantity - 1"),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to release credit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNothingToRelease
	}

	log.Debug().
		Str("owner_id", reservation.OwnerID.String()).
		Str("plan_type", reservation.PlanType).
		Str("entry_id", reservation.EntryID.String()).
		Msg("credit released")
	return nil
}

func upsertPurchase(db *gorm.DB, ownerID uuid.UUID, plan string, quantity int) error {
	entry := Entry{
		OwnerID:           ownerID,
		PlanType:          plan,
		PurchasedQuantity: quantity,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "plan_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"purchased_quantity": gorm.Expr("credit_entries.purchased_quantity + ?", quantity),
			"updated_at":         time.Now(),
		}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	return nil
}

func validatePurchase(planType string, quantity int) error {
	if normalizePlan(planType) == "" {
		return ErrInvalidPlanType
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func normalizePlan(planType string) string {
	return strings.ToLower(strings.TrimSpace(planType))
}
