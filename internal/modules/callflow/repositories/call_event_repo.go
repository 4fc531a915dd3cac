package repositories

import (
	"context"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CallEventRepo is append-only: there is no update or delete.
type CallEventRepo interface {
	Append(ctx context.Context, event *models.CallEvent) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.CallEvent, error)
}

type callEventRepo struct {
	db *gorm.DB
}

// NewCallEventRepo creates a new call event repository
func NewCallEventRepo(db *gorm.DB) CallEventRepo {
	return &callEventRepo{db: db}
}

// Append records the event, returning ErrDuplicate for a known call ID.
func (r *callEventRepo) Append(ctx context.Context, event *models.CallEvent) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(event)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *callEventRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.CallEvent, error) {
	if limit < 1 {
		limit = 50
	}
	var events []models.CallEvent
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
