package repositories

import (
	"context"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepo interface for flow preference database operations
type PreferenceRepo interface {
	GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.FlowPreference, error)
	Save(ctx context.Context, pref *models.FlowPreference) error
}

type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepo creates a new flow preference repository
func NewPreferenceRepo(db *gorm.DB) PreferenceRepo {
	return &preferenceRepo{db: db}
}

// GetOrCreate materialises the default preference on first access.
// Concurrent first accesses converge on a single row.
func (r *preferenceRepo) GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.FlowPreference, error) {
	db := r.db.WithContext(ctx)

	defaults := models.DefaultFlowPreference(ownerID)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(defaults).Error; err != nil {
		return nil, err
	}

	var pref models.FlowPreference
	if err := db.Where("owner_id = ?", ownerID).First(&pref).Error; err != nil {
		return nil, translate(err)
	}
	return &pref, nil
}

func (r *preferenceRepo) Save(ctx context.Context, pref *models.FlowPreference) error {
	return r.db.WithContext(ctx).Save(pref).Error
}
