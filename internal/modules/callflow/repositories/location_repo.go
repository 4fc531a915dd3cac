package repositories

import (
	"context"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationRepo interface for location database operations
type LocationRepo interface {
	Create(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	FindByRequestKey(ctx context.Context, ownerID uuid.UUID, key string) (*models.Location, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Location, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepo creates a new location repository
func NewLocationRepo(db *gorm.DB) LocationRepo {
	return &locationRepo{db: db}
}

// Create inserts the location and sets IsFirst when it is the owner's first.
// The mark is claimed through the ux_locations_owner_first partial index,
// so concurrent first inserts settle on a single winner. A request key the
// owner already used yields ErrDuplicate instead of a driver-specific
// constraint error.
func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	for _, first := range []bool{true, false} {
		location.IsFirst = first
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(location)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	location.IsFirst = false
	return ErrDuplicate
}

func (r *locationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error; err != nil {
		return nil, translate(err)
	}
	return &location, nil
}

func (r *locationRepo) FindByRequestKey(ctx context.Context, ownerID uuid.UUID, key string) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND request_key = ?", ownerID, key).
		First(&location).Error
	if err != nil {
		return nil, translate(err)
	}
	return &location, nil
}

func (r *locationRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&locations).Error
	return locations, err
}

func (r *locationRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Location{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}
