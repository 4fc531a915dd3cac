package repositories

import (
	"context"
	"time"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhoneNumberRepo interface for virtual number records
type PhoneNumberRepo interface {
	Create(ctx context.Context, number *models.PhoneNumber) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PhoneNumber, error)
	FindWhatsAppNumberForLocation(ctx context.Context, locationID uuid.UUID) (*models.PhoneNumber, error)
	MarkReleased(ctx context.Context, id uuid.UUID, at time.Time) error
}

type phoneNumberRepo struct {
	db *gorm.DB
}

// NewPhoneNumberRepo creates a new phone number repository
func NewPhoneNumberRepo(db *gorm.DB) PhoneNumberRepo {
	return &phoneNumberRepo{db: db}
}

func (r *phoneNumberRepo) Create(ctx context.Context, number *models.PhoneNumber) error {
	return r.db.WithContext(ctx).Create(number).Error
}

func (r *phoneNumberRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.PhoneNumber, error) {
	var number models.PhoneNumber
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&number).Error; err != nil {
		return nil, translate(err)
	}
	return &number, nil
}

func (r *phoneNumberRepo) FindWhatsAppNumberForLocation(ctx context.Context, locationID uuid.UUID) (*models.PhoneNumber, error) {
	var number models.PhoneNumber
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND whatsapp_enabled = ? AND released_at IS NULL", locationID, true).
		Order("created_at ASC").
		First(&number).Error
	if err != nil {
		return nil, translate(err)
	}
	return &number, nil
}

func (r *phoneNumberRepo) MarkReleased(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.PhoneNumber{}).
		Where("id = ? AND released_at IS NULL", id).
		Update("released_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
