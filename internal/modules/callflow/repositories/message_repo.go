package repositories

import (
	"context"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepo interface for outbound message history
type MessageRepo interface {
	Create(ctx context.Context, message *models.Message) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.Message, error) {
	if limit < 1 {
		limit = 50
	}
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
