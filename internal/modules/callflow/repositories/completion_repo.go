package repositories

import (
	"context"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompletionRepo interface for template completion records
type CompletionRepo interface {
	Create(ctx context.Context, completion *models.TemplateCompletion) error
	FindByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.TemplateCompletion, error)
}

type completionRepo struct {
	db *gorm.DB
}

// NewCompletionRepo creates a new template completion repository
func NewCompletionRepo(db *gorm.DB) CompletionRepo {
	return &completionRepo{db: db}
}

func (r *completionRepo) Create(ctx context.Context, completion *models.TemplateCompletion) error {
	return r.db.WithContext(ctx).Create(completion).Error
}

func (r *completionRepo) FindByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.TemplateCompletion, error) {
	var completions []models.TemplateCompletion
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("sent_at DESC").
		Find(&completions).Error
	return completions, err
}
