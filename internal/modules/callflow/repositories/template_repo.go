package repositories

import (
	"context"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateRepo interface for template database operations
type TemplateRepo interface {
	Create(ctx context.Context, template *models.Template) error
	Update(ctx context.Context, template *models.Template) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Template, error)
	FindForLocation(ctx context.Context, locationID uuid.UUID, channel, purpose string) (*models.Template, error)
}

type templateRepo struct {
	db *gorm.DB
}

// NewTemplateRepo creates a new template repository
func NewTemplateRepo(db *gorm.DB) TemplateRepo {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *templateRepo) Update(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *templateRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var template models.Template
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (r *templateRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Template, error) {
	var templates []models.Template
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&templates).Error
	return templates, err
}

// FindForLocation returns the most recently updated template of the given
// channel and purpose scoped to the location.
func (r *templateRepo) FindForLocation(ctx context.Context, locationID uuid.UUID, channel, purpose string) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND channel = ? AND purpose = ?", locationID, channel, purpose).
		Order("updated_at DESC").
		First(&template).Error
	if err != nil {
		return nil, translate(err)
	}
	return &template, nil
}
