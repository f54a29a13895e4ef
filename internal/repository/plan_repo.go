package repository

import (
	"context"

	"github.com/oohgrid/reservation-service/internal/models"
	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	FindByID(ctx context.Context, tenantID string, id uint) (*models.Plan, error)
	ListByTenant(ctx context.Context, tenantID string, status *models.PlanStatus) ([]models.Plan, error)
	UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error
	// Finalize marks the plan converted and pins its campaign reference.
	// Conditional on not being converted to another campaign already, so a
	// workflow retry re-applying the same reference stays a no-op.
	Finalize(ctx context.Context, id, campaignID uint) error
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepository) FindByID(ctx context.Context, tenantID string, id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("tenant_id = ?", tenantID).
		First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListByTenant(ctx context.Context, tenantID string, status *models.PlanStatus) ([]models.Plan, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var plans []models.Plan
	if err := q.Order("id ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *planRepository) Finalize(ctx context.Context, id, campaignID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ? AND (campaign_id IS NULL OR campaign_id = ?)", id, campaignID).
		Updates(map[string]any{
			"status":      models.PlanConverted,
			"campaign_id": campaignID,
		}).Error
}
