package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oohgrid/reservation-service/internal/models"
	"gorm.io/gorm"
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, tenantID string, id uint) (*models.Campaign, error)
	// FindBySourcePlan returns the campaign realized from a plan, or nil when
	// no conversion has started. Used by the workflow's idempotency guard.
	FindBySourcePlan(ctx context.Context, tenantID string, planID uint) (*models.Campaign, error)
	ListByTenant(ctx context.Context, tenantID string, status *models.CampaignStatus) ([]models.Campaign, error)
	UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error

	CreateAsset(ctx context.Context, ca *models.CampaignAsset) error
	FindAsset(ctx context.Context, campaignID, assetID uint) (*models.CampaignAsset, error)
	UpdateAssetStatus(ctx context.Context, campaignAssetID uint, status models.CampaignAssetStatus) error
	// FindActiveHolds returns the unreleased reservation rows for the given
	// assets that intersect [from, to]. These are the windows the evaluator
	// consults.
	FindActiveHolds(ctx context.Context, assetIDs []uint, from, to time.Time) ([]models.CampaignAsset, error)
}

type campaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Omit("Assets").Create(campaign).Error
}

func (r *campaignRepository) FindByID(ctx context.Context, tenantID string, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("tenant_id = ?", tenantID).
		First(&campaign, id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) FindBySourcePlan(ctx context.Context, tenantID string, planID uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Preload("Assets").
		Where("tenant_id = ? AND source_plan_id = ?", tenantID, planID).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) ListByTenant(ctx context.Context, tenantID string, status *models.CampaignStatus) ([]models.Campaign, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var campaigns []models.Campaign
	if err := q.Order("id ASC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *campaignRepository) CreateAsset(ctx context.Context, ca *models.CampaignAsset) error {
	return r.db.WithContext(ctx).Create(ca).Error
}

func (r *campaignRepository) FindAsset(ctx context.Context, campaignID, assetID uint) (*models.CampaignAsset, error) {
	var ca models.CampaignAsset
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND asset_id = ?", campaignID, assetID).
		First(&ca).Error
	if err != nil {
		return nil, err
	}
	return &ca, nil
}

func (r *campaignRepository) UpdateAssetStatus(ctx context.Context, campaignAssetID uint, status models.CampaignAssetStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CampaignAsset{}).
		Where("id = ?", campaignAssetID).
		Update("status", status).Error
}

func (r *campaignRepository) FindActiveHolds(ctx context.Context, assetIDs []uint, from, to time.Time) ([]models.CampaignAsset, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	var holds []models.CampaignAsset
	err := r.db.WithContext(ctx).
		Where("asset_id IN ? AND released_at IS NULL", assetIDs).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("asset_id ASC, start_date ASC").
		Find(&holds).Error
	if err != nil {
		return nil, err
	}
	return holds, nil
}
