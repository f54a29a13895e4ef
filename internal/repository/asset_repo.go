package repository

import (
	"context"
	"time"

	"github.com/oohgrid/reservation-service/internal/models"
	"gorm.io/gorm"
)

// AssetFilters are the optional equality filters of the availability query.
type AssetFilters struct {
	City      string
	MediaType string
}

type AssetRepository interface {
	FindByID(ctx context.Context, tenantID string, id uint) (*models.Asset, error)
	FindByIDs(ctx context.Context, tenantID string, ids []uint) ([]models.Asset, error)
	ListByTenant(ctx context.Context, tenantID string, filters AssetFilters) ([]models.Asset, error)
	// Reserve is the conditional reservation write: it books the asset for
	// the campaign only when the asset is free for [from, to]. Free means
	// never booked, held by this same campaign already (a retry no-op), or
	// carrying a cached window that does not intersect the requested one;
	// the cache is never cleared when a window passes, so expiry is judged
	// here, not read from status. Returns false when another holder won.
	Reserve(ctx context.Context, assetID, campaignID uint, from, to time.Time) (bool, error)
	GetDB() *gorm.DB
}

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *assetRepository) FindByID(ctx context.Context, tenantID string, id uint) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&asset, id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) FindByIDs(ctx context.Context, tenantID string, ids []uint) ([]models.Asset, error) {
	var assets []models.Asset
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) ListByTenant(ctx context.Context, tenantID string, filters AssetFilters) ([]models.Asset, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filters.City != "" {
		q = q.Where("city = ?", filters.City)
	}
	if filters.MediaType != "" {
		q = q.Where("media_type = ?", filters.MediaType)
	}

	var assets []models.Asset
	if err := q.Order("id ASC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) Reserve(ctx context.Context, assetID, campaignID uint, from, to time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND status IN ? AND (status = ? OR active_campaign_id = ? OR booked_to < ? OR booked_from > ?)",
			assetID, []models.AssetStatus{models.AssetAvailable, models.AssetBooked},
			models.AssetAvailable, campaignID, from, to).
		Updates(map[string]any{
			"status":             models.AssetBooked,
			"booked_from":        from,
			"booked_to":          to,
			"active_campaign_id": campaignID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
