package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/repository"
	"gorm.io/gorm"
)

// CampaignService serves the operational record store: reads, plus the
// forward-only status advances used by field-installation tracking. The
// operational statuses are deliberately decoupled from asset booking state.
type CampaignService interface {
	GetCampaign(ctx context.Context, tenantID string, id uint) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, tenantID string, status *models.CampaignStatus) ([]models.Campaign, error)
	UpdateStatus(ctx context.Context, tenantID string, id uint, status models.CampaignStatus) (*models.Campaign, error)
	UpdateAssetStatus(ctx context.Context, tenantID string, campaignID, assetID uint, status models.CampaignAssetStatus) (*models.CampaignAsset, error)
}

type campaignService struct {
	campaignRepo repository.CampaignRepository
}

func NewCampaignService(campaignRepo repository.CampaignRepository) CampaignService {
	return &campaignService{campaignRepo: campaignRepo}
}

func (s *campaignService) GetCampaign(ctx context.Context, tenantID string, id uint) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return campaign, nil
}

func (s *campaignService) ListCampaigns(ctx context.Context, tenantID string, status *models.CampaignStatus) ([]models.Campaign, error) {
	return s.campaignRepo.ListByTenant(ctx, tenantID, status)
}

func (s *campaignService) UpdateStatus(ctx context.Context, tenantID string, id uint, status models.CampaignStatus) (*models.Campaign, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	campaign, err := s.GetCampaign(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !campaign.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, campaign.Status, status)
	}

	if err := s.campaignRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update campaign status: %w", err)
	}
	campaign.Status = status
	return campaign, nil
}

func (s *campaignService) UpdateAssetStatus(ctx context.Context, tenantID string, campaignID, assetID uint, status models.CampaignAssetStatus) (*models.CampaignAsset, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	// Tenant scoping comes from the campaign lookup.
	if _, err := s.GetCampaign(ctx, tenantID, campaignID); err != nil {
		return nil, err
	}

	ca, err := s.campaignRepo.FindAsset(ctx, campaignID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignAssetNotFound
		}
		return nil, err
	}
	if !ca.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ca.Status, status)
	}

	if err := s.campaignRepo.UpdateAssetStatus(ctx, ca.ID, status); err != nil {
		return nil, fmt.Errorf("update campaign asset status: %w", err)
	}
	ca.Status = status
	return ca, nil
}
