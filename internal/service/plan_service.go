package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/repository"
	"gorm.io/gorm"
)

type PlanItemInput struct {
	AssetID   uint
	StartDate time.Time
	EndDate   time.Time
	Price     float64
}

type CreatePlanInput struct {
	Name       string
	ClientName string
	Notes      string
	Items      []PlanItemInput
}

type PlanService interface {
	CreatePlan(ctx context.Context, tenantID string, in CreatePlanInput) (*models.Plan, error)
	GetPlan(ctx context.Context, tenantID string, id uint) (*models.Plan, error)
	ListPlans(ctx context.Context, tenantID string, status *models.PlanStatus) ([]models.Plan, error)
	UpdateStatus(ctx context.Context, tenantID string, id uint, status models.PlanStatus) (*models.Plan, error)
}

type planService struct {
	planRepo  repository.PlanRepository
	assetRepo repository.AssetRepository
}

func NewPlanService(planRepo repository.PlanRepository, assetRepo repository.AssetRepository) PlanService {
	return &planService{planRepo: planRepo, assetRepo: assetRepo}
}

func (s *planService) CreatePlan(ctx context.Context, tenantID string, in CreatePlanInput) (*models.Plan, error) {
	if in.Name == "" {
		return nil, errors.New("plan name is required")
	}
	if len(in.Items) == 0 {
		return nil, ErrPlanEmpty
	}

	ids := make([]uint, len(in.Items))
	for i, it := range in.Items {
		if it.StartDate.After(it.EndDate) {
			return nil, ErrInvalidWindow
		}
		ids[i] = it.AssetID
	}

	// Every quoted asset must exist in this tenant's inventory.
	assets, err := s.assetRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	known := make(map[uint]bool, len(assets))
	for _, a := range assets {
		known[a.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("%w: asset %d", ErrAssetNotFound, id)
		}
	}

	plan := &models.Plan{
		TenantID:   tenantID,
		Name:       in.Name,
		ClientName: in.ClientName,
		Notes:      in.Notes,
		Status:     models.PlanDraft,
	}
	for _, it := range in.Items {
		plan.Items = append(plan.Items, models.PlanItem{
			AssetID:   it.AssetID,
			StartDate: it.StartDate,
			EndDate:   it.EndDate,
			Price:     it.Price,
		})
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return plan, nil
}

func (s *planService) GetPlan(ctx context.Context, tenantID string, id uint) (*models.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, tenantID string, status *models.PlanStatus) ([]models.Plan, error) {
	return s.planRepo.ListByTenant(ctx, tenantID, status)
}

func (s *planService) UpdateStatus(ctx context.Context, tenantID string, id uint, status models.PlanStatus) (*models.Plan, error) {
	if !status.Valid() || status == models.PlanConverted {
		// Converted is only ever set by the conversion workflow.
		return nil, ErrInvalidStatus
	}

	plan, err := s.GetPlan(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if plan.Status == models.PlanConverted {
		return nil, ErrPlanImmutable
	}
	if !plan.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, plan.Status, status)
	}

	if err := s.planRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update plan status: %w", err)
	}
	plan.Status = status
	return plan, nil
}
