package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/oohgrid/reservation-service/internal/availability"
	"github.com/oohgrid/reservation-service/internal/locks"
	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/repository"
	"gorm.io/gorm"
)

// Step names a stage of the conversion saga. Progress is reported as an
// explicit value, never inferred from side effects.
type Step string

const (
	StepLoadPlan       Step = "load_plan"
	StepValidate       Step = "validate_availability"
	StepAllocateNumber Step = "allocate_number"
	StepCreateCampaign Step = "create_campaign"
	StepCreateAssets   Step = "create_campaign_assets"
	StepReserveAssets  Step = "reserve_assets"
	StepFinalizePlan   Step = "finalize_plan"
)

const sequenceKindCampaign = "campaign"

// EventPublisher is the outbound half of the messaging layer; downstream
// billing/operations consume what it emits.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type ConvertInput struct {
	PlanID       uint
	CampaignName string
	// StartDate/EndDate override every line item's window when set.
	StartDate *time.Time
	EndDate   *time.Time
	Notes     string
}

type ConversionResult struct {
	Campaign         *models.Campaign
	AlreadyConverted bool
	Warnings         []string
}

type ConversionService interface {
	Convert(ctx context.Context, tenantID string, in ConvertInput) (*ConversionResult, error)
}

type conversionService struct {
	planRepo     repository.PlanRepository
	assetRepo    repository.AssetRepository
	campaignRepo repository.CampaignRepository
	seqRepo      repository.SequenceRepository
	locker       *locks.AssetLocker
	publisher    EventPublisher
}

func NewConversionService(
	planRepo repository.PlanRepository,
	assetRepo repository.AssetRepository,
	campaignRepo repository.CampaignRepository,
	seqRepo repository.SequenceRepository,
	locker *locks.AssetLocker,
	publisher EventPublisher,
) ConversionService {
	return &conversionService{
		planRepo:     planRepo,
		assetRepo:    assetRepo,
		campaignRepo: campaignRepo,
		seqRepo:      seqRepo,
		locker:       locker,
		publisher:    publisher,
	}
}

// itemWindow is one line item with its resolved reservation window.
type itemWindow struct {
	item models.PlanItem
	from time.Time
	to   time.Time
}

// Convert runs the plan→campaign saga. The call is idempotent end to end: a
// converted plan returns its existing campaign, and a retry after a partial
// failure resumes with the same campaign, skipping work already done.
func (s *conversionService) Convert(ctx context.Context, tenantID string, in ConvertInput) (*ConversionResult, error) {
	// 1. Load plan + items, tenant-scoped.
	plan, err := s.planRepo.FindByID(ctx, tenantID, in.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}

	// Idempotency guard: a converted plan maps to exactly one campaign.
	if plan.Status == models.PlanConverted {
		if plan.CampaignID == nil {
			return nil, fmt.Errorf("plan %d is converted but has no campaign reference", plan.ID)
		}
		campaign, err := s.campaignRepo.FindByID(ctx, tenantID, *plan.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("load campaign for converted plan %d: %w", plan.ID, err)
		}
		return &ConversionResult{Campaign: campaign, AlreadyConverted: true}, nil
	}

	if plan.Status == models.PlanRejected {
		return nil, ErrPlanRejected
	}
	if len(plan.Items) == 0 {
		return nil, ErrPlanEmpty
	}

	var warnings []string
	if plan.Status != models.PlanApproved {
		warnings = append(warnings,
			fmt.Sprintf("plan %d is %q, not approved; converting anyway", plan.ID, plan.Status))
	}

	// 2. Resolve per-item windows; a request-level override applies to all.
	items, err := resolveWindows(plan.Items, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	assetIDs := make([]uint, len(items))
	for i, it := range items {
		assetIDs[i] = it.item.AssetID
	}

	// 3. Hold every asset from the re-check through the reservation writes.
	release, err := s.locker.Acquire(ctx, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("acquire asset locks: %w", err)
	}
	defer release()

	// 4. A campaign may already exist from a previously-failed run; its own
	// holds must not count against the re-check, and its number is reused.
	existing, err := s.campaignRepo.FindBySourcePlan(ctx, tenantID, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("look up existing campaign: %w", err)
	}

	assets, err := s.loadAssets(ctx, tenantID, assetIDs)
	if err != nil {
		return nil, err
	}

	// 5. Re-validate availability against current persisted state.
	if err := s.revalidate(ctx, items, assets, existing); err != nil {
		return nil, err
	}

	// 6–7. Allocate identity and create the campaign. Nothing visible exists
	// until the campaign row does, so failures up to here are clean aborts
	// (a burned sequence number is acceptable, a duplicate is not).
	campaign := existing
	if campaign == nil {
		number, err := s.seqRepo.Next(ctx, tenantID, sequenceKindCampaign)
		if err != nil {
			return nil, fmt.Errorf("allocate campaign number: %w", err)
		}
		campaign, err = s.createCampaign(ctx, tenantID, plan, in, items, number)
		if err != nil {
			return nil, fmt.Errorf("create campaign: %w", err)
		}
	}

	// 8. Campaign-asset snapshots, one per reserved asset. From here on a
	// failure is a PartialFailure: the campaign exists and under-reserves.
	if err := s.createCampaignAssets(ctx, campaign, items, assets); err != nil {
		return nil, &PartialFailureError{
			PlanID:          plan.ID,
			CampaignID:      campaign.ID,
			CompletedStep:   StepCreateCampaign,
			PendingAssetIDs: assetIDs,
			Err:             err,
		}
	}

	// 9. Reserve each asset with a conditional write, re-checking at the row
	// ("free, or already mine") so a race lost between re-check and write
	// aborts instead of double-booking.
	if pending, err := s.reserveAssets(ctx, campaign.ID, items); len(pending) > 0 {
		return nil, &PartialFailureError{
			PlanID:          plan.ID,
			CampaignID:      campaign.ID,
			CompletedStep:   StepCreateAssets,
			PendingAssetIDs: pending,
			Err:             err,
		}
	}

	// 10. Terminal plan state.
	if err := s.planRepo.Finalize(ctx, plan.ID, campaign.ID); err != nil {
		return nil, &PartialFailureError{
			PlanID:        plan.ID,
			CampaignID:    campaign.ID,
			CompletedStep: StepReserveAssets,
			Err:           fmt.Errorf("finalize plan: %w", err),
		}
	}

	full, err := s.campaignRepo.FindByID(ctx, tenantID, campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("reload campaign %d: %w", campaign.ID, err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("campaign.converted", full); err != nil {
			log.Printf("[Conversion] publish campaign.converted for %d: %v", full.ID, err)
		}
	}

	return &ConversionResult{Campaign: full, Warnings: warnings}, nil
}

func resolveWindows(planItems []models.PlanItem, start, end *time.Time) ([]itemWindow, error) {
	if (start == nil) != (end == nil) {
		return nil, fmt.Errorf("%w: start_date and end_date must be overridden together", ErrInvalidWindow)
	}

	items := make([]itemWindow, len(planItems))
	for i, it := range planItems {
		w := itemWindow{item: it, from: it.StartDate, to: it.EndDate}
		if start != nil {
			w.from, w.to = *start, *end
		}
		if w.from.After(w.to) {
			return nil, ErrInvalidWindow
		}
		items[i] = w
	}

	// Reservation writes run in lock order.
	sort.Slice(items, func(i, j int) bool { return items[i].item.AssetID < items[j].item.AssetID })
	return items, nil
}

func (s *conversionService) loadAssets(ctx context.Context, tenantID string, ids []uint) (map[uint]models.Asset, error) {
	found, err := s.assetRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	assets := make(map[uint]models.Asset, len(found))
	for _, a := range found {
		assets[a.ID] = a
	}
	for _, id := range ids {
		if _, ok := assets[id]; !ok {
			return nil, fmt.Errorf("%w: asset %d", ErrAssetNotFound, id)
		}
	}
	return assets, nil
}

// revalidate re-runs the overlap evaluator against current persisted state
// for every line item. Any booked or conflicted asset aborts the whole
// conversion before a single write; conflict is treated as worse than booked
// and never converts.
func (s *conversionService) revalidate(ctx context.Context, items []itemWindow, assets map[uint]models.Asset, own *models.Campaign) error {
	var ownID uint
	if own != nil {
		ownID = own.ID
	}

	from, to := items[0].from, items[0].to
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.item.AssetID
		if it.from.Before(from) {
			from = it.from
		}
		if it.to.After(to) {
			to = it.to
		}
	}

	holds, err := s.campaignRepo.FindActiveHolds(ctx, ids, from, to)
	if err != nil {
		return fmt.Errorf("load reservation windows: %w", err)
	}
	windows := make(map[uint][]availability.Window)
	for _, h := range holds {
		if h.CampaignID == ownID {
			continue
		}
		windows[h.AssetID] = append(windows[h.AssetID], availability.Window{
			CampaignID: h.CampaignID,
			From:       h.StartDate,
			To:         h.EndDate,
		})
	}

	var conflicts []ResourceConflict
	for _, it := range items {
		asset := assets[it.item.AssetID]

		if asset.Status == models.AssetBlocked || asset.Status == models.AssetMaintenance {
			conflicts = append(conflicts, ResourceConflict{
				AssetID:   asset.ID,
				AssetCode: asset.Code,
				Reason:    string(asset.Status),
			})
			continue
		}

		res := availability.Classify(windows[asset.ID], it.from, it.to)
		if res.Class == availability.ClassBooked || res.Class == availability.ClassConflict {
			rc := ResourceConflict{
				AssetID:   asset.ID,
				AssetCode: asset.Code,
				Reason:    string(res.Class),
				Windows:   res.Windows,
			}
			for _, w := range res.Windows {
				rc.HeldBy = append(rc.HeldBy, w.CampaignID)
			}
			conflicts = append(conflicts, rc)
		}
	}

	if len(conflicts) > 0 {
		return &ConflictError{Resources: conflicts}
	}
	return nil
}

func (s *conversionService) createCampaign(ctx context.Context, tenantID string, plan *models.Plan, in ConvertInput, items []itemWindow, number int) (*models.Campaign, error) {
	start, end := items[0].from, items[0].to
	var total float64
	for _, it := range items {
		if it.from.Before(start) {
			start = it.from
		}
		if it.to.After(end) {
			end = it.to
		}
		total += it.item.Price
	}

	name := in.CampaignName
	if name == "" {
		name = plan.Name
	}

	campaign := &models.Campaign{
		TenantID:     tenantID,
		Number:       number,
		PublicID:     uuid.NewString(),
		SourcePlanID: plan.ID,
		Name:         name,
		Status:       models.CampaignPlanned,
		StartDate:    start,
		EndDate:      end,
		TotalPrice:   total,
		Notes:        in.Notes,
	}
	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// createCampaignAssets snapshots each line item's asset attributes and price.
// Rows already present from an earlier run are kept, not duplicated.
func (s *conversionService) createCampaignAssets(ctx context.Context, campaign *models.Campaign, items []itemWindow, assets map[uint]models.Asset) error {
	for _, it := range items {
		_, err := s.campaignRepo.FindAsset(ctx, campaign.ID, it.item.AssetID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check campaign asset %d: %w", it.item.AssetID, err)
		}

		asset := assets[it.item.AssetID]
		ca := &models.CampaignAsset{
			CampaignID: campaign.ID,
			AssetID:    asset.ID,
			AssetCode:  asset.Code,
			City:       asset.City,
			MediaType:  asset.MediaType,
			FaceSqft:   asset.FaceSqft,
			Price:      it.item.Price,
			StartDate:  it.from,
			EndDate:    it.to,
			Status:     models.CampaignAssetPending,
		}
		if err := s.campaignRepo.CreateAsset(ctx, ca); err != nil {
			return fmt.Errorf("create campaign asset %d: %w", asset.ID, err)
		}
	}
	return nil
}

// reserveAssets performs the per-asset booking writes. Each write is
// conditional and idempotent; every asset that could not be reserved is
// returned so a retry can be limited to exactly those.
func (s *conversionService) reserveAssets(ctx context.Context, campaignID uint, items []itemWindow) ([]uint, error) {
	var pending []uint
	var firstErr error
	for _, it := range items {
		ok, err := s.assetRepo.Reserve(ctx, it.item.AssetID, campaignID, it.from, it.to)
		if err != nil {
			pending = append(pending, it.item.AssetID)
			if firstErr == nil {
				firstErr = fmt.Errorf("reserve asset %d: %w", it.item.AssetID, err)
			}
			continue
		}
		if !ok {
			pending = append(pending, it.item.AssetID)
			if firstErr == nil {
				firstErr = fmt.Errorf("asset %d was taken by a concurrent conversion", it.item.AssetID)
			}
		}
	}
	return pending, firstErr
}
