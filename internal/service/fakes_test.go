package service

import (
	"context"
	"sync"
	"time"

	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/repository"
	"gorm.io/gorm"
)

// memStore is a stateful in-memory stand-in for the postgres repositories,
// shared by the service tests. It is concurrency-safe so the race properties
// of the conversion workflow can be exercised without a database.
type memStore struct {
	mu sync.Mutex

	plans          map[uint]*models.Plan
	assets         map[uint]*models.Asset
	campaigns      map[uint]*models.Campaign
	campaignAssets map[uint]*models.CampaignAsset
	sequences      map[string]int

	nextPlanID          uint
	nextPlanItemID      uint
	nextCampaignID      uint
	nextCampaignAssetID uint

	// error injection, keyed by asset id; consumed on first use
	reserveErr     map[uint]error
	createAssetErr map[uint]error
}

func newMemStore() *memStore {
	return &memStore{
		plans:          make(map[uint]*models.Plan),
		assets:         make(map[uint]*models.Asset),
		campaigns:      make(map[uint]*models.Campaign),
		campaignAssets: make(map[uint]*models.CampaignAsset),
		sequences:      make(map[string]int),
		reserveErr:     make(map[uint]error),
		createAssetErr: make(map[uint]error),
	}
}

func (s *memStore) addAsset(a models.Asset) *models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := a
	s.assets[a.ID] = &stored
	return &stored
}

func (s *memStore) addPlan(p models.Plan) *models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPlanID++
	stored := p
	stored.ID = s.nextPlanID
	for i := range stored.Items {
		s.nextPlanItemID++
		stored.Items[i].ID = s.nextPlanItemID
		stored.Items[i].PlanID = stored.ID
	}
	s.plans[stored.ID] = &stored
	return &stored
}

func (s *memStore) addHold(ca models.CampaignAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCampaignAssetID++
	stored := ca
	stored.ID = s.nextCampaignAssetID
	s.campaignAssets[stored.ID] = &stored
}

func copyPlan(p *models.Plan) *models.Plan {
	out := *p
	out.Items = append([]models.PlanItem(nil), p.Items...)
	return &out
}

// --- PlanRepository ---

type fakePlanRepo struct{ s *memStore }

func (r *fakePlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	stored := r.s.addPlan(*copyPlan(plan))
	*plan = *copyPlan(stored)
	return nil
}

func (r *fakePlanRepo) FindByID(ctx context.Context, tenantID string, id uint) (*models.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok || p.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return copyPlan(p), nil
}

func (r *fakePlanRepo) ListByTenant(ctx context.Context, tenantID string, status *models.PlanStatus) ([]models.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Plan
	for _, p := range r.s.plans {
		if p.TenantID != tenantID {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		out = append(out, *copyPlan(p))
	}
	return out, nil
}

func (r *fakePlanRepo) UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.plans[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakePlanRepo) Finalize(ctx context.Context, id, campaignID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.CampaignID == nil || *p.CampaignID == campaignID {
		cid := campaignID
		p.Status = models.PlanConverted
		p.CampaignID = &cid
	}
	return nil
}

// --- AssetRepository ---

type fakeAssetRepo struct{ s *memStore }

func (r *fakeAssetRepo) FindByID(ctx context.Context, tenantID string, id uint) (*models.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assets[id]
	if !ok || a.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *a
	return &out, nil
}

func (r *fakeAssetRepo) FindByIDs(ctx context.Context, tenantID string, ids []uint) ([]models.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Asset
	for _, id := range ids {
		if a, ok := r.s.assets[id]; ok && a.TenantID == tenantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ListByTenant(ctx context.Context, tenantID string, filters repository.AssetFilters) ([]models.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Asset
	for _, a := range r.s.assets {
		if a.TenantID != tenantID {
			continue
		}
		if filters.City != "" && a.City != filters.City {
			continue
		}
		if filters.MediaType != "" && string(a.MediaType) != filters.MediaType {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAssetRepo) Reserve(ctx context.Context, assetID, campaignID uint, from, to time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err, ok := r.s.reserveErr[assetID]; ok {
		delete(r.s.reserveErr, assetID)
		return false, err
	}
	a, ok := r.s.assets[assetID]
	if !ok {
		return false, nil
	}
	if a.Status != models.AssetAvailable && a.Status != models.AssetBooked {
		return false, nil
	}
	mine := a.ActiveCampaignID != nil && *a.ActiveCampaignID == campaignID
	// A cached window that does not intersect the requested one counts as
	// free: expiry is never written back to the row.
	windowFree := a.BookedTo != nil && a.BookedFrom != nil &&
		(a.BookedTo.Before(from) || a.BookedFrom.After(to))
	if a.Status != models.AssetAvailable && !mine && !windowFree {
		return false, nil
	}
	cid := campaignID
	f, t := from, to
	a.Status = models.AssetBooked
	a.BookedFrom = &f
	a.BookedTo = &t
	a.ActiveCampaignID = &cid
	return true, nil
}

func (r *fakeAssetRepo) GetDB() *gorm.DB { return nil }

// --- CampaignRepository ---

type fakeCampaignRepo struct{ s *memStore }

func (r *fakeCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextCampaignID++
	stored := *campaign
	stored.ID = r.s.nextCampaignID
	r.s.campaigns[stored.ID] = &stored
	campaign.ID = stored.ID
	return nil
}

func (r *fakeCampaignRepo) campaignWithAssets(c *models.Campaign) *models.Campaign {
	out := *c
	out.Assets = nil
	for _, ca := range r.s.campaignAssets {
		if ca.CampaignID == c.ID {
			out.Assets = append(out.Assets, *ca)
		}
	}
	return &out
}

func (r *fakeCampaignRepo) FindByID(ctx context.Context, tenantID string, id uint) (*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok || c.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.campaignWithAssets(c), nil
}

func (r *fakeCampaignRepo) FindBySourcePlan(ctx context.Context, tenantID string, planID uint) (*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.campaigns {
		if c.TenantID == tenantID && c.SourcePlanID == planID {
			return r.campaignWithAssets(c), nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) ListByTenant(ctx context.Context, tenantID string, status *models.CampaignStatus) ([]models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Campaign
	for _, c := range r.s.campaigns {
		if c.TenantID != tenantID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCampaignRepo) UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.campaigns[id]; ok {
		c.Status = status
	}
	return nil
}

func (r *fakeCampaignRepo) CreateAsset(ctx context.Context, ca *models.CampaignAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err, ok := r.s.createAssetErr[ca.AssetID]; ok {
		delete(r.s.createAssetErr, ca.AssetID)
		return err
	}
	r.s.nextCampaignAssetID++
	stored := *ca
	stored.ID = r.s.nextCampaignAssetID
	r.s.campaignAssets[stored.ID] = &stored
	ca.ID = stored.ID
	return nil
}

func (r *fakeCampaignRepo) FindAsset(ctx context.Context, campaignID, assetID uint) (*models.CampaignAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ca := range r.s.campaignAssets {
		if ca.CampaignID == campaignID && ca.AssetID == assetID {
			out := *ca
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCampaignRepo) UpdateAssetStatus(ctx context.Context, campaignAssetID uint, status models.CampaignAssetStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ca, ok := r.s.campaignAssets[campaignAssetID]; ok {
		ca.Status = status
	}
	return nil
}

func (r *fakeCampaignRepo) FindActiveHolds(ctx context.Context, assetIDs []uint, from, to time.Time) ([]models.CampaignAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uint]bool, len(assetIDs))
	for _, id := range assetIDs {
		wanted[id] = true
	}
	var out []models.CampaignAsset
	for _, ca := range r.s.campaignAssets {
		if !wanted[ca.AssetID] || ca.ReleasedAt != nil {
			continue
		}
		if ca.StartDate.After(to) || ca.EndDate.Before(from) {
			continue
		}
		out = append(out, *ca)
	}
	return out, nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// --- SequenceRepository ---

type fakeSequenceRepo struct{ s *memStore }

func (r *fakeSequenceRepo) Next(ctx context.Context, tenantID, kind string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := tenantID + "/" + kind
	r.s.sequences[key]++
	return r.s.sequences[key], nil
}
