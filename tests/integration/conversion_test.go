//go:build integration

package integration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oohgrid/reservation-service/internal/locks"
	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/repository"
	"github.com/oohgrid/reservation-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "tenant-int"

var assetIDCounter uint = 0

func nextAssetID() uint {
	assetIDCounter++
	return assetIDCounter
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func createTestAsset(t *testing.T, code string, rate float64) *models.Asset {
	t.Helper()
	asset := &models.Asset{
		ID:        nextAssetID(),
		TenantID:  tenant,
		Code:      code,
		City:      "Austin",
		MediaType: models.MediaStatic,
		FaceSqft:  672,
		DailyRate: rate,
		Status:    models.AssetAvailable,
	}
	require.NoError(t, testDB.Create(asset).Error)
	return asset
}

func createTestPlan(t *testing.T, status models.PlanStatus, items ...models.PlanItem) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		TenantID:   tenant,
		Name:       "Q2 push",
		ClientName: "Acme Beverages",
		Status:     status,
		Items:      items,
	}
	require.NoError(t, testDB.Create(plan).Error)
	return plan
}

func planItem(assetID uint, from, to string, price float64) models.PlanItem {
	return models.PlanItem{AssetID: assetID, StartDate: day(from), EndDate: day(to), Price: price}
}

func newConversionService() service.ConversionService {
	return service.NewConversionService(
		repository.NewPlanRepository(testDB),
		repository.NewAssetRepository(testDB),
		repository.NewCampaignRepository(testDB),
		repository.NewSequenceRepository(testDB),
		locks.NewAssetLocker(),
		nil,
	)
}

func TestConvertPlan_FullFlow(t *testing.T) {
	cleanTables()
	a1 := createTestAsset(t, "BB-001", 100)
	a2 := createTestAsset(t, "BB-002", 80)
	plan := createTestPlan(t, models.PlanApproved,
		planItem(a1.ID, "2024-04-01", "2024-04-30", 3000),
		planItem(a2.ID, "2024-04-01", "2024-05-15", 3600),
	)
	svc := newConversionService()

	result, err := svc.Convert(t.Context(), tenant, service.ConvertInput{
		PlanID:       plan.ID,
		CampaignName: "spring-launch",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Campaign)
	assert.False(t, result.AlreadyConverted)
	assert.Empty(t, result.Warnings)

	campaign := result.Campaign
	assert.Equal(t, 1, campaign.Number)
	assert.NotEmpty(t, campaign.PublicID)
	assert.Equal(t, plan.ID, campaign.SourcePlanID)
	assert.True(t, campaign.StartDate.Equal(day("2024-04-01")), "campaign start should be the earliest item start")
	assert.True(t, campaign.EndDate.Equal(day("2024-05-15")), "campaign end should be the latest item end")
	assert.InDelta(t, 6600.0, campaign.TotalPrice, 0.001)
	require.Len(t, campaign.Assets, 2)

	// Assets now carry the booking window and campaign reference.
	var reloaded models.Asset
	require.NoError(t, testDB.First(&reloaded, a1.ID).Error)
	assert.Equal(t, models.AssetBooked, reloaded.Status)
	require.NotNil(t, reloaded.ActiveCampaignID)
	assert.Equal(t, campaign.ID, *reloaded.ActiveCampaignID)

	// Plan is terminal and back-references the campaign.
	var reloadedPlan models.Plan
	require.NoError(t, testDB.First(&reloadedPlan, plan.ID).Error)
	assert.Equal(t, models.PlanConverted, reloadedPlan.Status)
	require.NotNil(t, reloadedPlan.CampaignID)
	assert.Equal(t, campaign.ID, *reloadedPlan.CampaignID)
}

func TestConvertPlan_Idempotent(t *testing.T) {
	cleanTables()
	a1 := createTestAsset(t, "BB-001", 100)
	plan := createTestPlan(t, models.PlanApproved,
		planItem(a1.ID, "2024-04-01", "2024-04-30", 3000),
	)
	svc := newConversionService()

	first, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: plan.ID})
	require.NoError(t, err)

	second, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: plan.ID})
	require.NoError(t, err)
	assert.True(t, second.AlreadyConverted)
	assert.Equal(t, first.Campaign.ID, second.Campaign.ID)

	var count int64
	testDB.Model(&models.Campaign{}).Where("source_plan_id = ?", plan.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestConvertPlan_ConflictWithExistingHold(t *testing.T) {
	cleanTables()
	a1 := createTestAsset(t, "BB-001", 100)
	blocker := createTestPlan(t, models.PlanApproved,
		planItem(a1.ID, "2024-04-01", "2024-04-30", 3000),
	)
	svc := newConversionService()

	_, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: blocker.ID})
	require.NoError(t, err)

	// Second plan wants the same asset over an overlapping window.
	contender := createTestPlan(t, models.PlanApproved,
		planItem(a1.ID, "2024-04-15", "2024-05-15", 3100),
	)

	_, err = svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: contender.ID})
	var conflictErr *service.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Resources, 1)
	assert.Equal(t, a1.ID, conflictErr.Resources[0].AssetID)

	// The losing conversion must leave nothing behind.
	var count int64
	testDB.Model(&models.Campaign{}).Where("source_plan_id = ?", contender.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	var reloadedPlan models.Plan
	require.NoError(t, testDB.First(&reloadedPlan, contender.ID).Error)
	assert.Equal(t, models.PlanApproved, reloadedPlan.Status)
}

func TestConvertPlan_NonOverlappingWindowsCoexist(t *testing.T) {
	cleanTables()
	a1 := createTestAsset(t, "BB-001", 100)
	first := createTestPlan(t, models.PlanApproved,
		planItem(a1.ID, "2024-04-01", "2024-04-30", 3000),
	)
	second := createTestPlan(t, models.PlanApproved,
		planItem(a1.ID, "2024-06-01", "2024-06-30", 3000),
	)
	svc := newConversionService()

	_, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: first.ID})
	require.NoError(t, err)

	// Disjoint window on the same asset converts cleanly. The asset row's
	// cached status says booked, but the hold rows are what decide.
	result, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: second.ID})
	require.NoError(t, err)
	require.NotNil(t, result.Campaign)

	var holds int64
	testDB.Model(&models.CampaignAsset{}).
		Where("asset_id = ? AND released_at IS NULL", a1.ID).Count(&holds)
	assert.Equal(t, int64(2), holds)
}

// Two plans race for the same asset over the same window. Exactly one
// conversion wins; the loser aborts without leaving a campaign behind.
func TestConcurrentConversion_OneWinner(t *testing.T) {
	cleanTables()
	a1 := createTestAsset(t, "BB-001", 100)

	plans := make([]*models.Plan, 2)
	for i := range plans {
		plans[i] = createTestPlan(t, models.PlanApproved,
			planItem(a1.ID, "2024-04-01", "2024-04-30", 3000),
		)
	}
	svc := newConversionService()

	var wg sync.WaitGroup
	errs := make([]error, len(plans))
	wg.Add(len(plans))
	for i, p := range plans {
		go func(idx int, planID uint) {
			defer wg.Done()
			_, errs[idx] = svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: planID})
		}(i, p.ID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		var conflictErr *service.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		lost++
	}
	assert.Equal(t, 1, won, "exactly one conversion should win the asset")
	assert.Equal(t, 1, lost)

	var campaigns int64
	testDB.Model(&models.Campaign{}).Count(&campaigns)
	assert.Equal(t, int64(1), campaigns)
}

func TestConvertPlan_SequenceIsPerTenant(t *testing.T) {
	cleanTables()
	svc := newConversionService()

	for i := 0; i < 3; i++ {
		asset := createTestAsset(t, fmt.Sprintf("BB-%03d", i+1), 100)
		plan := createTestPlan(t, models.PlanApproved,
			planItem(asset.ID, "2024-04-01", "2024-04-30", 3000),
		)
		result, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: plan.ID})
		require.NoError(t, err)
		assert.Equal(t, i+1, result.Campaign.Number)
	}

	// A different tenant starts over at 1.
	other := &models.Asset{
		ID: nextAssetID(), TenantID: "tenant-two", Code: "ZZ-001", City: "Dallas",
		MediaType: models.MediaStatic, FaceSqft: 300, DailyRate: 50,
		Status: models.AssetAvailable,
	}
	require.NoError(t, testDB.Create(other).Error)
	otherPlan := &models.Plan{
		TenantID: "tenant-two", Name: "p", Status: models.PlanApproved,
		Items: []models.PlanItem{planItem(other.ID, "2024-04-01", "2024-04-30", 1000)},
	}
	require.NoError(t, testDB.Create(otherPlan).Error)

	result, err := svc.Convert(t.Context(), "tenant-two", service.ConvertInput{PlanID: otherPlan.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Campaign.Number)
}

// An asset whose only reservation window has fully passed still carries
// status=booked and the old campaign reference; a fresh conversion over a
// later window must book it anyway. Expiry is never written back to the row.
func TestConvertPlan_RebooksExpiredWindow(t *testing.T) {
	cleanTables()
	asset := createTestAsset(t, "BB-001", 100)
	past := createTestPlan(t, models.PlanApproved,
		planItem(asset.ID, "2024-03-01", "2024-03-31", 3000),
	)
	svc := newConversionService()

	first, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: past.ID})
	require.NoError(t, err)

	// The row now says booked by the first campaign and nothing clears it.
	var stale models.Asset
	require.NoError(t, testDB.First(&stale, asset.ID).Error)
	require.Equal(t, models.AssetBooked, stale.Status)

	// Booking from the first free day after the old window.
	next := createTestPlan(t, models.PlanApproved,
		planItem(asset.ID, "2024-04-01", "2024-04-15", 1500),
	)
	result, err := svc.Convert(t.Context(), tenant, service.ConvertInput{PlanID: next.ID})
	require.NoError(t, err)
	require.NotNil(t, result.Campaign)
	assert.NotEqual(t, first.Campaign.ID, result.Campaign.ID)

	var rebooked models.Asset
	require.NoError(t, testDB.First(&rebooked, asset.ID).Error)
	require.NotNil(t, rebooked.ActiveCampaignID)
	assert.Equal(t, result.Campaign.ID, *rebooked.ActiveCampaignID)
	assert.True(t, rebooked.BookedFrom.Equal(day("2024-04-01")))

	var reloadedPlan models.Plan
	require.NoError(t, testDB.First(&reloadedPlan, next.ID).Error)
	assert.Equal(t, models.PlanConverted, reloadedPlan.Status)
}
