package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oohgrid/reservation-service/internal/availability"
	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/repository"
)

// AssetAvailability pairs one asset with its classification for the queried
// window.
type AssetAvailability struct {
	Asset  models.Asset
	Result availability.Result
}

type AvailabilitySummary struct {
	TotalAssets        int
	AvailableCount     int
	AvailableSoonCount int
	BookedCount        int
	ConflictCount      int
	PotentialRevenue   float64
	TotalSqftAvailable float64
}

type AvailabilityReport struct {
	Available     []AssetAvailability
	AvailableSoon []AssetAvailability
	Booked        []AssetAvailability
	Conflicts     []AssetAvailability
	Summary       AvailabilitySummary
}

type AvailabilityService interface {
	Query(ctx context.Context, tenantID string, qs, qe time.Time, filters repository.AssetFilters) (*AvailabilityReport, error)
}

type availabilityService struct {
	assetRepo    repository.AssetRepository
	campaignRepo repository.CampaignRepository
}

func NewAvailabilityService(assetRepo repository.AssetRepository, campaignRepo repository.CampaignRepository) AvailabilityService {
	return &availabilityService{assetRepo: assetRepo, campaignRepo: campaignRepo}
}

// Query is read-only and takes no locks: the report is a point-in-time
// snapshot and callers must not assume it survives a concurrent conversion.
func (s *availabilityService) Query(ctx context.Context, tenantID string, qs, qe time.Time, filters repository.AssetFilters) (*AvailabilityReport, error) {
	if qs.After(qe) {
		return nil, ErrInvalidWindow
	}

	assets, err := s.assetRepo.ListByTenant(ctx, tenantID, filters)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	// Blocked and maintenance faces are not sellable inventory; they are
	// excluded from the report rather than shown as available.
	sellable := assets[:0:0]
	ids := make([]uint, 0, len(assets))
	for _, a := range assets {
		if a.Status == models.AssetBlocked || a.Status == models.AssetMaintenance {
			continue
		}
		sellable = append(sellable, a)
		ids = append(ids, a.ID)
	}

	windows, err := s.activeWindows(ctx, ids, qs, qe)
	if err != nil {
		return nil, err
	}

	report := &AvailabilityReport{}
	days := float64(availability.Days(qs, qe))

	for _, asset := range sellable {
		entry := AssetAvailability{
			Asset:  asset,
			Result: availability.Classify(windows[asset.ID], qs, qe),
		}

		switch entry.Result.Class {
		case availability.ClassAvailable:
			report.Available = append(report.Available, entry)
			// An available face has no intersecting window, so it is
			// sellable for every queried day at its daily rate.
			report.Summary.PotentialRevenue += asset.DailyRate * days
			report.Summary.TotalSqftAvailable += asset.FaceSqft
		case availability.ClassAvailableSoon:
			report.AvailableSoon = append(report.AvailableSoon, entry)
		case availability.ClassBooked:
			report.Booked = append(report.Booked, entry)
		case availability.ClassConflict:
			report.Conflicts = append(report.Conflicts, entry)
		}
	}

	report.Summary.TotalAssets = len(sellable)
	report.Summary.AvailableCount = len(report.Available)
	report.Summary.AvailableSoonCount = len(report.AvailableSoon)
	report.Summary.BookedCount = len(report.Booked)
	report.Summary.ConflictCount = len(report.Conflicts)
	return report, nil
}

// activeWindows bulk-loads the unreleased reservation rows intersecting
// [qs,qe] and groups them per asset. The hold rows are the authoritative
// window source; the asset's cached booking window is a lookup copy of one
// of them.
func (s *availabilityService) activeWindows(ctx context.Context, assetIDs []uint, qs, qe time.Time) (map[uint][]availability.Window, error) {
	holds, err := s.campaignRepo.FindActiveHolds(ctx, assetIDs, qs, qe)
	if err != nil {
		return nil, fmt.Errorf("load reservation windows: %w", err)
	}

	windows := make(map[uint][]availability.Window, len(assetIDs))
	for _, h := range holds {
		windows[h.AssetID] = append(windows[h.AssetID], availability.Window{
			CampaignID: h.CampaignID,
			From:       h.StartDate,
			To:         h.EndDate,
		})
	}
	return windows, nil
}
