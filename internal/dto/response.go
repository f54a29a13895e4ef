package dto

import (
	"time"

	"github.com/oohgrid/reservation-service/internal/availability"
	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/service"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// --- Availability ---

type ReservationWindow struct {
	CampaignID uint   `json:"campaign_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type AssetAvailabilityResponse struct {
	AssetID       uint                `json:"asset_id"`
	Code          string              `json:"code"`
	City          string              `json:"city"`
	MediaType     models.MediaType    `json:"media_type"`
	FaceSqft      float64             `json:"face_sqft"`
	DailyRate     float64             `json:"daily_rate"`
	AvailableFrom string              `json:"available_from,omitempty"`
	Windows       []ReservationWindow `json:"windows,omitempty"`
}

type AvailabilitySummaryResponse struct {
	TotalAssets        int     `json:"total_assets"`
	AvailableCount     int     `json:"available_count"`
	AvailableSoonCount int     `json:"available_soon_count"`
	BookedCount        int     `json:"booked_count"`
	ConflictCount      int     `json:"conflict_count"`
	PotentialRevenue   float64 `json:"potential_revenue"`
	TotalSqftAvailable float64 `json:"total_sqft_available"`
}

type AvailabilityResponse struct {
	Available     []AssetAvailabilityResponse `json:"available"`
	AvailableSoon []AssetAvailabilityResponse `json:"available_soon"`
	Booked        []AssetAvailabilityResponse `json:"booked"`
	Conflicts     []AssetAvailabilityResponse `json:"conflicts"`
	Summary       AvailabilitySummaryResponse `json:"summary"`
}

func toAssetAvailability(entries []service.AssetAvailability) []AssetAvailabilityResponse {
	out := make([]AssetAvailabilityResponse, len(entries))
	for i, e := range entries {
		resp := AssetAvailabilityResponse{
			AssetID:   e.Asset.ID,
			Code:      e.Asset.Code,
			City:      e.Asset.City,
			MediaType: e.Asset.MediaType,
			FaceSqft:  e.Asset.FaceSqft,
			DailyRate: e.Asset.DailyRate,
		}
		if e.Result.AvailableFrom != nil {
			resp.AvailableFrom = availability.FormatDate(*e.Result.AvailableFrom)
		}
		for _, w := range e.Result.Windows {
			resp.Windows = append(resp.Windows, ReservationWindow{
				CampaignID: w.CampaignID,
				StartDate:  availability.FormatDate(w.From),
				EndDate:    availability.FormatDate(w.To),
			})
		}
		out[i] = resp
	}
	return out
}

func ToAvailabilityResponse(report *service.AvailabilityReport) AvailabilityResponse {
	return AvailabilityResponse{
		Available:     toAssetAvailability(report.Available),
		AvailableSoon: toAssetAvailability(report.AvailableSoon),
		Booked:        toAssetAvailability(report.Booked),
		Conflicts:     toAssetAvailability(report.Conflicts),
		Summary: AvailabilitySummaryResponse{
			TotalAssets:        report.Summary.TotalAssets,
			AvailableCount:     report.Summary.AvailableCount,
			AvailableSoonCount: report.Summary.AvailableSoonCount,
			BookedCount:        report.Summary.BookedCount,
			ConflictCount:      report.Summary.ConflictCount,
			PotentialRevenue:   report.Summary.PotentialRevenue,
			TotalSqftAvailable: report.Summary.TotalSqftAvailable,
		},
	}
}

// --- Plans ---

type PlanItemResponse struct {
	ID        uint    `json:"id"`
	AssetID   uint    `json:"asset_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Price     float64 `json:"price"`
}

type PlanResponse struct {
	ID         uint               `json:"id"`
	Name       string             `json:"name"`
	ClientName string             `json:"client_name,omitempty"`
	Status     models.PlanStatus  `json:"status"`
	CampaignID *uint              `json:"campaign_id,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	Items      []PlanItemResponse `json:"items,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

func ToPlanResponse(p *models.Plan) PlanResponse {
	resp := PlanResponse{
		ID:         p.ID,
		Name:       p.Name,
		ClientName: p.ClientName,
		Status:     p.Status,
		CampaignID: p.CampaignID,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
	}
	for _, it := range p.Items {
		resp.Items = append(resp.Items, PlanItemResponse{
			ID:        it.ID,
			AssetID:   it.AssetID,
			StartDate: availability.FormatDate(it.StartDate),
			EndDate:   availability.FormatDate(it.EndDate),
			Price:     it.Price,
		})
	}
	return resp
}

// --- Campaigns ---

type CampaignAssetResponse struct {
	ID        uint                       `json:"id"`
	AssetID   uint                       `json:"asset_id"`
	AssetCode string                     `json:"asset_code"`
	City      string                     `json:"city,omitempty"`
	MediaType models.MediaType           `json:"media_type,omitempty"`
	FaceSqft  float64                    `json:"face_sqft,omitempty"`
	Price     float64                    `json:"price"`
	StartDate string                     `json:"start_date"`
	EndDate   string                     `json:"end_date"`
	Status    models.CampaignAssetStatus `json:"status"`
}

type CampaignResponse struct {
	ID           uint                    `json:"id"`
	Number       int                     `json:"number"`
	PublicID     string                  `json:"public_id"`
	SourcePlanID uint                    `json:"source_plan_id"`
	Name         string                  `json:"name"`
	Status       models.CampaignStatus   `json:"status"`
	StartDate    string                  `json:"start_date"`
	EndDate      string                  `json:"end_date"`
	TotalPrice   float64                 `json:"total_price"`
	Notes        string                  `json:"notes,omitempty"`
	Assets       []CampaignAssetResponse `json:"assets,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

func ToCampaignAssetResponse(ca *models.CampaignAsset) CampaignAssetResponse {
	return CampaignAssetResponse{
		ID:        ca.ID,
		AssetID:   ca.AssetID,
		AssetCode: ca.AssetCode,
		City:      ca.City,
		MediaType: ca.MediaType,
		FaceSqft:  ca.FaceSqft,
		Price:     ca.Price,
		StartDate: availability.FormatDate(ca.StartDate),
		EndDate:   availability.FormatDate(ca.EndDate),
		Status:    ca.Status,
	}
}

func ToCampaignResponse(c *models.Campaign) CampaignResponse {
	resp := CampaignResponse{
		ID:           c.ID,
		Number:       c.Number,
		PublicID:     c.PublicID,
		SourcePlanID: c.SourcePlanID,
		Name:         c.Name,
		Status:       c.Status,
		StartDate:    availability.FormatDate(c.StartDate),
		EndDate:      availability.FormatDate(c.EndDate),
		TotalPrice:   c.TotalPrice,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
	}
	for i := range c.Assets {
		resp.Assets = append(resp.Assets, ToCampaignAssetResponse(&c.Assets[i]))
	}
	return resp
}

// --- Conversion ---

type ConvertResponse struct {
	CampaignID       uint             `json:"campaign_id"`
	AlreadyConverted bool             `json:"already_converted,omitempty"`
	Warnings         []string         `json:"warnings,omitempty"`
	Campaign         CampaignResponse `json:"campaign"`
}

func ToConvertResponse(res *service.ConversionResult) ConvertResponse {
	return ConvertResponse{
		CampaignID:       res.Campaign.ID,
		AlreadyConverted: res.AlreadyConverted,
		Warnings:         res.Warnings,
		Campaign:         ToCampaignResponse(res.Campaign),
	}
}

// ConflictingResource is one entry of a 409 body.
type ConflictingResource struct {
	AssetID   uint                `json:"asset_id"`
	AssetCode string              `json:"asset_code"`
	Reason    string              `json:"reason"`
	HeldBy    []uint              `json:"held_by,omitempty"`
	Windows   []ReservationWindow `json:"windows,omitempty"`
}

type ConflictResponse struct {
	Message              string                `json:"message"`
	ConflictingResources []ConflictingResource `json:"conflicting_resources"`
}

func ToConflictResponse(err *service.ConflictError) ConflictResponse {
	resp := ConflictResponse{Message: err.Error()}
	for _, r := range err.Resources {
		cr := ConflictingResource{
			AssetID:   r.AssetID,
			AssetCode: r.AssetCode,
			Reason:    r.Reason,
			HeldBy:    r.HeldBy,
		}
		for _, w := range r.Windows {
			cr.Windows = append(cr.Windows, ReservationWindow{
				CampaignID: w.CampaignID,
				StartDate:  availability.FormatDate(w.From),
				EndDate:    availability.FormatDate(w.To),
			})
		}
		resp.ConflictingResources = append(resp.ConflictingResources, cr)
	}
	return resp
}

// PartialFailureResponse is surfaced loudly so a reconciliation retry can be
// limited to the outstanding reservation writes.
type PartialFailureResponse struct {
	Message         string `json:"message"`
	PlanID          uint   `json:"plan_id"`
	CampaignID      uint   `json:"campaign_id"`
	CompletedStep   string `json:"completed_step"`
	PendingAssetIDs []uint `json:"pending_asset_ids,omitempty"`
}

func ToPartialFailureResponse(err *service.PartialFailureError) PartialFailureResponse {
	return PartialFailureResponse{
		Message:         err.Error(),
		PlanID:          err.PlanID,
		CampaignID:      err.CampaignID,
		CompletedStep:   string(err.CompletedStep),
		PendingAssetIDs: err.PendingAssetIDs,
	}
}
