package dto

type AvailabilityRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	City      string `json:"city,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

type PlanItemRequest struct {
	AssetID   uint    `json:"asset_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Price     float64 `json:"price"`
}

type CreatePlanRequest struct {
	Name       string            `json:"name"`
	ClientName string            `json:"client_name"`
	Notes      string            `json:"notes"`
	Items      []PlanItemRequest `json:"items"`
}

type UpdatePlanStatusRequest struct {
	Status string `json:"status"`
}

type ConvertPlanRequest struct {
	CampaignName string `json:"campaign_name,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type UpdateCampaignStatusRequest struct {
	Status string `json:"status"`
}

type UpdateCampaignAssetStatusRequest struct {
	Status string `json:"status"`
}
