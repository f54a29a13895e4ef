package models

import "time"

type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanSent      PlanStatus = "sent"
	PlanApproved  PlanStatus = "approved"
	PlanRejected  PlanStatus = "rejected"
	PlanConverted PlanStatus = "converted"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanDraft, PlanSent, PlanApproved, PlanRejected, PlanConverted:
		return true
	}
	return false
}

// CanTransitionTo enforces the quote lifecycle. Converted is terminal and is
// only ever set by the conversion workflow, never through a status update.
func (s PlanStatus) CanTransitionTo(next PlanStatus) bool {
	switch s {
	case PlanDraft:
		return next == PlanSent || next == PlanApproved || next == PlanRejected
	case PlanSent:
		return next == PlanApproved || next == PlanRejected
	case PlanApproved:
		return next == PlanRejected
	default:
		return false
	}
}

// Plan is a price-quoted selection of assets and dates, not yet a binding
// reservation. CampaignID is set exactly once, when the plan converts.
type Plan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TenantID   string     `gorm:"not null;index" json:"tenant_id"`
	Name       string     `gorm:"not null" json:"name"`
	ClientName string     `json:"client_name"`
	Status     PlanStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CampaignID *uint      `json:"campaign_id,omitempty"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Items []PlanItem `gorm:"foreignKey:PlanID" json:"items,omitempty"`
}

type PlanItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlanID    uint      `gorm:"not null;index" json:"plan_id"`
	AssetID   uint      `gorm:"not null" json:"asset_id"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
