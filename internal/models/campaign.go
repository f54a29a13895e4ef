package models

import "time"

type CampaignStatus string

const (
	CampaignPlanned    CampaignStatus = "planned"
	CampaignAssigned   CampaignStatus = "assigned"
	CampaignInProgress CampaignStatus = "in_progress"
	CampaignCompleted  CampaignStatus = "completed"
	CampaignVerified   CampaignStatus = "verified"
)

var campaignOrder = map[CampaignStatus]int{
	CampaignPlanned:    0,
	CampaignAssigned:   1,
	CampaignInProgress: 2,
	CampaignCompleted:  3,
	CampaignVerified:   4,
}

func (s CampaignStatus) Valid() bool {
	_, ok := campaignOrder[s]
	return ok
}

// Operational lifecycle moves forward only.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	a, ok := campaignOrder[s]
	b, ok2 := campaignOrder[next]
	return ok && ok2 && b == a+1
}

type CampaignAssetStatus string

const (
	CampaignAssetPending  CampaignAssetStatus = "pending"
	CampaignAssetAssigned CampaignAssetStatus = "assigned"
	CampaignAssetMounted  CampaignAssetStatus = "mounted"
	CampaignAssetVerified CampaignAssetStatus = "verified"
)

var campaignAssetOrder = map[CampaignAssetStatus]int{
	CampaignAssetPending:  0,
	CampaignAssetAssigned: 1,
	CampaignAssetMounted:  2,
	CampaignAssetVerified: 3,
}

func (s CampaignAssetStatus) Valid() bool {
	_, ok := campaignAssetOrder[s]
	return ok
}

func (s CampaignAssetStatus) CanTransitionTo(next CampaignAssetStatus) bool {
	a, ok := campaignAssetOrder[s]
	b, ok2 := campaignAssetOrder[next]
	return ok && ok2 && b == a+1
}

// Campaign is the realized reservation created from a converted plan. Number
// is a tenant-scoped sequence issued by the id allocator; PublicID is the
// reference token used in published events and external links.
type Campaign struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TenantID     string         `gorm:"not null;index" json:"tenant_id"`
	Number       int            `gorm:"not null" json:"number"`
	PublicID     string         `gorm:"not null" json:"public_id"`
	SourcePlanID uint           `gorm:"not null;index" json:"source_plan_id"`
	Name         string         `gorm:"not null" json:"name"`
	Status       CampaignStatus `gorm:"type:varchar(20);not null;default:'planned'" json:"status"`
	StartDate    time.Time      `gorm:"not null" json:"start_date"`
	EndDate      time.Time      `gorm:"not null" json:"end_date"`
	TotalPrice   float64        `gorm:"not null" json:"total_price"`
	Notes        string         `json:"notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Assets []CampaignAsset `gorm:"foreignKey:CampaignID" json:"assets,omitempty"`
}

// CampaignAsset is one reserved asset inside a campaign. The snapshot columns
// are copied from the asset at conversion time and never re-read, so later
// edits to the asset do not change what was sold. Rows with ReleasedAt unset
// are the active reservation windows the availability evaluator consults.
type CampaignAsset struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	CampaignID uint                `gorm:"not null;index" json:"campaign_id"`
	AssetID    uint                `gorm:"not null;index" json:"asset_id"`
	AssetCode  string              `gorm:"not null" json:"asset_code"`
	City       string              `json:"city"`
	MediaType  MediaType           `gorm:"type:varchar(20)" json:"media_type"`
	FaceSqft   float64             `json:"face_sqft"`
	Price      float64             `gorm:"not null" json:"price"`
	StartDate  time.Time           `gorm:"not null" json:"start_date"`
	EndDate    time.Time           `gorm:"not null" json:"end_date"`
	Status     CampaignAssetStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ReleasedAt *time.Time          `json:"released_at,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
