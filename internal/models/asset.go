package models

import "time"

type AssetStatus string

const (
	AssetAvailable   AssetStatus = "available"
	AssetBooked      AssetStatus = "booked"
	AssetBlocked     AssetStatus = "blocked"
	AssetMaintenance AssetStatus = "maintenance"
)

func (s AssetStatus) Valid() bool {
	switch s {
	case AssetAvailable, AssetBooked, AssetBlocked, AssetMaintenance:
		return true
	}
	return false
}

type MediaType string

const (
	MediaStatic  MediaType = "static"
	MediaDigital MediaType = "digital"
	MediaTransit MediaType = "transit"
)

// Asset is a single exclusively-bookable media face (billboard, screen).
// Status, BookedFrom/BookedTo and ActiveCampaignID move together: an asset
// is booked iff its reservation window and holding campaign are both set.
type Asset struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	TenantID         string      `gorm:"not null;index" json:"tenant_id"`
	Code             string      `gorm:"not null" json:"code"`
	City             string      `gorm:"not null" json:"city"`
	MediaType        MediaType   `gorm:"type:varchar(20);not null" json:"media_type"`
	FaceSqft         float64     `gorm:"not null" json:"face_sqft"`
	DailyRate        float64     `gorm:"not null" json:"daily_rate"`
	Status           AssetStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	BookedFrom       *time.Time  `json:"booked_from,omitempty"`
	BookedTo         *time.Time  `json:"booked_to,omitempty"`
	ActiveCampaignID *uint       `json:"active_campaign_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
