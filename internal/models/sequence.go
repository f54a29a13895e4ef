package models

// TenantSequence backs the id allocator: one monotonic counter per tenant and
// kind ("campaign", "plan"). Incremented under a row lock in its own
// transaction so an issued number is never reused, even when a later workflow
// step fails.
type TenantSequence struct {
	TenantID string `gorm:"primaryKey;size:64"`
	Kind     string `gorm:"primaryKey;size:32"`
	Value    int    `gorm:"not null;default:0"`
}
