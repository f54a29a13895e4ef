package database

import (
	"log"

	"github.com/oohgrid/reservation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Asset{},
		&models.Plan{},
		&models.PlanItem{},
		&models.Campaign{},
		&models.CampaignAsset{},
		&models.TenantSequence{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Lookup indexes for the availability fan-out plus uniqueness where the
	// workflow relies on it. There is deliberately no unique index on active
	// holds per asset: overlapping reservations are an integrity violation
	// the evaluator must be able to detect and surface, not a state the
	// schema silently prevents.
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_campaign_assets_active
		ON campaign_assets (asset_id, start_date, end_date)
		WHERE released_at IS NULL
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_campaigns_source_plan
		ON campaigns (tenant_id, source_plan_id)
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_campaign_assets_pair
		ON campaign_assets (campaign_id, asset_id)
	`)

	return db
}
