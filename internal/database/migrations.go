package database

import (
	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.Job{},
		&models.CompletedJob{},
		&models.Driver{},
		&models.OutboxEvent{},
	)
	if err != nil {
		return err
	}

	// Backfill columns added after the first deployments
	if db.Migrator().HasTable(&models.Job{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS driverpayout numeric",
			"ADD COLUMN IF NOT EXISTS responseat timestamptz",
			"ADD COLUMN IF NOT EXISTS version integer DEFAULT 0",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE pending_jobs " + column).Error; err != nil {
				return err
			}
		}

		// Statuses are constrained at the database level as well
		db.Exec(`ALTER TABLE pending_jobs DROP CONSTRAINT IF EXISTS pending_jobs_status_check`)
		db.Exec(`ALTER TABLE pending_jobs ADD CONSTRAINT pending_jobs_status_check CHECK (status IN ('pending', 'assigned', 'confirmed'))`)
	}

	if db.Migrator().HasTable(&models.CompletedJob{}) {
		db.Exec(`ALTER TABLE completed_jobs DROP CONSTRAINT IF EXISTS completed_jobs_status_check`)
		db.Exec(`ALTER TABLE completed_jobs ADD CONSTRAINT completed_jobs_status_check CHECK (status = 'completed')`)
	}

	if db.Migrator().HasTable(&models.OutboxEvent{}) {
		db.Exec(`CREATE INDEX IF NOT EXISTS idx_outbox_events_status ON outbox_events (status, created_at)`)
	}

	return nil
}
