package database

import (
	"fmt"
	"log/slog"

	"tailor_shop/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the server owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Customer{},
		&models.Bill{},
		&models.BillItem{},
		&models.Tailor{},
		&models.Job{},
		&models.WorkflowStage{},
		&models.Setting{},
	}
}

func Initialize(databaseURL string, env string, log *slog.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if env == "dev" {
		level = logger.Info
	}
	config := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected")
	return db, nil
}

// legacyJobBillIndex covered soft-deleted jobs too, which blocked a new job
// for a bill whose old job was deleted.
const legacyJobBillIndex = "idx_jobs_bill_id"

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	m := db.Migrator()
	if m.HasIndex(&models.Job{}, legacyJobBillIndex) {
		if err := m.DropIndex(&models.Job{}, legacyJobBillIndex); err != nil {
			return fmt.Errorf("failed to drop %s: %w", legacyJobBillIndex, err)
		}
	}
	return nil
}
