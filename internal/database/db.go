package database

import (
	"fmt"
	"log"

	"easset/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewConnection initializes a connection pool using GORM. The driver is
// selected by name: "postgres" expects a full DSN, anything else opens an
// embedded sqlite database at the given path (":memory:" works too).
func NewConnection(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		if dsn == "" {
			dsn = "easset.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate runs AutoMigrate for every model in dependency order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Asset{},
		&model.AssetImage{},
		&model.RequestSequence{},
		&model.DemolishRequest{},
		&model.DemolishItem{},
		&model.DemolishDocument{},
		&model.TransferRequest{},
		&model.TransferItem{},
		&model.ApprovalAction{},
		&model.StocktakeYearConfig{},
		&model.StocktakeRecord{},
		&model.StocktakeParticipant{},
		&model.StocktakeMeetingDoc{},
		&model.SapSyncOutbox{},
		&model.EmailOutbox{},
		&model.AuditLog{},
	)
}
