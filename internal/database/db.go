package database

import (
	"log"

	"nextmove-cargo/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the postgres pool and migrates the marketplace schema
func NewConnection(dsn string, debug bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if !debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.Profile{},
		&model.RFQ{},
		&model.Offer{},
		&model.Shipment{},
		&model.POD{},
		&model.Notification{},
		&model.Transaction{},
		&model.Coupon{},
		&model.POSSession{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
