package db

import (
	"suitability/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&models.CriteriaVersion{},
		&models.Criterion{},
		&models.Asset{},
		&models.Fundamental{},
		&models.Price{},
		&models.ExchangeRate{},
		&models.CalculationEvent{},
	)
}
