package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the latest captured price per asset, upserted in place. Stored as
// numeric to avoid float drift in audit snapshots.
type Price struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	AssetID string `gorm:"type:varchar(64);not null;uniqueIndex"`

	Price    decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Currency string          `gorm:"type:varchar(10);not null"`
	AsOf     time.Time       `gorm:"type:timestamptz;not null"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Price) TableName() string {
	return "prices"
}
