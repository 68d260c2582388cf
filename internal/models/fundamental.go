package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fundamental is the latest known value of one metric for one asset. Value
// is nullable: a null row means the metric is tracked but currently unknown,
// which the evaluator treats the same as a missing row.
type Fundamental struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	AssetID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_fundamentals_asset_metric"`
	Metric  string `gorm:"type:varchar(100);not null;uniqueIndex:idx_fundamentals_asset_metric"`

	Value *decimal.Decimal `gorm:"type:numeric(30,10)"`
	AsOf  time.Time        `gorm:"type:timestamptz;not null"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Fundamental) TableName() string {
	return "fundamentals"
}
