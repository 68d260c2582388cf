package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Criterion is one scoring rule within a criteria version. Threshold values
// are stored as numeric to keep comparisons decimal-exact; Value2 is only
// set for the between operator.
type Criterion struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	VersionID string `gorm:"type:varchar(64);not null;index"`

	Name     string `gorm:"type:varchar(200);not null"`
	Metric   string `gorm:"type:varchar(100);not null"`
	Operator string `gorm:"type:varchar(20);not null"`

	Value  decimal.Decimal  `gorm:"type:numeric(30,10);not null"`
	Value2 *decimal.Decimal `gorm:"type:numeric(30,10)"`
	Points int              `gorm:"not null"`

	RequiredFundamentals datatypes.JSON `gorm:"type:jsonb"`
	SortOrder            int            `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Criterion) TableName() string {
	return "criteria"
}
