package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the latest captured rate per currency pair.
type ExchangeRate struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`
	Base  string `gorm:"type:varchar(10);not null;uniqueIndex:idx_exchange_rates_pair"`
	Quote string `gorm:"type:varchar(10);not null;uniqueIndex:idx_exchange_rates_pair"`

	Rate decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	AsOf time.Time       `gorm:"type:timestamptz;not null"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
