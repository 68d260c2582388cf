package models

import (
	"time"
)

// Asset is one scoreable instrument.
type Asset struct {
	ID     string `gorm:"primaryKey;type:varchar(64)"`
	Symbol string `gorm:"type:varchar(40);uniqueIndex;not null"`
	Name   string `gorm:"type:varchar(200)"`
	Active bool   `gorm:"not null;index;default:true"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Asset) TableName() string {
	return "assets"
}
