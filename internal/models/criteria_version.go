package models

import (
	"time"
)

// CriteriaVersion statuses.
const (
	VersionStatusDraft    = "draft"
	VersionStatusActive   = "active"
	VersionStatusArchived = "archived"
)

// CriteriaVersion is one immutable published rule set. Scores always carry
// the version id they were computed against.
type CriteriaVersion struct {
	ID          string  `gorm:"primaryKey;type:varchar(64)"`
	Name        string  `gorm:"type:varchar(200);not null"`
	Description *string `gorm:"type:text"`
	Status      string  `gorm:"type:varchar(20);not null;index;default:'draft'"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (CriteriaVersion) TableName() string {
	return "criteria_versions"
}
