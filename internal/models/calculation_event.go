package models

import (
	"time"

	"gorm.io/datatypes"
)

// CalculationEvent is one append-only audit record. The autoincrement id
// preserves emission order within a correlation id; persisted rows are never
// updated.
type CalculationEvent struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	CorrelationID string `gorm:"type:varchar(64);not null;index"`
	UserID        string `gorm:"type:varchar(64);not null;index:idx_calculation_events_user_type"`
	EventType     string `gorm:"type:varchar(32);not null;index:idx_calculation_events_user_type"`

	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	OccurredAt time.Time      `gorm:"type:timestamptz;not null"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (CalculationEvent) TableName() string {
	return "calculation_events"
}
