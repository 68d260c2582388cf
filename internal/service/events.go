package service

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"suitability/internal/models"
	"suitability/internal/repository"
	"suitability/internal/scoring"
)

// EventRecorder is the durable scoring.EventEmitter: it appends runner
// events to the calculation_events table. Rows are never updated afterwards.
type EventRecorder struct {
	Repo repository.Repository
}

func (r *EventRecorder) Emit(ctx context.Context, userID string, ev scoring.Event) error {
	if r == nil || r.Repo == nil {
		return fmt.Errorf("event recorder: no repository")
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", ev.Type, err)
	}
	return r.Repo.InsertCalculationEvent(ctx, &models.CalculationEvent{
		CorrelationID: ev.CorrelationID,
		UserID:        userID,
		EventType:     string(ev.Type),
		Payload:       datatypes.JSON(payload),
		OccurredAt:    ev.OccurredAt,
	})
}

// eventSource adapts the repository's event table to the verifier's
// read-only scoring.EventSource.
type eventSource struct {
	repo repository.Repository
}

func (s eventSource) ListByCorrelationID(ctx context.Context, correlationID string) ([]scoring.StoredEvent, error) {
	items, err := s.repo.ListCalculationEventsByCorrelationID(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	out := make([]scoring.StoredEvent, 0, len(items))
	for _, item := range items {
		out = append(out, scoring.StoredEvent{
			Type:          scoring.EventType(item.EventType),
			CorrelationID: item.CorrelationID,
			Payload:       []byte(item.Payload),
		})
	}
	return out, nil
}
