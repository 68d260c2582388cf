package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"suitability/internal/repository"
)

// MaintenanceService prunes the calculation event log. The log is
// append-only in normal operation; retention is the one sanctioned delete.
type MaintenanceService struct {
	Repo          repository.Repository
	Logger        *zap.Logger
	RetentionDays int
}

func (s *MaintenanceService) PruneEvents(ctx context.Context) {
	if s == nil || s.Repo == nil || s.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -s.RetentionDays)
	deleted, err := s.Repo.DeleteCalculationEventsBefore(ctx, cutoff)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("event retention prune failed", zap.Error(err))
		}
		return
	}
	if s.Logger != nil && deleted > 0 {
		s.Logger.Info("pruned calculation events",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
