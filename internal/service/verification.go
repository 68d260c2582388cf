package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"suitability/internal/repository"
	"suitability/internal/scoring"
)

// VerificationService replays past calculation runs from the event log and
// checks them against the recorded scores.
type VerificationService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// Verify replays correlationID. A determinism violation comes back as the
// full report plus scoring.ErrDeterminismViolation; it is logged at error
// level here so it can never pass silently even if a caller drops the error.
func (s *VerificationService) Verify(ctx context.Context, correlationID string) (*scoring.VerificationReport, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("verification service not wired")
	}
	verifier := &scoring.Verifier{Events: eventSource{repo: s.Repo}}
	report, err := verifier.VerifyDeterminism(ctx, correlationID)
	if err != nil && errors.Is(err, scoring.ErrDeterminismViolation) && s.Logger != nil {
		s.Logger.Error("determinism violation detected",
			zap.String("correlation_id", correlationID),
			zap.Int("discrepancies", len(report.Discrepancies)),
		)
	}
	return report, err
}
