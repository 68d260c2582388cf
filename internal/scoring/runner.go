package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrEmitFailed wraps an event emission failure under the abort policy.
var ErrEmitFailed = errors.New("event emission failed")

// EmitFailurePolicy decides what a mid-run emission failure does. The audit
// trail is the product here, so the default aborts; continue trades a gap in
// the trail for availability and is an explicit operator choice.
type EmitFailurePolicy string

const (
	EmitAbort    EmitFailurePolicy = "abort"
	EmitContinue EmitFailurePolicy = "continue"
)

func ParseEmitFailurePolicy(raw string) (EmitFailurePolicy, error) {
	switch EmitFailurePolicy(raw) {
	case EmitAbort, EmitContinue:
		return EmitFailurePolicy(raw), nil
	case "":
		return EmitAbort, nil
	default:
		return "", fmt.Errorf("unknown emit failure policy %q", raw)
	}
}

// RunContext identifies one calculation run: one user, one criteria version.
type RunContext struct {
	UserID            string
	CriteriaVersionID string
}

// RunOutput is the result of an audited run. CorrelationID ties the four
// emitted events together and is the handle for later replay verification.
type RunOutput struct {
	CorrelationID string        `json:"correlationId"`
	Results       []ScoreResult `json:"results"`
}

// Runner wraps the aggregator with the audit-event sequence
// CALC_STARTED -> INPUTS_CAPTURED -> SCORES_COMPUTED -> CALC_COMPLETED.
// Now and NewCorrelationID default to the wall clock and uuid; tests inject
// both.
type Runner struct {
	Emitter EventEmitter
	Policy  EmitFailurePolicy
	Logger  *zap.Logger

	Now              func() time.Time
	NewCorrelationID func() string
}

// CalculateScoresWithEvents runs one audited batch calculation. All four
// events share one correlation id generated here and never reused. On a
// configuration error in the aggregator the runner still emits
// CALC_COMPLETED with status "failure" before returning the error.
func (r *Runner) CalculateScoresWithEvents(
	ctx context.Context,
	rc RunContext,
	criteria []Criterion,
	assets []AssetInput,
	prices []PriceQuote,
	rates []RateQuote,
) (*RunOutput, error) {
	if r == nil || r.Emitter == nil {
		return nil, errors.New("runner: no event emitter configured")
	}

	now := r.Now
	if now == nil {
		now = time.Now
	}
	newID := r.NewCorrelationID
	if newID == nil {
		newID = uuid.NewString
	}

	correlationID := newID()
	startedAt := now()
	completed := func(status string) Event {
		return Event{
			Type:          EventCalcCompleted,
			CorrelationID: correlationID,
			OccurredAt:    now(),
			Payload: CompletedPayload{
				Status:     status,
				DurationMs: now().Sub(startedAt).Milliseconds(),
				AssetCount: len(assets),
			},
		}
	}

	if err := r.emit(ctx, rc.UserID, Event{
		Type:          EventCalcStarted,
		CorrelationID: correlationID,
		OccurredAt:    startedAt,
		Payload: StartedPayload{
			UserID:            rc.UserID,
			CriteriaVersionID: rc.CriteriaVersionID,
		},
	}); err != nil {
		_ = r.Emitter.Emit(ctx, rc.UserID, completed(StatusFailure))
		return nil, err
	}

	if err := r.emit(ctx, rc.UserID, Event{
		Type:          EventInputsCaptured,
		CorrelationID: correlationID,
		OccurredAt:    now(),
		Payload:       freezeInputs(rc.CriteriaVersionID, criteria, assets, prices, rates),
	}); err != nil {
		_ = r.Emitter.Emit(ctx, rc.UserID, completed(StatusFailure))
		return nil, err
	}

	results, err := CalculateScores(criteria, assets, rc.CriteriaVersionID)
	if err != nil {
		if emitErr := r.Emitter.Emit(ctx, rc.UserID, completed(StatusFailure)); emitErr != nil && r.Logger != nil {
			r.Logger.Warn("failure event not emitted",
				zap.String("correlation_id", correlationID),
				zap.Error(emitErr),
			)
		}
		return nil, err
	}

	if err := r.emit(ctx, rc.UserID, Event{
		Type:          EventScoresComputed,
		CorrelationID: correlationID,
		OccurredAt:    now(),
		Payload:       ScoresComputedPayload{Results: results},
	}); err != nil {
		_ = r.Emitter.Emit(ctx, rc.UserID, completed(StatusFailure))
		return nil, err
	}

	if err := r.emit(ctx, rc.UserID, completed(StatusSuccess)); err != nil {
		return nil, err
	}

	return &RunOutput{CorrelationID: correlationID, Results: results}, nil
}

// emit applies the failure policy to one emission. Under continue the gap is
// logged and the run goes on; under abort the caller unwinds.
func (r *Runner) emit(ctx context.Context, userID string, ev Event) error {
	err := r.Emitter.Emit(ctx, userID, ev)
	if err == nil {
		return nil
	}
	if r.Policy == EmitContinue {
		if r.Logger != nil {
			r.Logger.Warn("audit event dropped, continuing run",
				zap.String("event_type", string(ev.Type)),
				zap.String("correlation_id", ev.CorrelationID),
				zap.Error(err),
			)
		}
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrEmitFailed, ev.Type, err)
}

// freezeInputs copies every slice so later mutation by the caller cannot
// reach into the captured snapshot. Decimal values are immutable already.
func freezeInputs(versionID string, criteria []Criterion, assets []AssetInput, prices []PriceQuote, rates []RateQuote) InputsCapturedPayload {
	frozenCriteria := make([]Criterion, len(criteria))
	copy(frozenCriteria, criteria)
	for i := range frozenCriteria {
		if n := len(frozenCriteria[i].RequiredFundamentals); n > 0 {
			req := make([]string, n)
			copy(req, frozenCriteria[i].RequiredFundamentals)
			frozenCriteria[i].RequiredFundamentals = req
		}
	}

	assetIDs := make([]string, 0, len(assets))
	frozenAssets := make([]AssetInput, 0, len(assets))
	for _, a := range assets {
		assetIDs = append(assetIDs, a.ID)
		copied := AssetInput{ID: a.ID, Symbol: a.Symbol}
		if a.Fundamentals != nil {
			copied.Fundamentals = make(map[string]*decimal.Decimal, len(a.Fundamentals))
			for metric, v := range a.Fundamentals {
				if v == nil {
					copied.Fundamentals[metric] = nil
					continue
				}
				d := *v
				copied.Fundamentals[metric] = &d
			}
		}
		frozenAssets = append(frozenAssets, copied)
	}

	frozenPrices := make([]PriceQuote, len(prices))
	copy(frozenPrices, prices)
	frozenRates := make([]RateQuote, len(rates))
	copy(frozenRates, rates)

	return InputsCapturedPayload{
		CriteriaVersionID: versionID,
		Criteria:          frozenCriteria,
		AssetIDs:          assetIDs,
		Assets:            frozenAssets,
		Prices:            frozenPrices,
		Rates:             frozenRates,
	}
}
