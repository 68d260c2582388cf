package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoEvents means the event store holds no replayable snapshot for the
// requested correlation id. Callers map it to a not-found response; it is
// never retried.
var ErrNoEvents = errors.New("no events found for correlation id")

// ErrDeterminismViolation means a replay produced scores that differ from
// the recorded ones. It signals a correctness defect in the pipeline or in
// the captured snapshot, not a transient fault, and must never be swallowed.
var ErrDeterminismViolation = errors.New("replayed scores differ from recorded scores")

// StoredEvent is one persisted audit record as the verifier reads it back.
// Payload is the serialized payload for Type.
type StoredEvent struct {
	Type          EventType
	CorrelationID string
	Payload       []byte
}

// EventSource reads the event log. ListByCorrelationID must return events in
// emission order; the verifier only reads, never writes.
type EventSource interface {
	ListByCorrelationID(ctx context.Context, correlationID string) ([]StoredEvent, error)
}

// Discrepancy records one asset whose replayed score differs from the
// original. Scores are the exact recorded strings, compared byte-for-byte.
type Discrepancy struct {
	AssetID       string `json:"assetId"`
	OriginalScore string `json:"originalScore"`
	ReplayScore   string `json:"replayScore"`
}

// VerificationReport is the outcome of one replay. Verified says the
// procedure itself completed (events found, recomputation ran); Matches says
// the replay reproduced every original score. Verified true with Matches
// false is a determinism violation, not a verifier failure.
type VerificationReport struct {
	CorrelationID   string         `json:"correlationId"`
	Verified        bool           `json:"verified"`
	Matches         bool           `json:"matches"`
	OriginalResults []ScoreResult `json:"originalResults,omitempty"`
	ReplayResults   []ScoreResult `json:"replayResults,omitempty"`
	Discrepancies   []Discrepancy `json:"discrepancies,omitempty"`
}

// Verifier replays past calculations from their captured snapshots.
type Verifier struct {
	Events EventSource
}

// VerifyDeterminism reloads the INPUTS_CAPTURED and SCORES_COMPUTED events
// for correlationID, reruns the aggregator on the frozen inputs, and
// compares the fresh scores to the recorded ones with exact string equality.
// Read-only and idempotent. A mismatch returns the full report together with
// ErrDeterminismViolation.
func (v *Verifier) VerifyDeterminism(ctx context.Context, correlationID string) (*VerificationReport, error) {
	if v == nil || v.Events == nil {
		return nil, errors.New("verifier: no event source configured")
	}
	report := &VerificationReport{CorrelationID: correlationID}

	events, err := v.Events.ListByCorrelationID(ctx, correlationID)
	if err != nil {
		return report, fmt.Errorf("load events for %s: %w", correlationID, err)
	}
	if len(events) == 0 {
		return report, fmt.Errorf("%w: %s", ErrNoEvents, correlationID)
	}

	var inputs *InputsCapturedPayload
	var recorded *ScoresComputedPayload
	for _, ev := range events {
		switch ev.Type {
		case EventInputsCaptured:
			var p InputsCapturedPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return report, fmt.Errorf("decode %s payload for %s: %w", ev.Type, correlationID, err)
			}
			inputs = &p
		case EventScoresComputed:
			var p ScoresComputedPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return report, fmt.Errorf("decode %s payload for %s: %w", ev.Type, correlationID, err)
			}
			recorded = &p
		}
	}
	if inputs == nil || recorded == nil {
		return report, fmt.Errorf("%w: %s is missing its snapshot events", ErrNoEvents, correlationID)
	}

	replayed, err := CalculateScores(inputs.Criteria, inputs.Assets, inputs.CriteriaVersionID)
	if err != nil {
		return report, fmt.Errorf("replay %s: %w", correlationID, err)
	}

	report.Verified = true
	report.OriginalResults = recorded.Results
	report.ReplayResults = replayed
	report.Discrepancies = diffScores(recorded.Results, replayed)
	report.Matches = len(report.Discrepancies) == 0

	if !report.Matches {
		return report, fmt.Errorf("%w: %s (%d asset(s) differ)", ErrDeterminismViolation, correlationID, len(report.Discrepancies))
	}
	return report, nil
}

// diffScores compares per asset id. Original order drives the walk so the
// discrepancy list is itself deterministic.
func diffScores(original, replayed []ScoreResult) []Discrepancy {
	replayByAsset := make(map[string]string, len(replayed))
	for _, r := range replayed {
		replayByAsset[r.AssetID] = r.Score
	}

	var discrepancies []Discrepancy
	seen := make(map[string]struct{}, len(original))
	for _, orig := range original {
		seen[orig.AssetID] = struct{}{}
		replay, ok := replayByAsset[orig.AssetID]
		if !ok {
			discrepancies = append(discrepancies, Discrepancy{
				AssetID:       orig.AssetID,
				OriginalScore: orig.Score,
			})
			continue
		}
		if replay != orig.Score {
			discrepancies = append(discrepancies, Discrepancy{
				AssetID:       orig.AssetID,
				OriginalScore: orig.Score,
				ReplayScore:   replay,
			})
		}
	}
	for _, r := range replayed {
		if _, ok := seen[r.AssetID]; !ok {
			discrepancies = append(discrepancies, Discrepancy{
				AssetID:     r.AssetID,
				ReplayScore: r.Score,
			})
		}
	}
	return discrepancies
}
