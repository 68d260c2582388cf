package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type memEventSource struct {
	events map[string][]StoredEvent
}

func (m *memEventSource) ListByCorrelationID(_ context.Context, correlationID string) ([]StoredEvent, error) {
	return m.events[correlationID], nil
}

// recordRun executes one audited run into an in-memory store and returns the
// source plus the run output, giving the verifier a realistic event log.
func recordRun(t *testing.T) (*memEventSource, *RunOutput) {
	t.Helper()
	source := &memEventSource{events: map[string][]StoredEvent{}}
	runner := &Runner{
		Emitter: emitterFunc(func(_ context.Context, _ string, ev Event) error {
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				return err
			}
			source.events[ev.CorrelationID] = append(source.events[ev.CorrelationID], StoredEvent{
				Type:          ev.Type,
				CorrelationID: ev.CorrelationID,
				Payload:       payload,
			})
			return nil
		}),
	}
	out, err := runner.CalculateScoresWithEvents(
		context.Background(),
		RunContext{UserID: "u1", CriteriaVersionID: "v1"},
		sampleCriteria(t),
		[]AssetInput{sampleAsset(t)},
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return source, out
}

type emitterFunc func(ctx context.Context, userID string, ev Event) error

func (f emitterFunc) Emit(ctx context.Context, userID string, ev Event) error {
	return f(ctx, userID, ev)
}

func TestVerifyDeterminism_ReplayMatches(t *testing.T) {
	source, out := recordRun(t)
	verifier := &Verifier{Events: source}

	report, err := verifier.VerifyDeterminism(context.Background(), out.CorrelationID)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !report.Verified || !report.Matches {
		t.Fatalf("report=%+v want verified and matching", report)
	}
	if len(report.Discrepancies) != 0 {
		t.Fatalf("discrepancies=%v want none", report.Discrepancies)
	}
	if len(report.ReplayResults) != 1 || report.ReplayResults[0].Score != "15.0000" {
		t.Fatalf("replay=%+v want one 15.0000 result", report.ReplayResults)
	}
}

func TestVerifyDeterminism_TamperedScore(t *testing.T) {
	source, out := recordRun(t)

	// Corrupt the recorded score without touching the snapshot.
	events := source.events[out.CorrelationID]
	for i, ev := range events {
		if ev.Type != EventScoresComputed {
			continue
		}
		var p ScoresComputedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			t.Fatalf("decode: %v", err)
		}
		p.Results[0].Score = "99.0000"
		payload, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		events[i].Payload = payload
	}

	verifier := &Verifier{Events: source}
	report, err := verifier.VerifyDeterminism(context.Background(), out.CorrelationID)
	if !errors.Is(err, ErrDeterminismViolation) {
		t.Fatalf("err=%v want ErrDeterminismViolation", err)
	}
	if report == nil || !report.Verified || report.Matches {
		t.Fatalf("report=%+v want verified, not matching", report)
	}
	if len(report.Discrepancies) != 1 {
		t.Fatalf("discrepancies=%v want 1", report.Discrepancies)
	}
	d := report.Discrepancies[0]
	if d.AssetID != "a1" || d.OriginalScore != "99.0000" || d.ReplayScore != "15.0000" {
		t.Fatalf("discrepancy=%+v", d)
	}
}

func TestVerifyDeterminism_NoEvents(t *testing.T) {
	verifier := &Verifier{Events: &memEventSource{events: map[string][]StoredEvent{}}}
	report, err := verifier.VerifyDeterminism(context.Background(), "missing")
	if !errors.Is(err, ErrNoEvents) {
		t.Fatalf("err=%v want ErrNoEvents", err)
	}
	if report == nil || report.Verified {
		t.Fatalf("report=%+v want unverified", report)
	}
}

func TestVerifyDeterminism_MissingSnapshot(t *testing.T) {
	started, err := json.Marshal(StartedPayload{UserID: "u1", CriteriaVersionID: "v1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	source := &memEventSource{events: map[string][]StoredEvent{
		"partial": {
			{Type: EventCalcStarted, CorrelationID: "partial", Payload: started},
		},
	}}

	verifier := &Verifier{Events: source}
	if _, err := verifier.VerifyDeterminism(context.Background(), "partial"); !errors.Is(err, ErrNoEvents) {
		t.Fatalf("err=%v want ErrNoEvents", err)
	}
}

func TestVerifyDeterminism_ExtraReplayAsset(t *testing.T) {
	original := []ScoreResult{{AssetID: "a1", Score: "1.0000"}}
	replayed := []ScoreResult{
		{AssetID: "a1", Score: "1.0000"},
		{AssetID: "a2", Score: "2.0000"},
	}
	diffs := diffScores(original, replayed)
	if len(diffs) != 1 {
		t.Fatalf("diffs=%v want 1", diffs)
	}
	if diffs[0].AssetID != "a2" || diffs[0].OriginalScore != "" || diffs[0].ReplayScore != "2.0000" {
		t.Fatalf("diff=%+v", diffs[0])
	}
}
