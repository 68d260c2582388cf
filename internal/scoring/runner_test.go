package scoring

import (
	"context"
	"errors"
	"testing"
)

// recorderEmitter records emitted events in order and can fail a single
// event type to exercise the failure policies.
type recorderEmitter struct {
	events []Event
	users  []string

	failType EventType
	failErr  error
}

func (r *recorderEmitter) Emit(_ context.Context, userID string, ev Event) error {
	if r.failErr != nil && ev.Type == r.failType {
		return r.failErr
	}
	r.events = append(r.events, ev)
	r.users = append(r.users, userID)
	return nil
}

func (r *recorderEmitter) types() []EventType {
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func runSample(t *testing.T, emitter *recorderEmitter, policy EmitFailurePolicy) (*RunOutput, error) {
	t.Helper()
	runner := &Runner{Emitter: emitter, Policy: policy}
	return runner.CalculateScoresWithEvents(
		context.Background(),
		RunContext{UserID: "u1", CriteriaVersionID: "v1"},
		sampleCriteria(t),
		[]AssetInput{sampleAsset(t)},
		nil,
		nil,
	)
}

func TestRunner_EmitsFourOrderedEvents(t *testing.T) {
	emitter := &recorderEmitter{}
	out, err := runSample(t, emitter, EmitAbort)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if out == nil || out.CorrelationID == "" {
		t.Fatalf("out=%+v want correlation id", out)
	}

	want := []EventType{EventCalcStarted, EventInputsCaptured, EventScoresComputed, EventCalcCompleted}
	got := emitter.types()
	if len(got) != len(want) {
		t.Fatalf("events=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events=%v want %v", got, want)
		}
	}
	for i, ev := range emitter.events {
		if ev.CorrelationID != out.CorrelationID {
			t.Fatalf("event %d correlation=%s want %s", i, ev.CorrelationID, out.CorrelationID)
		}
		if emitter.users[i] != "u1" {
			t.Fatalf("event %d user=%s want u1", i, emitter.users[i])
		}
	}

	completed, ok := emitter.events[3].Payload.(CompletedPayload)
	if !ok {
		t.Fatalf("completed payload type %T", emitter.events[3].Payload)
	}
	if completed.Status != StatusSuccess || completed.AssetCount != 1 {
		t.Fatalf("completed=%+v want success/1", completed)
	}

	computed, ok := emitter.events[2].Payload.(ScoresComputedPayload)
	if !ok {
		t.Fatalf("scores payload type %T", emitter.events[2].Payload)
	}
	if len(computed.Results) != 1 || computed.Results[0].Score != "15.0000" {
		t.Fatalf("computed=%+v want one result 15.0000", computed)
	}
}

func TestRunner_InputsCapturedSnapshot(t *testing.T) {
	emitter := &recorderEmitter{}
	asset := sampleAsset(t)
	runner := &Runner{Emitter: emitter, Policy: EmitAbort}
	if _, err := runner.CalculateScoresWithEvents(
		context.Background(),
		RunContext{UserID: "u1", CriteriaVersionID: "v1"},
		sampleCriteria(t),
		[]AssetInput{asset},
		nil,
		nil,
	); err != nil {
		t.Fatalf("err=%v", err)
	}

	inputs, ok := emitter.events[1].Payload.(InputsCapturedPayload)
	if !ok {
		t.Fatalf("inputs payload type %T", emitter.events[1].Payload)
	}
	if inputs.CriteriaVersionID != "v1" {
		t.Fatalf("version=%s want v1", inputs.CriteriaVersionID)
	}
	if len(inputs.AssetIDs) != 1 || inputs.AssetIDs[0] != "a1" {
		t.Fatalf("assetIds=%v want [a1]", inputs.AssetIDs)
	}

	// The snapshot must be insulated from later caller mutation.
	v := dec(t, "999")
	asset.Fundamentals["dividend_yield"] = &v
	if inputs.Assets[0].Fundamentals["dividend_yield"].Cmp(dec(t, "6.0")) != 0 {
		t.Fatalf("snapshot leaked caller mutation")
	}
}

func TestRunner_UniqueCorrelationIDs(t *testing.T) {
	emitter := &recorderEmitter{}
	first, err := runSample(t, emitter, EmitAbort)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	second, err := runSample(t, emitter, EmitAbort)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if first.CorrelationID == second.CorrelationID {
		t.Fatalf("correlation id reused across runs: %s", first.CorrelationID)
	}
}

func TestRunner_ConfigErrorEmitsFailureCompletion(t *testing.T) {
	emitter := &recorderEmitter{}
	runner := &Runner{Emitter: emitter, Policy: EmitAbort}
	badCriteria := []Criterion{
		{ID: "bad", Metric: "pe_ratio", Operator: OpBetween, Value: dec(t, "5"), Points: 1},
	}
	_, err := runner.CalculateScoresWithEvents(
		context.Background(),
		RunContext{UserID: "u1", CriteriaVersionID: "v1"},
		badCriteria,
		[]AssetInput{sampleAsset(t)},
		nil,
		nil,
	)
	if !errors.Is(err, ErrMalformedCriterion) {
		t.Fatalf("err=%v want ErrMalformedCriterion", err)
	}

	got := emitter.types()
	want := []EventType{EventCalcStarted, EventInputsCaptured, EventCalcCompleted}
	if len(got) != len(want) {
		t.Fatalf("events=%v want %v", got, want)
	}
	completed := emitter.events[len(emitter.events)-1].Payload.(CompletedPayload)
	if completed.Status != StatusFailure {
		t.Fatalf("completed=%+v want failure", completed)
	}
}

func TestRunner_EmitFailureAborts(t *testing.T) {
	emitter := &recorderEmitter{
		failType: EventInputsCaptured,
		failErr:  errors.New("store down"),
	}
	_, err := runSample(t, emitter, EmitAbort)
	if !errors.Is(err, ErrEmitFailed) {
		t.Fatalf("err=%v want ErrEmitFailed", err)
	}

	// STARTED went through, then a best-effort failure completion.
	got := emitter.types()
	if len(got) != 2 || got[0] != EventCalcStarted || got[1] != EventCalcCompleted {
		t.Fatalf("events=%v want [CALC_STARTED CALC_COMPLETED]", got)
	}
	completed := emitter.events[1].Payload.(CompletedPayload)
	if completed.Status != StatusFailure {
		t.Fatalf("completed=%+v want failure", completed)
	}
}

func TestRunner_EmitFailureContinuePolicy(t *testing.T) {
	emitter := &recorderEmitter{
		failType: EventInputsCaptured,
		failErr:  errors.New("store down"),
	}
	out, err := runSample(t, emitter, EmitContinue)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("results=%d want 1", len(out.Results))
	}

	// The run completed with a gap in the audit trail.
	got := emitter.types()
	want := []EventType{EventCalcStarted, EventScoresComputed, EventCalcCompleted}
	if len(got) != len(want) {
		t.Fatalf("events=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events=%v want %v", got, want)
		}
	}
	completed := emitter.events[len(emitter.events)-1].Payload.(CompletedPayload)
	if completed.Status != StatusSuccess {
		t.Fatalf("completed=%+v want success", completed)
	}
}
