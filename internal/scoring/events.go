package scoring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventType tags the four audit events of one calculation run. A consumer
// reading the log for a correlation id must observe them in the order listed.
type EventType string

const (
	EventCalcStarted    EventType = "CALC_STARTED"
	EventInputsCaptured EventType = "INPUTS_CAPTURED"
	EventScoresComputed EventType = "SCORES_COMPUTED"
	EventCalcCompleted  EventType = "CALC_COMPLETED"
)

// Run completion statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Event is one audit record emitted by the Runner. Payload holds the typed
// payload struct for the event's Type; emitters own serialization.
type Event struct {
	Type          EventType `json:"type"`
	CorrelationID string    `json:"correlationId"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       any       `json:"payload"`
}

// EventEmitter is the injected capability the Runner appends events through.
// Implementations decide durability; the core does not retry.
type EventEmitter interface {
	Emit(ctx context.Context, userID string, event Event) error
}

// PriceQuote is a captured price observation, decimal-exact.
type PriceQuote struct {
	AssetID  string          `json:"assetId"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	AsOf     time.Time       `json:"asOf"`
}

// RateQuote is a captured exchange-rate observation.
type RateQuote struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
	AsOf  time.Time       `json:"asOf"`
}

type StartedPayload struct {
	UserID            string `json:"userId"`
	CriteriaVersionID string `json:"criteriaVersionId"`
}

// InputsCapturedPayload is the frozen snapshot replay depends on. Assets
// carries the full fundamentals maps for the ids in AssetIDs; without them a
// later replay would have to refetch live data and determinism would be lost.
type InputsCapturedPayload struct {
	CriteriaVersionID string       `json:"criteriaVersionId"`
	Criteria          []Criterion  `json:"criteria"`
	AssetIDs          []string     `json:"assetIds"`
	Assets            []AssetInput `json:"assets"`
	Prices            []PriceQuote `json:"prices"`
	Rates             []RateQuote  `json:"rates"`
}

type ScoresComputedPayload struct {
	Results []ScoreResult `json:"results"`
}

type CompletedPayload struct {
	Status     string `json:"status"`
	DurationMs int64  `json:"duration"`
	AssetCount int    `json:"assetCount"`
}
