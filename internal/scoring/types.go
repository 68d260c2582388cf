package scoring

import (
	"github.com/shopspring/decimal"
)

// SkipMissingFundamental is the only skip reason: a criterion could not be
// evaluated because a required fundamental was absent or null. A skip is not
// an error and never aborts a run.
const SkipMissingFundamental = "missing_fundamental"

// Criterion is one scoring rule applied to an asset's fundamentals.
// Value2 is only meaningful for the between operator; all other operators
// ignore it. Points may be zero or negative.
type Criterion struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Metric               string           `json:"metric"`
	Operator             Operator         `json:"operator"`
	Value                decimal.Decimal  `json:"value"`
	Value2               *decimal.Decimal `json:"value2,omitempty"`
	Points               int              `json:"points"`
	RequiredFundamentals []string         `json:"requiredFundamentals,omitempty"`
	SortOrder            int              `json:"sortOrder"`
}

// AssetInput is the immutable per-run snapshot of one asset. A nil value in
// Fundamentals means the metric is known but null; a missing key means the
// metric was never captured. Both count as absent for evaluation.
type AssetInput struct {
	ID           string                      `json:"id"`
	Symbol       string                      `json:"symbol"`
	Fundamentals map[string]*decimal.Decimal `json:"fundamentals"`
}

// BreakdownEntry is the per-criterion evaluation detail attached to a score.
// SkippedReason != "" implies Matched == false and PointsAwarded == 0.
type BreakdownEntry struct {
	CriterionID   string  `json:"criterionId"`
	CriterionName string  `json:"criterionName"`
	Matched       bool    `json:"matched"`
	PointsAwarded int     `json:"pointsAwarded"`
	ActualValue   *string `json:"actualValue"`
	SkippedReason string  `json:"skippedReason,omitempty"`
}

// ScoreResult is the outcome of scoring one asset against one criteria
// version. Score is the decimal sum of awarded points rendered with exactly
// four fractional digits, e.g. "10.0000".
type ScoreResult struct {
	AssetID           string           `json:"assetId"`
	Score             string           `json:"score"`
	CriteriaVersionID string           `json:"criteriaVersionId,omitempty"`
	Breakdown         []BreakdownEntry `json:"breakdown"`
}
