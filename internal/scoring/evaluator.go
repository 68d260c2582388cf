package scoring

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrMalformedCriterion marks a configuration error in a rule: an unknown
// operator, a between without its upper bound, or an unparseable decimal.
// It is fatal to the run that hit it, unlike a missing-fundamental skip.
var ErrMalformedCriterion = errors.New("malformed criterion")

// Evaluate applies one criterion to one asset's fundamentals.
//
// If any fundamental the criterion needs is absent or null the entry is
// skipped with SkipMissingFundamental; that is the only skip condition. For
// comparison operators the criterion's own metric is implicitly required.
// Evaluation is pure and total for well-formed criteria.
func Evaluate(c Criterion, fundamentals map[string]*decimal.Decimal) (BreakdownEntry, error) {
	entry := BreakdownEntry{
		CriterionID:   c.ID,
		CriterionName: c.Name,
	}

	for _, name := range requiredMetrics(c) {
		if v, ok := fundamentals[name]; !ok || v == nil {
			entry.SkippedReason = SkipMissingFundamental
			return entry, nil
		}
	}

	if c.Operator == OpExists {
		if v, ok := fundamentals[c.Metric]; ok && v != nil {
			entry.Matched = true
			entry.PointsAwarded = c.Points
			s := v.String()
			entry.ActualValue = &s
		}
		return entry, nil
	}

	// Present and non-nil, guaranteed by the required check above.
	actual := fundamentals[c.Metric]
	s := actual.String()
	entry.ActualValue = &s

	matched, err := compare(c, *actual)
	if err != nil {
		return BreakdownEntry{}, err
	}
	if matched {
		entry.Matched = true
		entry.PointsAwarded = c.Points
	}
	return entry, nil
}

// requiredMetrics returns the fundamentals the criterion cannot evaluate
// without. exists tests presence itself, so its metric is never required.
func requiredMetrics(c Criterion) []string {
	if c.Operator == OpExists {
		return c.RequiredFundamentals
	}
	for _, name := range c.RequiredFundamentals {
		if name == c.Metric {
			return c.RequiredFundamentals
		}
	}
	out := make([]string, 0, len(c.RequiredFundamentals)+1)
	out = append(out, c.RequiredFundamentals...)
	out = append(out, c.Metric)
	return out
}

func compare(c Criterion, actual decimal.Decimal) (bool, error) {
	switch c.Operator {
	case OpGreaterThan:
		return actual.Cmp(c.Value) > 0, nil
	case OpGreaterOrEqual:
		return actual.Cmp(c.Value) >= 0, nil
	case OpLessThan:
		return actual.Cmp(c.Value) < 0, nil
	case OpLessOrEqual:
		return actual.Cmp(c.Value) <= 0, nil
	case OpEqual:
		return actual.Cmp(c.Value) == 0, nil
	case OpBetween:
		if c.Value2 == nil {
			return false, fmt.Errorf("%w: between criterion %q has no upper bound", ErrMalformedCriterion, c.ID)
		}
		// Inclusive on both bounds.
		return actual.Cmp(c.Value) >= 0 && actual.Cmp(*c.Value2) <= 0, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q on criterion %q", ErrMalformedCriterion, c.Operator, c.ID)
	}
}
