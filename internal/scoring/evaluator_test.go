package scoring

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", raw, err)
	}
	return d
}

func decPtr(t *testing.T, raw string) *decimal.Decimal {
	t.Helper()
	d := dec(t, raw)
	return &d
}

func fundamentals(t *testing.T, values map[string]string) map[string]*decimal.Decimal {
	t.Helper()
	out := make(map[string]*decimal.Decimal, len(values))
	for k, v := range values {
		if v == "" {
			out[k] = nil
			continue
		}
		out[k] = decPtr(t, v)
	}
	return out
}

func TestEvaluate_GreaterThan(t *testing.T) {
	c := Criterion{
		ID:       "c1",
		Metric:   "dividend_yield",
		Operator: OpGreaterThan,
		Value:    dec(t, "5.0"),
		Points:   10,
	}
	entry, err := Evaluate(c, fundamentals(t, map[string]string{"dividend_yield": "6.0"}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !entry.Matched || entry.PointsAwarded != 10 {
		t.Fatalf("matched=%v points=%d want matched 10", entry.Matched, entry.PointsAwarded)
	}
	if entry.ActualValue == nil || *entry.ActualValue != "6" {
		t.Fatalf("actual=%v want 6", entry.ActualValue)
	}

	entry, err = Evaluate(c, fundamentals(t, map[string]string{"dividend_yield": "5.0"}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.Matched || entry.PointsAwarded != 0 {
		t.Fatalf("gt must be strict: matched=%v points=%d", entry.Matched, entry.PointsAwarded)
	}
}

func TestEvaluate_InclusiveInequalities(t *testing.T) {
	cases := []struct {
		op      Operator
		actual  string
		matched bool
	}{
		{OpGreaterOrEqual, "5", true},
		{OpGreaterOrEqual, "4.9999", false},
		{OpLessOrEqual, "5", true},
		{OpLessOrEqual, "5.0001", false},
		{OpLessThan, "5", false},
		{OpLessThan, "4.9999", true},
	}
	for _, tc := range cases {
		c := Criterion{ID: "c1", Metric: "pe_ratio", Operator: tc.op, Value: dec(t, "5"), Points: 1}
		entry, err := Evaluate(c, fundamentals(t, map[string]string{"pe_ratio": tc.actual}))
		if err != nil {
			t.Fatalf("%s(%s): err=%v", tc.op, tc.actual, err)
		}
		if entry.Matched != tc.matched {
			t.Fatalf("%s(%s): matched=%v want %v", tc.op, tc.actual, entry.Matched, tc.matched)
		}
	}
}

func TestEvaluate_DecimalExactEquality(t *testing.T) {
	// 0.1 + 0.2 must compare equal to 0.3; binary floats cannot do this.
	sum := dec(t, "0.1").Add(dec(t, "0.2"))
	c := Criterion{ID: "c1", Metric: "ratio", Operator: OpEqual, Value: dec(t, "0.3"), Points: 1}
	entry, err := Evaluate(c, map[string]*decimal.Decimal{"ratio": &sum})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !entry.Matched {
		t.Fatalf("0.1+0.2 must equal 0.3 exactly")
	}

	// Exact means exact: 10 != 10.01.
	c = Criterion{ID: "c2", Metric: "ratio", Operator: OpEqual, Value: dec(t, "10"), Points: 1}
	entry, err = Evaluate(c, fundamentals(t, map[string]string{"ratio": "10.01"}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.Matched {
		t.Fatalf("10 must not equal 10.01")
	}
}

func TestEvaluate_BetweenInclusiveBounds(t *testing.T) {
	c := Criterion{
		ID:       "c1",
		Metric:   "pe_ratio",
		Operator: OpBetween,
		Value:    dec(t, "5"),
		Value2:   decPtr(t, "15"),
		Points:   3,
	}
	cases := []struct {
		actual  string
		matched bool
	}{
		{"5", true},
		{"10", true},
		{"15", true},
		{"4.99", false},
		{"15.01", false},
	}
	for _, tc := range cases {
		entry, err := Evaluate(c, fundamentals(t, map[string]string{"pe_ratio": tc.actual}))
		if err != nil {
			t.Fatalf("between(%s): err=%v", tc.actual, err)
		}
		if entry.Matched != tc.matched {
			t.Fatalf("between(%s): matched=%v want %v", tc.actual, entry.Matched, tc.matched)
		}
	}
}

func TestEvaluate_BetweenWithoutUpperBound(t *testing.T) {
	c := Criterion{ID: "c1", Metric: "pe_ratio", Operator: OpBetween, Value: dec(t, "5"), Points: 3}
	_, err := Evaluate(c, fundamentals(t, map[string]string{"pe_ratio": "7"}))
	if !errors.Is(err, ErrMalformedCriterion) {
		t.Fatalf("err=%v want ErrMalformedCriterion", err)
	}
}

func TestEvaluate_MissingFundamentalSkips(t *testing.T) {
	c := Criterion{ID: "c1", Metric: "dividend_yield", Operator: OpGreaterThan, Value: dec(t, "5"), Points: 10}

	// Absent key.
	entry, err := Evaluate(c, map[string]*decimal.Decimal{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.Matched || entry.PointsAwarded != 0 || entry.SkippedReason != SkipMissingFundamental {
		t.Fatalf("entry=%+v want skip", entry)
	}
	if entry.ActualValue != nil {
		t.Fatalf("skipped entry must have no actual value")
	}

	// Present but null.
	entry, err = Evaluate(c, fundamentals(t, map[string]string{"dividend_yield": ""}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.SkippedReason != SkipMissingFundamental {
		t.Fatalf("null value must skip, got %+v", entry)
	}
}

func TestEvaluate_ExtraRequiredFundamental(t *testing.T) {
	c := Criterion{
		ID:                   "c1",
		Metric:               "payout_ratio",
		Operator:             OpLessThan,
		Value:                dec(t, "0.8"),
		Points:               5,
		RequiredFundamentals: []string{"payout_ratio", "net_income"},
	}
	entry, err := Evaluate(c, fundamentals(t, map[string]string{"payout_ratio": "0.5"}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.SkippedReason != SkipMissingFundamental {
		t.Fatalf("missing net_income must skip, got %+v", entry)
	}
}

func TestEvaluate_Exists(t *testing.T) {
	c := Criterion{ID: "c1", Metric: "dividend_yield", Operator: OpExists, Points: 2}

	entry, err := Evaluate(c, fundamentals(t, map[string]string{"dividend_yield": "3.1"}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !entry.Matched || entry.PointsAwarded != 2 {
		t.Fatalf("exists on present metric must match: %+v", entry)
	}

	// Absence is a failed match, not a skip: exists tests presence itself.
	entry, err = Evaluate(c, map[string]*decimal.Decimal{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.Matched || entry.SkippedReason != "" {
		t.Fatalf("exists on absent metric must fail without skip: %+v", entry)
	}

	entry, err = Evaluate(c, fundamentals(t, map[string]string{"dividend_yield": ""}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.Matched {
		t.Fatalf("exists on null metric must fail: %+v", entry)
	}
}

func TestEvaluate_ZeroAndNegativePoints(t *testing.T) {
	zero := Criterion{ID: "c1", Metric: "beta", Operator: OpLessThan, Value: dec(t, "2"), Points: 0}
	entry, err := Evaluate(zero, fundamentals(t, map[string]string{"beta": "1"}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !entry.Matched || entry.PointsAwarded != 0 {
		t.Fatalf("zero points must be preserved: %+v", entry)
	}

	negative := Criterion{ID: "c2", Metric: "debt_ratio", Operator: OpGreaterThan, Value: dec(t, "200"), Points: -5}
	entry, err = Evaluate(negative, fundamentals(t, map[string]string{"debt_ratio": "250"}))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !entry.Matched || entry.PointsAwarded != -5 {
		t.Fatalf("negative points must be preserved verbatim: %+v", entry)
	}
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("equals")
	if err != nil || op != OpEqual {
		t.Fatalf("equals alias: op=%s err=%v", op, err)
	}
	if _, err := ParseOperator("approx"); !errors.Is(err, ErrMalformedCriterion) {
		t.Fatalf("unknown operator must be malformed, err=%v", err)
	}
}
