package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// scoreFractionDigits is the fixed number of fractional digits in every
// rendered score string.
const scoreFractionDigits = 4

// ParseDecimal parses a decimal string exactly. A malformed value is a
// configuration error: rules and market data are operator-supplied, so a
// value that does not parse aborts the run instead of being coerced.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad decimal %q: %v", ErrMalformedCriterion, raw, err)
	}
	return d, nil
}

// FormatScore renders a score total with exactly four fractional digits,
// no thousands separators, leading "-" for negative totals.
func FormatScore(d decimal.Decimal) string {
	return d.StringFixed(scoreFractionDigits)
}
