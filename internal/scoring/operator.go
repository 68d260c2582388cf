package scoring

import (
	"fmt"
	"strings"
)

// Operator is the comparison kind of a criterion. The wire vocabulary also
// accepts "equals" as an alias for "eq".
type Operator string

const (
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpEqual          Operator = "eq"
	OpBetween        Operator = "between"
	OpExists         Operator = "exists"
)

func ParseOperator(raw string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gt":
		return OpGreaterThan, nil
	case "gte":
		return OpGreaterOrEqual, nil
	case "lt":
		return OpLessThan, nil
	case "lte":
		return OpLessOrEqual, nil
	case "eq", "equals":
		return OpEqual, nil
	case "between":
		return OpBetween, nil
	case "exists":
		return OpExists, nil
	default:
		return "", fmt.Errorf("%w: unknown operator %q", ErrMalformedCriterion, raw)
	}
}
