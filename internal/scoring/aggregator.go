package scoring

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CalculateScore evaluates every criterion against one asset. Criteria run
// in SortOrder and the breakdown preserves that order. The score is the
// decimal sum of awarded points over all entries (skips contribute zero),
// rendered with four fractional digits. Deterministic: same inputs, same
// bytes, every call.
func CalculateScore(asset AssetInput, criteria []Criterion) (ScoreResult, error) {
	return scoreAsset(asset, orderCriteria(criteria), "")
}

// CalculateScores is the batch form: every asset against the same ordered
// criteria set. Assets are processed sequentially; an empty asset list
// yields an empty (non-nil) result list.
func CalculateScores(criteria []Criterion, assets []AssetInput, criteriaVersionID string) ([]ScoreResult, error) {
	ordered := orderCriteria(criteria)
	results := make([]ScoreResult, 0, len(assets))
	for _, asset := range assets {
		res, err := scoreAsset(asset, ordered, criteriaVersionID)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func scoreAsset(asset AssetInput, ordered []Criterion, criteriaVersionID string) (ScoreResult, error) {
	breakdown := make([]BreakdownEntry, 0, len(ordered))
	total := decimal.Zero
	for _, c := range ordered {
		entry, err := Evaluate(c, asset.Fundamentals)
		if err != nil {
			return ScoreResult{}, err
		}
		total = total.Add(decimal.NewFromInt(int64(entry.PointsAwarded)))
		breakdown = append(breakdown, entry)
	}
	return ScoreResult{
		AssetID:           asset.ID,
		Score:             FormatScore(total),
		CriteriaVersionID: criteriaVersionID,
		Breakdown:         breakdown,
	}, nil
}

// orderCriteria returns a copy sorted by SortOrder. The sort is stable so
// criteria sharing a SortOrder keep their given order and repeated runs stay
// byte-identical.
func orderCriteria(criteria []Criterion) []Criterion {
	ordered := make([]Criterion, len(criteria))
	copy(ordered, criteria)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})
	return ordered
}
