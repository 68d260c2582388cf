package service

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"suitability/internal/models"
	"suitability/internal/scoring"
)

func toCoreCriteria(items []models.Criterion) ([]scoring.Criterion, error) {
	out := make([]scoring.Criterion, 0, len(items))
	for _, item := range items {
		op, err := scoring.ParseOperator(item.Operator)
		if err != nil {
			return nil, fmt.Errorf("criterion %s: %w", item.ID, err)
		}
		var required []string
		if len(item.RequiredFundamentals) > 0 {
			if err := json.Unmarshal(item.RequiredFundamentals, &required); err != nil {
				return nil, fmt.Errorf("criterion %s: required fundamentals: %w", item.ID, err)
			}
		}
		c := scoring.Criterion{
			ID:                   item.ID,
			Name:                 item.Name,
			Metric:               item.Metric,
			Operator:             op,
			Value:                item.Value,
			Points:               item.Points,
			RequiredFundamentals: required,
			SortOrder:            item.SortOrder,
		}
		if item.Value2 != nil {
			v := *item.Value2
			c.Value2 = &v
		}
		out = append(out, c)
	}
	return out, nil
}

// toAssetInputs joins assets with their fundamental snapshots. A null-valued
// row stays a nil entry in the map so the evaluator sees it as absent.
func toAssetInputs(assets []models.Asset, fundamentals []models.Fundamental) []scoring.AssetInput {
	byAsset := make(map[string]map[string]*decimal.Decimal, len(assets))
	for _, f := range fundamentals {
		m, ok := byAsset[f.AssetID]
		if !ok {
			m = make(map[string]*decimal.Decimal)
			byAsset[f.AssetID] = m
		}
		if f.Value == nil {
			m[f.Metric] = nil
			continue
		}
		v := *f.Value
		m[f.Metric] = &v
	}

	out := make([]scoring.AssetInput, 0, len(assets))
	for _, a := range assets {
		m := byAsset[a.ID]
		if m == nil {
			m = make(map[string]*decimal.Decimal)
		}
		out = append(out, scoring.AssetInput{
			ID:           a.ID,
			Symbol:       a.Symbol,
			Fundamentals: m,
		})
	}
	return out
}

func toPriceQuotes(prices []models.Price, assets []models.Asset) []scoring.PriceQuote {
	symbolByID := make(map[string]string, len(assets))
	for _, a := range assets {
		symbolByID[a.ID] = a.Symbol
	}
	out := make([]scoring.PriceQuote, 0, len(prices))
	for _, p := range prices {
		out = append(out, scoring.PriceQuote{
			AssetID:  p.AssetID,
			Symbol:   symbolByID[p.AssetID],
			Price:    p.Price,
			Currency: p.Currency,
			AsOf:     p.AsOf,
		})
	}
	return out
}

func toRateQuotes(rates []models.ExchangeRate) []scoring.RateQuote {
	out := make([]scoring.RateQuote, 0, len(rates))
	for _, r := range rates {
		out = append(out, scoring.RateQuote{
			Base:  r.Base,
			Quote: r.Quote,
			Rate:  r.Rate,
			AsOf:  r.AsOf,
		})
	}
	return out
}
