package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"suitability/internal/repository"
	"suitability/internal/scoring"
)

// ErrNoCriteriaVersion means no usable criteria version exists: either the
// requested id is unknown or nothing has been activated yet.
var ErrNoCriteriaVersion = errors.New("no criteria version available")

// CalculationService runs audited scoring over the stored rule set and
// asset universe, and reads results back out of the event log.
type CalculationService struct {
	Repo   repository.Repository
	Runner *scoring.Runner
	Logger *zap.Logger
}

// Run scores every active asset against the given criteria version (the
// active one when versionID is empty), emitting the full audit sequence.
func (s *CalculationService) Run(ctx context.Context, userID string, versionID string) (*scoring.RunOutput, error) {
	if s == nil || s.Repo == nil || s.Runner == nil {
		return nil, errors.New("calculation service not wired")
	}

	version, err := s.resolveVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	criteriaRows, err := s.Repo.ListCriteriaByVersionID(ctx, version.ID)
	if err != nil {
		return nil, fmt.Errorf("load criteria for version %s: %w", version.ID, err)
	}
	criteria, err := toCoreCriteria(criteriaRows)
	if err != nil {
		return nil, err
	}

	assets, err := s.Repo.ListAssets(ctx, repository.ListAssetsParams{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	assetIDs := make([]string, 0, len(assets))
	for _, a := range assets {
		assetIDs = append(assetIDs, a.ID)
	}
	fundamentals, err := s.Repo.ListFundamentalsByAssetIDs(ctx, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("load fundamentals: %w", err)
	}

	prices, err := s.Repo.ListPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	rates, err := s.Repo.ListExchangeRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exchange rates: %w", err)
	}

	out, err := s.Runner.CalculateScoresWithEvents(
		ctx,
		scoring.RunContext{UserID: userID, CriteriaVersionID: version.ID},
		criteria,
		toAssetInputs(assets, fundamentals),
		toPriceQuotes(prices, assets),
		toRateQuotes(rates),
	)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("calculation run completed",
			zap.String("correlation_id", out.CorrelationID),
			zap.String("user_id", userID),
			zap.String("criteria_version_id", version.ID),
			zap.Int("assets", len(assets)),
			zap.Int("criteria", len(criteria)),
		)
	}
	return out, nil
}

// LatestScores is the most recent SCORES_COMPUTED event for a user.
type LatestScores struct {
	CorrelationID string                `json:"correlationId"`
	ComputedAt    time.Time             `json:"computedAt"`
	Results       []scoring.ScoreResult `json:"results"`
}

func (s *CalculationService) LatestScores(ctx context.Context, userID string) (*LatestScores, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("calculation service not wired")
	}
	ev, err := s.Repo.GetLatestCalculationEvent(ctx, userID, string(scoring.EventScoresComputed))
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: user %s", scoring.ErrNoEvents, userID)
	}
	var payload scoring.ScoresComputedPayload
	if err := json.Unmarshal([]byte(ev.Payload), &payload); err != nil {
		return nil, fmt.Errorf("decode scores for %s: %w", ev.CorrelationID, err)
	}
	return &LatestScores{
		CorrelationID: ev.CorrelationID,
		ComputedAt:    ev.OccurredAt,
		Results:       payload.Results,
	}, nil
}

func (s *CalculationService) resolveVersion(ctx context.Context, versionID string) (*versionRef, error) {
	if versionID != "" {
		v, err := s.Repo.GetCriteriaVersionByID(ctx, versionID)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoCriteriaVersion, versionID)
		}
		return &versionRef{ID: v.ID}, nil
	}
	v, err := s.Repo.GetActiveCriteriaVersion(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: no active version", ErrNoCriteriaVersion)
	}
	return &versionRef{ID: v.ID}, nil
}

type versionRef struct {
	ID string
}
