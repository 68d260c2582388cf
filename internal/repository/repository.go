package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"suitability/internal/models"
)

// Repository is the storage surface of the scoring service. The core scoring
// package never sees it; services adapt its rows into core types and its
// event table into the core's EventEmitter/EventSource capabilities.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Criteria versions and rules.
	CreateCriteriaVersionTx(ctx context.Context, tx *gorm.DB, version *models.CriteriaVersion, criteria []models.Criterion) error
	GetCriteriaVersionByID(ctx context.Context, id string) (*models.CriteriaVersion, error)
	GetActiveCriteriaVersion(ctx context.Context) (*models.CriteriaVersion, error)
	ListCriteriaVersions(ctx context.Context, params ListCriteriaVersionsParams) ([]models.CriteriaVersion, error)
	ActivateCriteriaVersion(ctx context.Context, id string) error
	ListCriteriaByVersionID(ctx context.Context, versionID string) ([]models.Criterion, error)

	// Assets and their fundamental snapshots.
	UpsertAsset(ctx context.Context, item *models.Asset) error
	GetAssetByID(ctx context.Context, id string) (*models.Asset, error)
	ListAssets(ctx context.Context, params ListAssetsParams) ([]models.Asset, error)
	UpsertFundamentals(ctx context.Context, items []models.Fundamental) error
	ListFundamentalsByAssetIDs(ctx context.Context, assetIDs []string) ([]models.Fundamental, error)

	// Latest price/rate snapshots captured into the audit trail.
	UpsertPrice(ctx context.Context, item *models.Price) error
	ListPrices(ctx context.Context) ([]models.Price, error)
	UpsertExchangeRate(ctx context.Context, item *models.ExchangeRate) error
	ListExchangeRates(ctx context.Context) ([]models.ExchangeRate, error)

	// Calculation event log: append-only, read back for replay.
	InsertCalculationEvent(ctx context.Context, item *models.CalculationEvent) error
	ListCalculationEventsByCorrelationID(ctx context.Context, correlationID string) ([]models.CalculationEvent, error)
	GetLatestCalculationEvent(ctx context.Context, userID string, eventType string) (*models.CalculationEvent, error)
	DeleteCalculationEventsBefore(ctx context.Context, before time.Time) (int64, error)
}

type ListCriteriaVersionsParams struct {
	Status *string
	Limit  int
	Offset int
}

type ListAssetsParams struct {
	ActiveOnly bool
	Symbol     *string
	Limit      int
	Offset     int
}
