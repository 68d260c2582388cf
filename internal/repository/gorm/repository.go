package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"suitability/internal/models"
	"suitability/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Criteria ----------------------------------------------------------------

func (s *Store) CreateCriteriaVersionTx(ctx context.Context, tx *gorm.DB, version *models.CriteriaVersion, criteria []models.Criterion) error {
	if s == nil || version == nil {
		return nil
	}
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}
	if err := tx.Create(version).Error; err != nil {
		return err
	}
	if len(criteria) == 0 {
		return nil
	}
	for i := range criteria {
		criteria[i].VersionID = version.ID
	}
	return tx.Create(&criteria).Error
}

func (s *Store) GetCriteriaVersionByID(ctx context.Context, id string) (*models.CriteriaVersion, error) {
	if s == nil || s.db == nil || strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var item models.CriteriaVersion
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetActiveCriteriaVersion(ctx context.Context) (*models.CriteriaVersion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.CriteriaVersion
	err := s.db.WithContext(ctx).
		Where("status = ?", models.VersionStatusActive).
		Order("updated_at DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCriteriaVersions(ctx context.Context, params repository.ListCriteriaVersionsParams) ([]models.CriteriaVersion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.CriteriaVersion{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	var items []models.CriteriaVersion
	err := query.
		Order("created_at DESC").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ActivateCriteriaVersion archives the currently active version and promotes
// the given one, atomically.
func (s *Store) ActivateCriteriaVersion(ctx context.Context, id string) error {
	if s == nil || s.db == nil || strings.TrimSpace(id) == "" {
		return nil
	}
	return s.InTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.CriteriaVersion{}).
			Where("status = ?", models.VersionStatusActive).
			Update("status", models.VersionStatusArchived).Error; err != nil {
			return err
		}
		res := tx.Model(&models.CriteriaVersion{}).
			Where("id = ?", id).
			Update("status", models.VersionStatusActive)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (s *Store) ListCriteriaByVersionID(ctx context.Context, versionID string) ([]models.Criterion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Criterion
	err := s.db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("sort_order ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Assets ------------------------------------------------------------------

func (s *Store) UpsertAsset(ctx context.Context, item *models.Asset) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "active", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) GetAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	if s == nil || s.db == nil || strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var item models.Asset
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListAssets(ctx context.Context, params repository.ListAssetsParams) ([]models.Asset, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Asset{})
	if params.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.TrimSpace(*params.Symbol))
	}
	var items []models.Asset
	err := query.
		Order("symbol ASC").
		Limit(normalizeLimit(params.Limit, 500)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertFundamentals(ctx context.Context, items []models.Fundamental) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "metric"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "as_of", "updated_at"}),
	}).Create(&items).Error
}

func (s *Store) ListFundamentalsByAssetIDs(ctx context.Context, assetIDs []string) ([]models.Fundamental, error) {
	if s == nil || s.db == nil || len(assetIDs) == 0 {
		return nil, nil
	}
	var items []models.Fundamental
	err := s.db.WithContext(ctx).
		Where("asset_id IN ?", assetIDs).
		Order("asset_id ASC, metric ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Prices and rates --------------------------------------------------------

func (s *Store) UpsertPrice(ctx context.Context, item *models.Price) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "currency", "as_of", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListPrices(ctx context.Context) ([]models.Price, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Price
	if err := s.db.WithContext(ctx).Order("asset_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertExchangeRate(ctx context.Context, item *models.ExchangeRate) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base"}, {Name: "quote"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "as_of", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListExchangeRates(ctx context.Context) ([]models.ExchangeRate, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ExchangeRate
	if err := s.db.WithContext(ctx).Order("base ASC, quote ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Calculation events ------------------------------------------------------

func (s *Store) InsertCalculationEvent(ctx context.Context, item *models.CalculationEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListCalculationEventsByCorrelationID(ctx context.Context, correlationID string) ([]models.CalculationEvent, error) {
	if s == nil || s.db == nil || strings.TrimSpace(correlationID) == "" {
		return nil, nil
	}
	var items []models.CalculationEvent
	err := s.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetLatestCalculationEvent(ctx context.Context, userID string, eventType string) (*models.CalculationEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.CalculationEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Order("id DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteCalculationEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.CalculationEvent{})
	return res.RowsAffected, res.Error
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
