// Package repository implements database access for the candle query API.
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"candlecast/internal/storage/models"
)

// MaxRows caps every query result to bound response size. The cap applies
// after filtering and sorting.
const MaxRows = 1000

// DefaultSortField is used when a requested sort field isn't allow-listed.
const DefaultSortField = "volume"

// sortColumns is the allow-list of sortable fields, mapped to column names.
// Order clauses are only ever built from this map's values; user input is
// never interpolated into SQL.
var sortColumns = map[string]string{
	"volume":       "volume",
	"buy_volume":   "buy_volume",
	"sell_volume":  "sell_volume",
	"move":         "move",
	"move_percent": "move_percent",
	"trade_count":  "trade_count",
	"bucket_ts":    "bucket_ts",
}

// SortableField reports whether the field may be sorted on.
func SortableField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// CandleFilter carries normalized query parameters. SortBy must already be
// allow-listed by the service layer; the repository falls back to the
// default column for anything else.
type CandleFilter struct {
	Symbol     string
	Start      *time.Time
	End        *time.Time
	SortBy     string
	Descending bool
}

// CandleRepository reads finalized candles.
type CandleRepository interface {
	ListCandles(ctx context.Context, filter CandleFilter) ([]models.Candle, error)
}

type gormCandleRepository struct {
	db *gorm.DB
}

// NewGormCandleRepository creates a candle repository backed by gorm.
func NewGormCandleRepository(db *gorm.DB) CandleRepository {
	return &gormCandleRepository{db: db}
}

func (r *gormCandleRepository) ListCandles(ctx context.Context, filter CandleFilter) ([]models.Candle, error) {
	query := r.db.WithContext(ctx).Model(&models.Candle{})

	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	// Bounds are inclusive on both ends; either may be absent.
	if filter.Start != nil {
		query = query.Where("bucket_ts >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("bucket_ts <= ?", *filter.End)
	}

	candles := []models.Candle{}
	err := query.
		Order(OrderClause(filter.SortBy, filter.Descending)).
		Limit(MaxRows).
		Find(&candles).Error
	if err != nil {
		return nil, err
	}
	return candles, nil
}

// OrderClause builds the ORDER BY expression from the allow-list.
func OrderClause(sortBy string, descending bool) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns[DefaultSortField]
	}
	if descending {
		return column + " DESC"
	}
	return column + " ASC"
}
