// Package storage provides database persistence for finalized candles.
package storage

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"candlecast/internal/storage/models"
)

// CandleStorage defines the interface for persisting finalized candles.
// Implementations must be safe for concurrent use.
type CandleStorage interface {
	// CreateCandles inserts a batch of candles. Inserting a candle whose
	// (symbol, bucket_ts) key already exists returns gorm.ErrDuplicatedKey.
	CreateCandles(ctx context.Context, candles []*models.Candle) error
}

// Open connects to Postgres with error translation enabled, so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

type gormCandleStorage struct {
	db *gorm.DB
}

// NewGormCandleStorage creates a candle storage backed by gorm.
func NewGormCandleStorage(db *gorm.DB) CandleStorage {
	return &gormCandleStorage{db: db}
}

func (s *gormCandleStorage) CreateCandles(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(candles).Error
}
