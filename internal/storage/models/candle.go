// Package models defines the database models.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents one finalized fixed-width OHLCV bucket in Postgres.
// A candle is immutable once written; the (symbol, bucket_ts) pair is the
// primary key and writing the same key twice violates the table constraint.
type Candle struct {
	// Symbol is the trading pair (e.g., "btcusdt").
	Symbol string `gorm:"column:symbol;primaryKey" json:"symbol"`

	// BucketTS is the bucket start instant.
	BucketTS time.Time `gorm:"column:bucket_ts;primaryKey" json:"bucket_ts"`

	// Open is the price of the first trade in the bucket (arrival order).
	Open decimal.Decimal `gorm:"column:open;type:numeric" json:"open"`

	// High is the highest trade price in the bucket.
	High decimal.Decimal `gorm:"column:high;type:numeric" json:"high"`

	// Low is the lowest trade price in the bucket.
	Low decimal.Decimal `gorm:"column:low;type:numeric" json:"low"`

	// Close is the price of the last trade in the bucket (arrival order).
	Close decimal.Decimal `gorm:"column:close;type:numeric" json:"close"`

	// Volume is the total base quantity traded in the bucket.
	Volume decimal.Decimal `gorm:"column:volume;type:numeric" json:"volume"`

	// BuyVolume is the taker-buy portion of Volume.
	BuyVolume decimal.Decimal `gorm:"column:buy_volume;type:numeric" json:"buy_volume"`

	// SellVolume is the taker-sell portion of Volume.
	SellVolume decimal.Decimal `gorm:"column:sell_volume;type:numeric" json:"sell_volume"`

	// TradeCount is the number of trades folded into the bucket.
	TradeCount int64 `gorm:"column:trade_count" json:"trade_count"`

	// Move is Close minus Open.
	Move decimal.Decimal `gorm:"column:move;type:numeric" json:"move"`

	// MovePercent is Move divided by Open, times 100.
	MovePercent decimal.Decimal `gorm:"column:move_percent;type:numeric" json:"move_percent"`

	// InsertedAt is when the candle was written to the database.
	InsertedAt time.Time `gorm:"column:inserted_at;default:now()" json:"inserted_at"`
}

func (Candle) TableName() string {
	return "candle"
}
