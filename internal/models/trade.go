// Package models defines the domain models used across the application.
package models

import (
	"github.com/shopspring/decimal"
)

// Side is the taker side of a trade.
type Side string

const (
	// SideBuy means the taker bought (aggressive buy).
	SideBuy Side = "buy"

	// SideSell means the taker sold (aggressive sell).
	SideSell Side = "sell"
)

// Trade represents a single executed trade, normalized from the exchange feed.
// Trades are ephemeral: they exist only to be folded into a candle bucket and
// are never stored individually.
type Trade struct {
	// Symbol is the trading pair (e.g., "btcusdt").
	Symbol string

	// Price is the trade price in quote currency.
	Price decimal.Decimal

	// Quantity is the quantity of base currency traded.
	Quantity decimal.Decimal

	// Side is the taker side of the trade.
	Side Side

	// EventTime is the exchange timestamp in milliseconds.
	EventTime int64
}
