// Package aggregator folds individual trades into fixed-width OHLCV buckets.
//
// The aggregator holds one open accumulator per symbol. Each incoming trade
// is assigned a bucket key from its exchange timestamp; when a trade's key
// is greater than the open accumulator's key, the accumulator is finalized
// into a candle and replaced with a fresh one seeded by the incoming trade.
// Trades mapping to an already-closed bucket are dropped (no retroactive
// correction).
package aggregator

import (
	"log/slog"
	"sync"
	"time"

	"candlecast/internal/models"
	storagemodels "candlecast/internal/storage/models"
)

// Config holds aggregator settings.
type Config struct {
	// BucketWidth is the fixed candle bucket width.
	BucketWidth time.Duration

	// MinTrades is the minimum number of trades a bucket needs to be
	// finalized. Buckets with fewer samples are silently dropped: a single
	// trade cannot establish a meaningful open/close.
	MinTrades int
}

// accumulator is the open bucket state for one symbol. It holds trades in
// arrival order; every trade it holds maps to the same bucket key. An
// accumulator is replaced, never merged, when the key changes.
type accumulator struct {
	key    int64
	trades []*models.Trade
}

// Aggregator maintains one open bucket accumulator per symbol.
//
// Ingest is the single writer of accumulator state; Snapshot and Snapshots
// are concurrent readers that observe a consistent view. Symbols are fully
// independent: closing one symbol's bucket never touches another's.
type Aggregator struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.RWMutex
	open map[string]*accumulator

	// lateTrades counts trades dropped because their bucket already closed.
	lateTrades uint64
}

// New creates an Aggregator. A zero or negative bucket width defaults to one
// second; MinTrades below 1 defaults to 2.
func New(cfg Config, logger *slog.Logger) *Aggregator {
	if cfg.BucketWidth <= 0 {
		cfg.BucketWidth = time.Second
	}
	if cfg.MinTrades < 1 {
		cfg.MinTrades = 2
	}
	return &Aggregator{
		cfg:    cfg,
		logger: logger,
		open:   make(map[string]*accumulator),
	}
}

// Ingest folds one trade into the symbol's open accumulator.
//
// It returns a non-nil candle exactly when the trade's bucket key is greater
// than the open accumulator's key and the closing bucket meets the
// minimum-sample policy. The returned candle is ready to persist; the caller
// decides how. Trades whose key is lower than the open key are dropped.
func (a *Aggregator) Ingest(t *models.Trade) (*storagemodels.Candle, error) {
	key := t.EventTime / a.cfg.BucketWidth.Milliseconds()

	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.open[t.Symbol]
	switch {
	case !ok:
		a.open[t.Symbol] = &accumulator{key: key, trades: []*models.Trade{t}}
		return nil, nil

	case key == acc.key:
		acc.trades = append(acc.trades, t)
		return nil, nil

	case key < acc.key:
		// Late arrival for an already-closed bucket. Defined behavior, not
		// an error: the bucket is never reopened.
		a.lateTrades++
		a.logger.Debug("dropping late trade",
			"symbol", t.Symbol, "trade_key", key, "open_key", acc.key)
		return nil, nil

	default:
		candle, err := a.finalize(t.Symbol, acc)
		a.open[t.Symbol] = &accumulator{key: key, trades: []*models.Trade{t}}
		return candle, err
	}
}

// LateTrades returns the number of trades dropped as late arrivals.
func (a *Aggregator) LateTrades() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lateTrades
}

// bucketStart converts a bucket key back to the bucket's start instant.
func (a *Aggregator) bucketStart(key int64) time.Time {
	return time.UnixMilli(key * a.cfg.BucketWidth.Milliseconds()).UTC()
}
