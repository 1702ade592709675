package aggregator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a read-only derived view of a symbol's open accumulator:
// the candle as it stands so far. The same in-progress bucket may be
// snapshotted many times before it closes.
type Snapshot struct {
	Symbol     string          `json:"symbol"`
	BucketTS   time.Time       `json:"bucket_ts"`
	Open       decimal.Decimal `json:"open"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Close      decimal.Decimal `json:"close"`
	Volume     decimal.Decimal `json:"volume"`
	BuyVolume  decimal.Decimal `json:"buy_volume"`
	SellVolume decimal.Decimal `json:"sell_volume"`
	TradeCount int64           `json:"trade_count"`
}

// Snapshot returns the current open accumulator view for one symbol.
// The second return is false when no bucket is open for the symbol.
func (a *Aggregator) Snapshot(symbol string) (*Snapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	acc, ok := a.open[symbol]
	if !ok || len(acc.trades) == 0 {
		return nil, false
	}
	return a.snapshotLocked(symbol, acc), true
}

// Snapshots returns views of every open accumulator, sorted by symbol.
func (a *Aggregator) Snapshots() []*Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snaps := make([]*Snapshot, 0, len(a.open))
	for symbol, acc := range a.open {
		if len(acc.trades) == 0 {
			continue
		}
		snaps = append(snaps, a.snapshotLocked(symbol, acc))
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Symbol < snaps[j].Symbol })
	return snaps
}

// snapshotLocked builds the derived view. Caller must hold at least a read lock.
func (a *Aggregator) snapshotLocked(symbol string, acc *accumulator) *Snapshot {
	stats := fold(acc.trades)
	return &Snapshot{
		Symbol:     symbol,
		BucketTS:   a.bucketStart(acc.key),
		Open:       acc.trades[0].Price,
		High:       stats.high,
		Low:        stats.low,
		Close:      acc.trades[len(acc.trades)-1].Price,
		Volume:     stats.volume,
		BuyVolume:  stats.buyVolume,
		SellVolume: stats.sellVolume,
		TradeCount: int64(len(acc.trades)),
	}
}
