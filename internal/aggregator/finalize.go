package aggregator

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"candlecast/internal/models"
	storagemodels "candlecast/internal/storage/models"
)

// ErrNonPositiveOpen means a bucket opened at a zero or negative price.
// The feed guarantees positive prices, so this signals upstream corruption;
// the bucket's finalize is aborted rather than emitting a bogus move percent.
var ErrNonPositiveOpen = errors.New("non-positive open price")

// foldStats is the running fold over a sequence of trades: high/low prices
// and the volume partition by taker side.
type foldStats struct {
	high       decimal.Decimal
	low        decimal.Decimal
	volume     decimal.Decimal
	buyVolume  decimal.Decimal
	sellVolume decimal.Decimal
}

// fold computes the stats over trades in arrival order.
// Requires at least one trade.
func fold(trades []*models.Trade) foldStats {
	s := foldStats{
		high: trades[0].Price,
		low:  trades[0].Price,
	}
	for _, t := range trades {
		if t.Price.GreaterThan(s.high) {
			s.high = t.Price
		}
		if t.Price.LessThan(s.low) {
			s.low = t.Price
		}
		s.volume = s.volume.Add(t.Quantity)
		if t.Side == models.SideBuy {
			s.buyVolume = s.buyVolume.Add(t.Quantity)
		} else {
			s.sellVolume = s.sellVolume.Add(t.Quantity)
		}
	}
	return s
}

// finalize converts a closing accumulator into an immutable candle.
//
// Buckets with fewer than MinTrades samples return (nil, nil): dropped, not
// stored as degenerate records. Open and close are the first and last trades
// by arrival order. Caller must hold the aggregator lock.
func (a *Aggregator) finalize(symbol string, acc *accumulator) (*storagemodels.Candle, error) {
	if len(acc.trades) < a.cfg.MinTrades {
		a.logger.Debug("dropping thin bucket",
			"symbol", symbol, "bucket_key", acc.key, "trades", len(acc.trades))
		return nil, nil
	}

	open := acc.trades[0].Price
	close := acc.trades[len(acc.trades)-1].Price

	if !open.IsPositive() {
		return nil, fmt.Errorf("finalize %s bucket %d: %w: open=%s",
			symbol, acc.key, ErrNonPositiveOpen, open)
	}

	stats := fold(acc.trades)
	move := close.Sub(open)

	return &storagemodels.Candle{
		Symbol:      symbol,
		BucketTS:    a.bucketStart(acc.key),
		Open:        open,
		High:        stats.high,
		Low:         stats.low,
		Close:       close,
		Volume:      stats.volume,
		BuyVolume:   stats.buyVolume,
		SellVolume:  stats.sellVolume,
		TradeCount:  int64(len(acc.trades)),
		Move:        move,
		MovePercent: move.Div(open).Mul(decimal.NewFromInt(100)),
		InsertedAt:  time.Now().UTC(),
	}, nil
}
