package aggregator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"candlecast/internal/models"
)

func TestFinalizeNonPositiveOpenIsFatal(t *testing.T) {
	// A zero open price signals upstream feed corruption: finalize must
	// abort with a typed error instead of emitting Inf/NaN move percent.
	agg := newTestAggregator(t)

	zeroPrice := &models.Trade{
		Symbol:    "btcusdt",
		Price:     decimal.Zero,
		Quantity:  decimal.NewFromInt(1),
		Side:      models.SideBuy,
		EventTime: 1000,
	}
	if _, err := agg.Ingest(zeroPrice); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := agg.Ingest(trade("btcusdt", "100", "1", models.SideBuy, 1500)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	candle, err := agg.Ingest(trade("btcusdt", "101", "1", models.SideBuy, 2500))
	if err == nil {
		t.Fatal("Expected finalize to fail on non-positive open")
	}
	if !errors.Is(err, ErrNonPositiveOpen) {
		t.Errorf("Expected ErrNonPositiveOpen, got %v", err)
	}
	if candle != nil {
		t.Errorf("Expected no candle on aborted finalize, got %+v", candle)
	}

	// The new bucket still opened with the crossing trade.
	snap, ok := agg.Snapshot("btcusdt")
	if !ok {
		t.Fatal("Expected a new open bucket after aborted finalize")
	}
	if !snap.Open.Equal(decimal.RequireFromString("101")) {
		t.Errorf("Expected new bucket open 101, got %s", snap.Open)
	}
}

func TestMovePercentPrecision(t *testing.T) {
	agg := newTestAggregator(t)

	agg.Ingest(trade("btcusdt", "3", "1", models.SideBuy, 1000))
	agg.Ingest(trade("btcusdt", "4", "1", models.SideSell, 1500))
	candle, err := agg.Ingest(trade("btcusdt", "5", "1", models.SideBuy, 2500))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if candle == nil {
		t.Fatal("Expected a finalized candle")
	}

	// move = 1, open = 3: 33.33...% at decimal division precision.
	want := decimal.NewFromInt(1).Div(decimal.NewFromInt(3)).Mul(decimal.NewFromInt(100))
	if !candle.MovePercent.Equal(want) {
		t.Errorf("Expected move_percent %s, got %s", want, candle.MovePercent)
	}
}

func TestFinalizeNegativeMove(t *testing.T) {
	agg := newTestAggregator(t)

	agg.Ingest(trade("btcusdt", "200", "1", models.SideSell, 1000))
	agg.Ingest(trade("btcusdt", "150", "1", models.SideSell, 1500))
	candle, err := agg.Ingest(trade("btcusdt", "100", "1", models.SideBuy, 2500))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if candle == nil {
		t.Fatal("Expected a finalized candle")
	}

	if !candle.Move.Equal(decimal.RequireFromString("-50")) {
		t.Errorf("Expected move -50, got %s", candle.Move)
	}
	if !candle.MovePercent.Equal(decimal.RequireFromString("-25")) {
		t.Errorf("Expected move_percent -25, got %s", candle.MovePercent)
	}
	if candle.Low.GreaterThan(candle.Open) || candle.Low.GreaterThan(candle.Close) ||
		candle.High.LessThan(candle.Open) || candle.High.LessThan(candle.Close) {
		t.Error("Expected low <= {open, close} <= high")
	}
}

func TestBucketStartAlignment(t *testing.T) {
	agg := newTestAggregator(t)

	// Trades at 5.3s and 5.9s belong to the bucket starting at 5s.
	agg.Ingest(trade("btcusdt", "100", "1", models.SideBuy, 5300))
	agg.Ingest(trade("btcusdt", "101", "1", models.SideBuy, 5900))
	candle, err := agg.Ingest(trade("btcusdt", "102", "1", models.SideBuy, 6000))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if candle == nil {
		t.Fatal("Expected a finalized candle")
	}
	if !candle.BucketTS.Equal(time.UnixMilli(5000).UTC()) {
		t.Errorf("Expected bucket_ts at 5s, got %s", candle.BucketTS)
	}
}
