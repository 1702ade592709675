// Package ingester consumes normalized trades from Kafka, folds them into
// candle buckets, and hands finalized candles to an async storage writer.
package ingester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"candlecast/internal/aggregator"
	"candlecast/internal/models"
)

// FetchTimeout bounds a single Kafka fetch so the loop stays responsive
// to shutdown.
const FetchTimeout = time.Second

// Ingester consumes trades from Kafka and feeds the bucket aggregator.
//
// Ordering within a symbol is preserved because the collector keys messages
// by symbol, so one partition carries all of a symbol's trades in order.
// Persistence is dispatched through the writer and never blocks ingestion.
type Ingester struct {
	reader *kafka.Reader
	agg    *aggregator.Aggregator
	writer *Writer
	logger *slog.Logger

	// warnLimit throttles malformed-trade warnings so a corrupted stream
	// can't flood the logs.
	warnLimit *rate.Limiter
}

// NewIngester creates a new Ingester with the provided dependencies.
// Uses dependency injection for testability - it receives tools, doesn't create them.
func NewIngester(reader *kafka.Reader, agg *aggregator.Aggregator, writer *Writer, logger *slog.Logger) *Ingester {
	return &Ingester{
		reader:    reader,
		agg:       agg,
		writer:    writer,
		logger:    logger,
		warnLimit: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Start runs the main ingestion loop. It blocks until the context is
// cancelled or a data-integrity error occurs.
//
// The loop:
//  1. Fetches messages from Kafka
//  2. Parses JSON into Trade models (malformed trades are dropped)
//  3. Folds the trade into the aggregator
//  4. Enqueues any finalized candle on the writer
//  5. Commits the Kafka offset
func (ig *Ingester) Start(ctx context.Context) error {
	ig.logger.Info("starting ingestion loop",
		"topic", ig.reader.Config().Topic, "group", ig.reader.Config().GroupID)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			fetchCtx, cancel := context.WithTimeout(ctx, FetchTimeout)
			m, err := ig.reader.FetchMessage(fetchCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				if errors.Is(err, context.Canceled) {
					return nil
				}
				ig.logger.Error("kafka fetch error", "error", err)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Second):
				}
				continue
			}

			trade, err := ig.transform(m.Value)
			if err != nil {
				if ig.warnLimit.Allow() {
					ig.logger.Warn("dropping malformed trade", "error", err)
				}
				// Still commit: a bad message is consumed, not retried.
				ig.commit(ctx, m)
				continue
			}

			candle, err := ig.agg.Ingest(trade)
			if err != nil {
				// Only data-integrity violations surface here; they signal
				// upstream feed corruption and are not recovered.
				return fmt.Errorf("ingest trade: %w", err)
			}
			if candle != nil {
				ig.writer.Enqueue(candle)
			}

			ig.commit(ctx, m)
		}
	}
}

func (ig *Ingester) commit(ctx context.Context, m kafka.Message) {
	if err := ig.reader.CommitMessages(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
		ig.logger.Warn("failed to commit offset", "error", err)
	}
}

// transform parses and validates one wire message into a Trade.
// Numeric fields arrive as strings and are parsed defensively: any
// malformed or non-positive value rejects the single trade.
func (ig *Ingester) transform(value []byte) (*models.Trade, error) {
	var msg models.TradeMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return nil, fmt.Errorf("decode trade message: %w", err)
	}

	if msg.Symbol == "" {
		return nil, fmt.Errorf("missing symbol")
	}
	if msg.EventTime <= 0 {
		return nil, fmt.Errorf("missing event time")
	}

	price, err := decimal.NewFromString(msg.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", msg.Price, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("non-positive price %q", msg.Price)
	}

	qty, err := decimal.NewFromString(msg.Qty)
	if err != nil {
		return nil, fmt.Errorf("parse qty %q: %w", msg.Qty, err)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("non-positive qty %q", msg.Qty)
	}

	side := models.SideBuy
	if msg.BuyerIsMaker {
		side = models.SideSell
	}

	return &models.Trade{
		Symbol:    msg.Symbol,
		Price:     price,
		Quantity:  qty,
		Side:      side,
		EventTime: msg.EventTime,
	}, nil
}
