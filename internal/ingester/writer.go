package ingester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"candlecast/internal/storage"
	"candlecast/internal/storage/models"
)

// WriterConfig holds async writer settings.
type WriterConfig struct {
	// BatchSize is the maximum number of candles to accumulate before flushing.
	BatchSize int

	// FlushTimeout is the maximum time to wait before flushing, even if the
	// batch isn't full.
	FlushTimeout time.Duration

	// QueueSize is the capacity of the finalized-candle queue. When the
	// queue is full, new candles are dropped with a warning rather than
	// blocking ingestion.
	QueueSize int

	// RetryBase is the initial backoff for failed inserts.
	RetryBase time.Duration

	// MaxRetries bounds insert retries before the batch is dropped.
	MaxRetries uint64
}

// Writer persists finalized candles asynchronously so a slow database never
// stalls trade ingestion.
//
// Transient write failures are retried with exponential backoff and, if the
// retries are exhausted, the batch is dropped with a warning: durability
// escalation is the sink's concern, losing a candle never halts aggregation.
// A duplicate-key failure is different: it means the same bucket was
// finalized twice, which is a boundary-detection bug, and Start returns the
// error instead of swallowing it.
type Writer struct {
	storage storage.CandleStorage
	logger  *slog.Logger
	cfg     WriterConfig
	in      chan *models.Candle
}

// NewWriter creates a Writer. Zero config fields get conservative defaults.
func NewWriter(st storage.CandleStorage, logger *slog.Logger, cfg WriterConfig) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 2 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	return &Writer{
		storage: st,
		logger:  logger,
		cfg:     cfg,
		in:      make(chan *models.Candle, cfg.QueueSize),
	}
}

// Enqueue hands a finalized candle to the writer without blocking.
func (w *Writer) Enqueue(c *models.Candle) {
	select {
	case w.in <- c:
	default:
		w.logger.Warn("writer queue full, dropping candle",
			"symbol", c.Symbol, "bucket_ts", c.BucketTS)
	}
}

// Start runs the flush loop until the context is cancelled. Remaining
// buffered candles are flushed on shutdown.
func (w *Writer) Start(ctx context.Context) error {
	batch := make([]*models.Candle, 0, w.cfg.BatchSize)

	ticker := time.NewTicker(w.cfg.FlushTimeout)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := w.insertWithRetry(ctx, batch)
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// Same (symbol, bucket_ts) finalized twice: integrity violation.
			return fmt.Errorf("duplicate candle key: %w", err)
		case err != nil && !errors.Is(err, context.Canceled):
			w.logger.Warn("dropping candle batch after retries",
				"error", err, "count", len(batch))
		}
		batch = batch[:0]
		ticker.Reset(w.cfg.FlushTimeout)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			// Best-effort final flush with a fresh deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return w.finalFlush(flushCtx, batch)

		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}

		case c := <-w.in:
			batch = append(batch, c)
			if len(batch) >= w.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// insertWithRetry writes one batch, retrying transient failures with
// exponential backoff. Duplicate-key errors are returned immediately.
func (w *Writer) insertWithRetry(ctx context.Context, batch []*models.Candle) error {
	backoff := retry.WithMaxRetries(w.cfg.MaxRetries, retry.NewExponential(w.cfg.RetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := w.storage.CreateCandles(ctx, batch)
		if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		w.logger.Warn("candle insert failed, retrying", "error", err, "count", len(batch))
		return retry.RetryableError(err)
	})
}

// finalFlush drains the queue and writes everything left, once, on shutdown.
func (w *Writer) finalFlush(ctx context.Context, batch []*models.Candle) error {
	for {
		select {
		case c := <-w.in:
			batch = append(batch, c)
			continue
		default:
		}
		break
	}
	if len(batch) == 0 {
		return nil
	}
	if err := w.insertWithRetry(ctx, batch); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("final flush: %w", err)
	}
	return nil
}
