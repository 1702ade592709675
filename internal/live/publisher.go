package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"candlecast/internal/aggregator"
)

// Publisher periodically snapshots every open accumulator and broadcasts the
// views to hub subscribers. Its cadence is independent of bucket flushes:
// the same in-progress bucket is published many times before it closes.
type Publisher struct {
	agg      *aggregator.Aggregator
	hub      *Hub
	interval time.Duration
	logger   *slog.Logger
}

// NewPublisher creates a Publisher. A non-positive interval defaults to 500ms.
func NewPublisher(agg *aggregator.Aggregator, hub *Hub, interval time.Duration, logger *slog.Logger) *Publisher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Publisher{
		agg:      agg,
		hub:      hub,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the broadcast loop until the context is cancelled.
func (p *Publisher) Start(ctx context.Context) error {
	p.logger.Info("starting live publisher", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if p.hub.Count() == 0 {
				continue
			}
			snaps := p.agg.Snapshots()
			if len(snaps) == 0 {
				continue
			}
			payload, err := json.Marshal(snaps)
			if err != nil {
				p.logger.Error("failed to marshal snapshots", "error", err)
				continue
			}
			p.hub.Broadcast(payload)
		}
	}
}
