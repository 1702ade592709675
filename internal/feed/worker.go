package feed

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Connection timeouts and intervals
const (
	HandshakeTimeout = 4 * time.Second
	ReadTimeout      = 60 * time.Second
	WriteTimeout     = 10 * time.Second

	InitialReconnectDelay = time.Second
	MaxReconnectDelay     = 30 * time.Second
)

// Worker manages the trade stream WebSocket connection for one symbol and
// forwards normalized trades to Kafka. Malformed frames are dropped; the
// aggregator re-validates everything downstream anyway.
type Worker struct {
	baseURL  string
	symbol   string
	producer *Producer
	logger   *logrus.Logger
}

// NewWorker creates a worker for one symbol's trade stream.
func NewWorker(baseURL, symbol string, producer *Producer, logger *logrus.Logger) *Worker {
	return &Worker{
		baseURL:  baseURL,
		symbol:   symbol,
		producer: producer,
		logger:   logger,
	}
}

// Run keeps the stream connected until the context is cancelled,
// reconnecting with exponential backoff on errors.
func (w *Worker) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	workerID := fmt.Sprintf("Worker-%s", w.symbol)
	w.logger.Infof("[%s] Starting trade stream", workerID)

	reconnectDelay := InitialReconnectDelay

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("[%s] Shutting down due to context cancellation", workerID)
			return
		default:
			if err := w.handleConnection(ctx, workerID); err != nil {
				w.logger.Errorf("[%s] WebSocket error: %v. Reconnecting in %s...",
					workerID, err, reconnectDelay)

				select {
				case <-ctx.Done():
					return
				case <-time.After(reconnectDelay):
				}

				// Exponential backoff with max limit
				reconnectDelay *= 2
				if reconnectDelay > MaxReconnectDelay {
					reconnectDelay = MaxReconnectDelay
				}
				continue
			}
			reconnectDelay = InitialReconnectDelay
		}
	}
}

// handleConnection manages a single WebSocket connection lifecycle.
func (w *Worker) handleConnection(ctx context.Context, workerID string) error {
	u, err := url.Parse(StreamURL(w.baseURL, w.symbol))
	if err != nil {
		return fmt.Errorf("invalid WebSocket URL: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: HandshakeTimeout,
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to WebSocket: %w", err)
	}
	defer conn.Close()

	w.logger.Infof("[%s] Connected to WebSocket", workerID)

	// The exchange pings at its own cadence; answer with pongs and extend
	// the read deadline on every frame so idle detection still works.
	conn.SetReadDeadline(time.Now().Add(ReadTimeout))
	conn.SetPingHandler(func(message string) error {
		conn.SetReadDeadline(time.Now().Add(ReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(WriteTimeout))
	})

	readErrors := make(chan error, 1)
	messages := make(chan []byte, 100)

	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				readErrors <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(ReadTimeout))
			select {
			case messages <- raw:
			default:
				w.logger.Warnf("[%s] Message buffer full, dropping frame", workerID)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErrors:
			return fmt.Errorf("read error: %w", err)
		case raw := <-messages:
			msg, err := normalizeTrade(raw)
			if err != nil {
				w.logger.Debugf("[%s] Skipping frame: %v", workerID, err)
				continue
			}
			if err := w.producer.Publish(msg); err != nil {
				w.logger.Errorf("[%s] Failed to publish trade: %v", workerID, err)
			}
		}
	}
}
