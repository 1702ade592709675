// Package feed streams raw trades from the exchange WebSocket API,
// normalizes them, and publishes them to Kafka.
package feed

import (
	"encoding/json"
	"fmt"
	"strings"

	"candlecast/internal/models"
)

// tradePayload matches one frame of Binance's <symbol>@trade stream.
type tradePayload struct {
	EventType    string `json:"e"`
	Symbol       string `json:"s"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	BuyerIsMaker bool   `json:"m"`
}

// StreamURL builds the WebSocket URL for one symbol's trade stream,
// e.g. wss://stream.binance.com:9443/ws/btcusdt@trade.
func StreamURL(baseURL, symbol string) string {
	return fmt.Sprintf("%s/%s@trade", strings.TrimRight(baseURL, "/"), strings.ToLower(symbol))
}

// normalizeTrade converts a raw frame into the wire message published to
// Kafka. Numeric fields stay strings; the aggregator parses them
// defensively on its side. Frames that aren't trade events or are missing
// required fields are rejected.
func normalizeTrade(raw []byte) (*models.TradeMessage, error) {
	var p tradePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode trade frame: %w", err)
	}

	if p.EventType != "trade" {
		return nil, fmt.Errorf("unexpected event type %q", p.EventType)
	}
	if p.Symbol == "" || p.Price == "" || p.Quantity == "" || p.TradeTime <= 0 {
		return nil, fmt.Errorf("incomplete trade frame: symbol=%q", p.Symbol)
	}

	return &models.TradeMessage{
		Symbol:       strings.ToLower(p.Symbol),
		Price:        p.Price,
		Qty:          p.Quantity,
		BuyerIsMaker: p.BuyerIsMaker,
		EventTime:    p.TradeTime,
	}, nil
}
