package models

// TradeMessage is the JSON wire format published to Kafka by the collector.
// Price and quantity are kept as strings until the aggregator parses them,
// matching the exchange payload convention. Validation happens on the
// consuming side; the collector only renames fields.
type TradeMessage struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Qty    string `json:"qty"`

	// BuyerIsMaker reports the maker side as delivered by the exchange:
	// true means the buyer was the maker, i.e. the taker sold.
	BuyerIsMaker bool `json:"buyer_is_maker"`

	// EventTime is the exchange trade timestamp in milliseconds.
	EventTime int64 `json:"event_time"`
}
