package marketdata

import (
	"fmt"

	"gungnir/internal/protocol"
)

// Events on the market-data side of the venue. Public streams (trade,
// depth, ticker) fan out per symbol; order updates are private per user.
// Channel names are the pub/sub topics subscribers attach to.

type Event interface {
	// Stream is the coarse stream name, used as a metrics label.
	Stream() string
	// Channel is the pub/sub channel the event is published on.
	Channel() string
}

type TradeEvent struct {
	TradeID   uint64 `json:"trade_id"`
	Symbol    string `json:"symbol"`
	Price     uint64 `json:"price"`
	Quantity  uint64 `json:"quantity"`
	Timestamp int64  `json:"timestamp"`
}

func (TradeEvent) Stream() string { return "trade" }

func (e TradeEvent) Channel() string {
	return "market:trade:" + e.Symbol
}

type DepthEvent struct {
	Symbol    string               `json:"symbol"`
	Bids      []protocol.PriceLevel `json:"bids"`
	Asks      []protocol.PriceLevel `json:"asks"`
	LastPrice *uint64              `json:"last_price"`
	Timestamp int64                `json:"timestamp"`
}

func (DepthEvent) Stream() string { return "depth" }

func (e DepthEvent) Channel() string {
	return "market:depth:" + e.Symbol
}

type TickerEvent struct {
	Symbol             string  `json:"symbol"`
	LastPrice          uint64  `json:"last_price"`
	Open               uint64  `json:"open"`
	High               uint64  `json:"high"`
	Low                uint64  `json:"low"`
	Volume             uint64  `json:"volume"`
	PriceChange        int64   `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	Timestamp          int64   `json:"timestamp"`
}

func (TickerEvent) Stream() string { return "ticker" }

func (e TickerEvent) Channel() string {
	return "market:ticker:" + e.Symbol
}

type OrderUpdateKind string

const (
	OrderUpdateAck       OrderUpdateKind = "ack"
	OrderUpdateReject    OrderUpdateKind = "reject"
	OrderUpdateFill      OrderUpdateKind = "fill"
	OrderUpdateCancelled OrderUpdateKind = "cancelled"
)

// OrderUpdateEvent is the private per-user order lifecycle stream.
type OrderUpdateEvent struct {
	Kind              OrderUpdateKind `json:"kind"`
	OrderID           uint64          `json:"order_id"`
	UserID            uint64          `json:"user_id"`
	Symbol            string          `json:"symbol,omitempty"`
	Reason            string          `json:"reason,omitempty"`
	Message           string          `json:"message,omitempty"`
	FilledQuantity    uint64          `json:"filled_quantity,omitempty"`
	FilledPrice       uint64          `json:"filled_price,omitempty"`
	RemainingQuantity uint64          `json:"remaining_quantity,omitempty"`
	Timestamp         int64           `json:"timestamp"`
}

func (OrderUpdateEvent) Stream() string { return "order" }

func (e OrderUpdateEvent) Channel() string {
	return fmt.Sprintf("market:order:user:%d", e.UserID)
}
