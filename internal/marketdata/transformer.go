package marketdata

import (
	"time"

	"gungnir/internal/protocol"
)

// Transformer maps engine events onto the market-data event model, adding
// publication timestamps. Every engine event has exactly one market-data
// rendering.
type Transformer struct{}

func NewTransformer() Transformer {
	return Transformer{}
}

func (Transformer) Transform(event protocol.Event) (Event, bool) {
	now := time.Now().UnixMilli()

	switch e := event.(type) {
	case protocol.Trade:
		return TradeEvent{
			TradeID:   e.TradeID,
			Symbol:    e.Symbol,
			Price:     e.Price,
			Quantity:  e.Quantity,
			Timestamp: now,
		}, true

	case protocol.BookUpdate:
		return DepthEvent{
			Symbol:    e.Symbol,
			Bids:      e.Bids,
			Asks:      e.Asks,
			LastPrice: e.LastPrice,
			Timestamp: now,
		}, true

	case protocol.OrderAck:
		return OrderUpdateEvent{
			Kind:      OrderUpdateAck,
			OrderID:   e.OrderID,
			UserID:    e.UserID,
			Symbol:    e.Symbol,
			Timestamp: now,
		}, true

	case protocol.OrderReject:
		return OrderUpdateEvent{
			Kind:      OrderUpdateReject,
			OrderID:   e.OrderID,
			UserID:    e.UserID,
			Reason:    e.Reason.String(),
			Message:   e.Message,
			Timestamp: now,
		}, true

	case protocol.Fill:
		return OrderUpdateEvent{
			Kind:              OrderUpdateFill,
			OrderID:           e.OrderID,
			UserID:            e.UserID,
			Symbol:            e.Symbol,
			FilledQuantity:    e.FilledQuantity,
			FilledPrice:       e.FilledPrice,
			RemainingQuantity: e.RemainingQuantity,
			Timestamp:         now,
		}, true

	case protocol.OrderCancelled:
		return OrderUpdateEvent{
			Kind:      OrderUpdateCancelled,
			OrderID:   e.OrderID,
			UserID:    e.UserID,
			Symbol:    e.Symbol,
			Reason:    e.Reason.String(),
			Timestamp: now,
		}, true
	}

	return nil, false
}
