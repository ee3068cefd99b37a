package persistence

import "gungnir/internal/protocol"

type OrderStatus string

const (
	StatusAccepted        OrderStatus = "accepted"
	StatusRejected        OrderStatus = "rejected"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
)

// OrderRow is the orders-table projection of an order's lifecycle. Rows
// are upserted as events arrive: status, remaining quantity and update
// time take the latest write, initial and filled quantities keep the
// larger value, and side and symbol are only overwritten when non-empty.
type OrderRow struct {
	OrderID           uint64
	UserID            uint64
	Symbol            string
	Side              string
	Status            OrderStatus
	InitialQuantity   uint64
	FilledQuantity    uint64
	RemainingQuantity uint64
	UpdatedAt         int64
}

type TradeRow struct {
	TradeID      uint64
	MakerOrderID uint64
	MakerUserID  uint64
	TakerOrderID uint64
	TakerUserID  uint64
	Symbol       string
	Quantity     uint64
	Price        uint64
	Timestamp    int64
}

type CancelRow struct {
	OrderID   uint64
	UserID    uint64
	Symbol    string
	Reason    string
	Timestamp int64
}

func rowFromAck(ack protocol.OrderAck, now int64) OrderRow {
	return OrderRow{
		OrderID:   ack.OrderID,
		UserID:    ack.UserID,
		Symbol:    ack.Symbol,
		Status:    StatusAccepted,
		UpdatedAt: now,
	}
}

func rowFromReject(reject protocol.OrderReject, now int64) OrderRow {
	return OrderRow{
		OrderID:   reject.OrderID,
		UserID:    reject.UserID,
		Status:    StatusRejected,
		UpdatedAt: now,
	}
}

func rowFromTrade(trade protocol.Trade) TradeRow {
	return TradeRow{
		TradeID:      trade.TradeID,
		MakerOrderID: trade.MakerOrderID,
		MakerUserID:  trade.MakerUserID,
		TakerOrderID: trade.TakerOrderID,
		TakerUserID:  trade.TakerUserID,
		Symbol:       trade.Symbol,
		Quantity:     trade.Quantity,
		Price:        trade.Price,
		Timestamp:    trade.Timestamp,
	}
}

func rowFromCancel(cancelled protocol.OrderCancelled, now int64) CancelRow {
	return CancelRow{
		OrderID:   cancelled.OrderID,
		UserID:    cancelled.UserID,
		Symbol:    cancelled.Symbol,
		Reason:    cancelled.Reason.String(),
		Timestamp: now,
	}
}
