package book

import (
	"time"

	"gungnir/internal/protocol"
)

// Order is the book-resident payload for a single accepted order. The book
// owns it exclusively; events carry value copies, never references.
type Order struct {
	OrderID           uint64
	UserID            uint64
	Side              protocol.Side
	Price             uint64 // zero for market takers
	InitialQuantity   uint64
	RemainingQuantity uint64
	Timestamp         int64 // epoch ms at acceptance
}

// NewOrder stamps the acceptance timestamp. The timestamp is an audit
// field only; matching priority within a level is structural FIFO, so
// clock skew cannot corrupt priority.
func NewOrder(orderID, userID uint64, side protocol.Side, price, quantity uint64) *Order {
	return &Order{
		OrderID:           orderID,
		UserID:            userID,
		Side:              side,
		Price:             price,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
		Timestamp:         time.Now().UnixMilli(),
	}
}
