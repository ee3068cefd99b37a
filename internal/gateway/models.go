package gateway

import "gungnir/internal/protocol"

type PlaceOrderRequest struct {
	UserID   uint64             `json:"user_id"`
	Symbol   string             `json:"symbol"`
	Side     protocol.Side      `json:"side"`
	Type     protocol.OrderType `json:"order_type"`
	Quantity uint64             `json:"quantity"`
	Price    *uint64            `json:"price,omitempty"`
}

type PlaceOrderResponse struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
}

type CancelOrderRequest struct {
	OrderID uint64 `json:"order_id"`
	UserID  uint64 `json:"user_id"`
	Symbol  string `json:"symbol"`
}

type CancelOrderResponse struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
