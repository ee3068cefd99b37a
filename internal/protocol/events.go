package protocol

// Events are the outbound half of the engine contract. Events produced by
// one command appear contiguously on the stream and precede any event of a
// later command.

type EventType int

const (
	AckEvent EventType = iota
	RejectEvent
	FillEvent
	TradeEvent
	CancelledEvent
	BookUpdateEvent
)

type Event interface {
	GetEventType() EventType
}

type OrderAck struct {
	OrderID uint64 `json:"order_id"`
	UserID  uint64 `json:"user_id"`
	Symbol  string `json:"symbol"`
}

func (OrderAck) GetEventType() EventType {
	return AckEvent
}

type OrderReject struct {
	OrderID uint64       `json:"order_id"`
	UserID  uint64       `json:"user_id"`
	Reason  RejectReason `json:"reason"`
	Message string       `json:"message"`
}

func (OrderReject) GetEventType() EventType {
	return RejectEvent
}

// Fill is the per-order view of a single match. Each trade produces two of
// these, one addressed to the maker and one to the taker.
type Fill struct {
	OrderID           uint64 `json:"order_id"`
	UserID            uint64 `json:"user_id"`
	Symbol            string `json:"symbol"`
	Side              Side   `json:"side"`
	FilledQuantity    uint64 `json:"filled_quantity"`
	FilledPrice       uint64 `json:"filled_price"`
	RemainingQuantity uint64 `json:"remaining_quantity"`
}

func (Fill) GetEventType() EventType {
	return FillEvent
}

// Trade is the pairwise match record joining maker and taker.
type Trade struct {
	TradeID      uint64 `json:"trade_id"`
	MakerOrderID uint64 `json:"maker_order_id"`
	MakerUserID  uint64 `json:"maker_user_id"`
	TakerOrderID uint64 `json:"taker_order_id"`
	TakerUserID  uint64 `json:"taker_user_id"`
	Symbol       string `json:"symbol"`
	Quantity     uint64 `json:"quantity"`
	Price        uint64 `json:"price"`
	Timestamp    int64  `json:"timestamp"`
}

func (Trade) GetEventType() EventType {
	return TradeEvent
}

type OrderCancelled struct {
	OrderID uint64       `json:"order_id"`
	UserID  uint64       `json:"user_id"`
	Symbol  string       `json:"symbol"`
	Reason  CancelReason `json:"reason"`
}

func (OrderCancelled) GetEventType() EventType {
	return CancelledEvent
}

type PriceLevel struct {
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
}

// BookUpdate carries the aggregated top of book, bids descending and asks
// ascending. LastPrice is the most recent trade price in the book's
// lifetime, nil before the first trade.
type BookUpdate struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	LastPrice *uint64      `json:"last_price"`
}

func (BookUpdate) GetEventType() EventType {
	return BookUpdateEvent
}
