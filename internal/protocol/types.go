package protocol

import "fmt"

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// Opposite returns the side a taker order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "buy":
		*s = Buy
	case "sell":
		*s = Sell
	default:
		return fmt.Errorf("invalid side %q", text)
	}
	return nil
}

type OrderType int

const (
	// Limit orders are an order to buy or sell at a specified price or
	// better. Limit orders may rest on the order book until filled.
	LimitOrder OrderType = iota
	// Market orders are instructions to buy or sell immediately at the
	// best available price. They never rest on the book.
	MarketOrder
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "limit"
	case MarketOrder:
		return "market"
	}
	return "unknown"
}

func (t OrderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *OrderType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "limit":
		*t = LimitOrder
	case "market":
		*t = MarketOrder
	default:
		return fmt.Errorf("invalid order type %q", text)
	}
	return nil
}

type RejectReason int

const (
	InvalidPrice RejectReason = iota
	InvalidOrder
	InvalidQuantity
	InsufficientBalance
	SymbolNotFound
	MarketClosed
	InternalError
)

var rejectReasonNames = map[RejectReason]string{
	InvalidPrice:        "invalid_price",
	InvalidOrder:        "invalid_order",
	InvalidQuantity:     "invalid_quantity",
	InsufficientBalance: "insufficient_balance",
	SymbolNotFound:      "symbol_not_found",
	MarketClosed:        "market_closed",
	InternalError:       "internal_error",
}

func (r RejectReason) String() string {
	if name, ok := rejectReasonNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r RejectReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

type CancelReason int

const (
	UserRequested CancelReason = iota
	SystemCancelled
	Expired
	Liquidation
)

var cancelReasonNames = map[CancelReason]string{
	UserRequested:   "user_requested",
	SystemCancelled: "system_cancelled",
	Expired:         "expired",
	Liquidation:     "liquidation",
}

func (c CancelReason) String() string {
	if name, ok := cancelReasonNames[c]; ok {
		return name
	}
	return "unknown"
}

func (c CancelReason) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
