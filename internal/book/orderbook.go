package book

import (
	"errors"

	"github.com/tidwall/btree"

	"gungnir/internal/protocol"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)

const (
	// depthCacheLimit is the capacity of the lazily refreshed depth cache.
	depthCacheLimit = 25
	// UpdateDepthLimit is the number of levels carried per side on a
	// BookUpdate snapshot.
	UpdateDepthLimit = 20
)

type PriceLevels = btree.BTreeG[*PriceLevel]

// OrderBook is the dual-indexed book for one symbol: price-ordered levels
// per side, each holding a FIFO of order ids, plus a flat order table.
// It is single-writer; the owning engine is the only mutator.
type OrderBook struct {
	symbol string

	// Bids sorted greatest first, asks least first, so Min() on either
	// tree is the best level for that side.
	bids *PriceLevels
	asks *PriceLevels

	// Order table. Every resting order appears in exactly one level FIFO
	// on its side at its price.
	orders map[uint64]*Order

	depth cachedDepth

	// Trade sequence, monotone within the book's lifetime.
	nextTradeID uint64

	lastPrice uint64
	hasTraded bool

	// Count of stale FIFO references discarded during matching. Non-zero
	// means an invariant drifted somewhere and was repaired in place.
	staleSweeps uint64
}

func NewOrderBook(symbol string) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price > b.Price
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price
	})
	return &OrderBook{
		symbol:      symbol,
		bids:        bids,
		asks:        asks,
		orders:      make(map[uint64]*Order),
		nextTradeID: 1,
	}
}

func (book *OrderBook) Symbol() string {
	return book.symbol
}

func (book *OrderBook) levels(side protocol.Side) *PriceLevels {
	if side == protocol.Buy {
		return book.bids
	}
	return book.asks
}

// AddOrder rests an order on its own side: appended to the FIFO of the
// level at its price, creating the level on first use, and inserted into
// the order table.
func (book *OrderBook) AddOrder(order *Order) {
	levels := book.levels(order.Side)
	level, ok := levels.GetMut(&PriceLevel{Price: order.Price})
	if !ok {
		level = NewPriceLevel(order.Price)
		levels.Set(level)
	}
	level.Add(order.OrderID, order.RemainingQuantity)
	book.orders[order.OrderID] = order
	book.depth.fresh = false
}

// RemoveOrder takes an order out of the book entirely: order table, level
// FIFO and level aggregate. The removed order is returned so the caller
// can build the cancellation event.
func (book *OrderBook) RemoveOrder(orderID uint64) (*Order, error) {
	order, ok := book.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(book.orders, orderID)

	levels := book.levels(order.Side)
	if level, ok := levels.GetMut(&PriceLevel{Price: order.Price}); ok {
		level.Remove(order.OrderID, order.RemainingQuantity)
		if level.IsEmpty() {
			levels.Delete(level)
		}
	}

	book.depth.fresh = false
	return order, nil
}

func (book *OrderBook) BestBid() (uint64, bool) {
	level, ok := book.bids.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

func (book *OrderBook) BestAsk() (uint64, bool) {
	level, ok := book.asks.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// Order looks up a resting order by id.
func (book *OrderBook) Order(orderID uint64) (*Order, bool) {
	order, ok := book.orders[orderID]
	return order, ok
}

// RestingOrders is the number of orders currently resting in the book.
func (book *OrderBook) RestingOrders() int {
	return len(book.orders)
}

// Levels is the number of populated price levels on one side.
func (book *OrderBook) Levels(side protocol.Side) int {
	return book.levels(side).Len()
}

// LastPrice is the most recent trade price within the book's lifetime.
func (book *OrderBook) LastPrice() (uint64, bool) {
	return book.lastPrice, book.hasTraded
}

// StaleSweeps is the number of stale FIFO references repaired so far.
func (book *OrderBook) StaleSweeps() uint64 {
	return book.staleSweeps
}
