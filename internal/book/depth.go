package book

import "gungnir/internal/protocol"

// cachedDepth is the lazily materialised top-N aggregation of both sides.
// When fresh, the arrays hold the best depthCacheLimit levels per side in
// priority order; when stale, contents are arbitrary.
type cachedDepth struct {
	bids     [depthCacheLimit]protocol.PriceLevel
	asks     [depthCacheLimit]protocol.PriceLevel
	bidCount int
	askCount int
	fresh    bool
}

// Depth is a by-copy snapshot of the top of book, bids descending, asks
// ascending.
type Depth struct {
	Bids []protocol.PriceLevel
	Asks []protocol.PriceLevel
}

// Depth returns the top min(limit, cache capacity) levels per side,
// refreshing the cache first if a mutation has invalidated it. Mutations
// between reads coalesce into a single refresh.
func (book *OrderBook) Depth(limit int) Depth {
	if !book.depth.fresh {
		book.refreshDepth()
	}
	if limit > depthCacheLimit {
		limit = depthCacheLimit
	}
	bidCount := min(limit, book.depth.bidCount)
	askCount := min(limit, book.depth.askCount)

	depth := Depth{
		Bids: make([]protocol.PriceLevel, bidCount),
		Asks: make([]protocol.PriceLevel, askCount),
	}
	copy(depth.Bids, book.depth.bids[:bidCount])
	copy(depth.Asks, book.depth.asks[:askCount])
	return depth
}

func (book *OrderBook) refreshDepth() {
	book.depth = cachedDepth{}

	book.bids.Scan(func(level *PriceLevel) bool {
		if book.depth.bidCount == depthCacheLimit {
			return false
		}
		book.depth.bids[book.depth.bidCount] = protocol.PriceLevel{
			Price:    level.Price,
			Quantity: level.TotalQuantity,
		}
		book.depth.bidCount++
		return true
	})

	book.asks.Scan(func(level *PriceLevel) bool {
		if book.depth.askCount == depthCacheLimit {
			return false
		}
		book.depth.asks[book.depth.askCount] = protocol.PriceLevel{
			Price:    level.Price,
			Quantity: level.TotalQuantity,
		}
		book.depth.askCount++
		return true
	})

	book.depth.fresh = true
}

// BookUpdate renders the current top of book as the outbound event.
func (book *OrderBook) BookUpdate(limit int) protocol.BookUpdate {
	depth := book.Depth(limit)
	update := protocol.BookUpdate{
		Symbol: book.symbol,
		Bids:   depth.Bids,
		Asks:   depth.Asks,
	}
	if price, ok := book.LastPrice(); ok {
		update.LastPrice = &price
	}
	return update
}
