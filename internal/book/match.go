package book

import (
	"time"

	"gungnir/internal/protocol"
)

// Fill is the book-internal view of one side of a match; the engine adds
// the symbol when it converts to the outbound event.
type Fill struct {
	OrderID           uint64
	UserID            uint64
	Side              protocol.Side
	FilledPrice       uint64
	FilledQuantity    uint64
	RemainingQuantity uint64
}

func (f Fill) Protocol(symbol string) protocol.Fill {
	return protocol.Fill{
		OrderID:           f.OrderID,
		UserID:            f.UserID,
		Symbol:            symbol,
		Side:              f.Side,
		FilledQuantity:    f.FilledQuantity,
		FilledPrice:       f.FilledPrice,
		RemainingQuantity: f.RemainingQuantity,
	}
}

// Trade is the book-internal pairwise match record.
type Trade struct {
	TradeID      uint64
	MakerOrderID uint64
	MakerUserID  uint64
	TakerOrderID uint64
	TakerUserID  uint64
	Quantity     uint64
	Price        uint64
	Timestamp    int64
}

func (t Trade) Protocol(symbol string) protocol.Trade {
	return protocol.Trade{
		TradeID:      t.TradeID,
		MakerOrderID: t.MakerOrderID,
		MakerUserID:  t.MakerUserID,
		TakerOrderID: t.TakerOrderID,
		TakerUserID:  t.TakerUserID,
		Symbol:       symbol,
		Quantity:     t.Quantity,
		Price:        t.Price,
		Timestamp:    t.Timestamp,
	}
}

// Execution groups the maker fill, taker fill and trade produced by one
// match, preserving the emission order the event stream requires.
type Execution struct {
	MakerFill Fill
	TakerFill Fill
	Trade     Trade
}

// MatchResult is everything a single taker produced. Depth is nil when the
// book state did not change.
type MatchResult struct {
	Executions []Execution
	Depth      *protocol.BookUpdate
}

// MatchLimit walks the opposite side in priority order while the taker's
// limit price crosses, then rests any unfilled remainder on the taker's
// own side. The book always changes for a valid limit taker, so a depth
// snapshot is always attached.
func (book *OrderBook) MatchLimit(taker *Order) MatchResult {
	result := book.match(taker, true)

	if taker.RemainingQuantity > 0 {
		book.AddOrder(taker)
	}

	update := book.BookUpdate(UpdateDepthLimit)
	result.Depth = &update
	return result
}

// MatchMarket walks the entire opposite side from best outward. A market
// taker never rests: leftover quantity is discarded and reported as
// ErrInsufficientLiquidity, after any partial executions already in the
// result.
func (book *OrderBook) MatchMarket(taker *Order) (MatchResult, error) {
	result := book.match(taker, false)

	if len(result.Executions) > 0 {
		update := book.BookUpdate(UpdateDepthLimit)
		result.Depth = &update
	}
	if taker.RemainingQuantity > 0 {
		return result, ErrInsufficientLiquidity
	}
	return result, nil
}

// match consumes opposite-side liquidity in strict price-time priority:
// best level first, FIFO head first within a level. Bounded walks stop at
// the taker's limit price.
func (book *OrderBook) match(taker *Order, bounded bool) MatchResult {
	var result MatchResult
	sweepsBefore := book.staleSweeps
	levels := book.levels(taker.Side.Opposite())

	for taker.RemainingQuantity > 0 {
		level, ok := levels.MinMut()
		if !ok {
			break
		}
		if bounded && !crosses(taker.Side, taker.Price, level.Price) {
			break
		}

		for taker.RemainingQuantity > 0 && len(level.Orders) > 0 {
			makerID := level.Orders[0]
			maker, ok := book.orders[makerID]
			if !ok {
				// Stale reference: the FIFO names an order the table no
				// longer holds. Discard it and keep matching.
				level.Orders = level.Orders[1:]
				book.staleSweeps++
				continue
			}

			fillQty := min(maker.RemainingQuantity, taker.RemainingQuantity)
			maker.RemainingQuantity -= fillQty
			taker.RemainingQuantity -= fillQty
			level.TotalQuantity -= fillQty

			tradeID := book.nextTradeID
			book.nextTradeID++
			book.lastPrice = level.Price
			book.hasTraded = true

			result.Executions = append(result.Executions, Execution{
				MakerFill: Fill{
					OrderID:           maker.OrderID,
					UserID:            maker.UserID,
					Side:              maker.Side,
					FilledPrice:       level.Price,
					FilledQuantity:    fillQty,
					RemainingQuantity: maker.RemainingQuantity,
				},
				TakerFill: Fill{
					OrderID:           taker.OrderID,
					UserID:            taker.UserID,
					Side:              taker.Side,
					FilledPrice:       level.Price,
					FilledQuantity:    fillQty,
					RemainingQuantity: taker.RemainingQuantity,
				},
				Trade: Trade{
					TradeID:      tradeID,
					MakerOrderID: maker.OrderID,
					MakerUserID:  maker.UserID,
					TakerOrderID: taker.OrderID,
					TakerUserID:  taker.UserID,
					Quantity:     fillQty,
					Price:        level.Price,
					Timestamp:    time.Now().UnixMilli(),
				},
			})

			if maker.RemainingQuantity == 0 {
				level.Orders = level.Orders[1:]
				delete(book.orders, makerID)
			}
		}

		if level.IsEmpty() {
			levels.Delete(level)
			continue
		}
		// Liquidity remains at this level, so the taker must be done.
		break
	}

	if len(result.Executions) > 0 || book.staleSweeps != sweepsBefore {
		book.depth.fresh = false
	}
	return result
}

func crosses(takerSide protocol.Side, takerPrice, levelPrice uint64) bool {
	if takerSide == protocol.Buy {
		return levelPrice <= takerPrice
	}
	return levelPrice >= takerPrice
}
