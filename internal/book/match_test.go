package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gungnir/internal/protocol"
)

// --- Helpers ----------------------------------------------------------------

func limitTaker(orderID, userID uint64, side protocol.Side, price, quantity uint64) *Order {
	return NewOrder(orderID, userID, side, price, quantity)
}

func marketTaker(orderID, userID uint64, side protocol.Side, quantity uint64) *Order {
	return NewOrder(orderID, userID, side, 0, quantity)
}

// --- Tests ------------------------------------------------------------------

func TestMatchLimit_FullFillAtEqualPrice(t *testing.T) {
	book := newTestBook()
	placeResting(book, 50000, protocol.Sell, 50)

	result := book.MatchLimit(limitTaker(2, 200, protocol.Buy, 50000, 50))

	require.Len(t, result.Executions, 1)
	execution := result.Executions[0]

	assert.Equal(t, uint64(1), execution.MakerFill.OrderID)
	assert.Equal(t, uint64(50), execution.MakerFill.FilledQuantity)
	assert.Equal(t, uint64(0), execution.MakerFill.RemainingQuantity)
	assert.Equal(t, uint64(50000), execution.MakerFill.FilledPrice)

	assert.Equal(t, uint64(2), execution.TakerFill.OrderID)
	assert.Equal(t, uint64(0), execution.TakerFill.RemainingQuantity)

	assert.Equal(t, uint64(1), execution.Trade.TradeID)
	assert.Equal(t, uint64(1), execution.Trade.MakerOrderID)
	assert.Equal(t, uint64(2), execution.Trade.TakerOrderID)
	assert.Equal(t, uint64(50), execution.Trade.Quantity)
	assert.Equal(t, uint64(50000), execution.Trade.Price)

	require.NotNil(t, result.Depth)
	assert.Empty(t, result.Depth.Bids)
	assert.Empty(t, result.Depth.Asks)

	assert.Equal(t, 0, book.RestingOrders())
	checkInvariants(t, book)
}

func TestMatchLimit_PartialFillTakerRests(t *testing.T) {
	book := newTestBook()
	placeResting(book, 50000, protocol.Sell, 30)

	result := book.MatchLimit(limitTaker(2, 200, protocol.Buy, 50000, 100))

	require.Len(t, result.Executions, 1)
	assert.Equal(t, uint64(0), result.Executions[0].MakerFill.RemainingQuantity)
	assert.Equal(t, uint64(70), result.Executions[0].TakerFill.RemainingQuantity)
	assert.Equal(t, uint64(30), result.Executions[0].Trade.Quantity)

	require.NotNil(t, result.Depth)
	assert.Equal(t, []protocol.PriceLevel{{Price: 50000, Quantity: 70}}, result.Depth.Bids)
	assert.Empty(t, result.Depth.Asks)

	// The remainder rests and is cancellable like any maker.
	resting, ok := book.Order(2)
	require.True(t, ok)
	assert.Equal(t, uint64(70), resting.RemainingQuantity)
	checkInvariants(t, book)
}

func TestMatchLimit_BestPriceAcrossLevels(t *testing.T) {
	book := newTestBook()
	placeResting(book, 51000, protocol.Sell, 10)
	placeResting(book, 50000, protocol.Sell, 10)

	result := book.MatchLimit(limitTaker(3, 200, protocol.Buy, 52000, 10))

	require.Len(t, result.Executions, 1)
	assert.Equal(t, uint64(2), result.Executions[0].Trade.MakerOrderID)
	assert.Equal(t, uint64(50000), result.Executions[0].Trade.Price)

	require.NotNil(t, result.Depth)
	assert.Equal(t, []protocol.PriceLevel{{Price: 51000, Quantity: 10}}, result.Depth.Asks)
	checkInvariants(t, book)
}

func TestMatchLimit_FIFOWithinLevel(t *testing.T) {
	book := newTestBook()
	placeResting(book, 50000, protocol.Sell, 10, 10, 10)

	result := book.MatchLimit(limitTaker(4, 200, protocol.Buy, 50000, 30))

	require.Len(t, result.Executions, 3)
	for i, execution := range result.Executions {
		assert.Equal(t, uint64(i+1), execution.Trade.MakerOrderID, "FIFO order violated")
		assert.Equal(t, uint64(i+1), execution.Trade.TradeID, "trade ids must be contiguous from 1")
	}
	assert.Equal(t, 0, book.RestingOrders())
	checkInvariants(t, book)
}

func TestMatchLimit_NoCrossRestsWithoutExecutions(t *testing.T) {
	book := newTestBook()
	placeResting(book, 51000, protocol.Sell, 10)

	result := book.MatchLimit(limitTaker(2, 200, protocol.Buy, 50000, 10))

	assert.Empty(t, result.Executions)
	require.NotNil(t, result.Depth, "resting changes the book")
	assert.Equal(t, []protocol.PriceLevel{{Price: 50000, Quantity: 10}}, result.Depth.Bids)
	assert.Equal(t, []protocol.PriceLevel{{Price: 51000, Quantity: 10}}, result.Depth.Asks)
	checkInvariants(t, book)
}

func TestMatchLimit_SweepAcrossLevels(t *testing.T) {
	book := newTestBook()
	placeResting(book, 50000, protocol.Sell, 100, 90)
	placeResting(book, 51000, protocol.Sell, 20)

	result := book.MatchLimit(limitTaker(4, 200, protocol.Buy, 51000, 200))

	require.Len(t, result.Executions, 3)
	assert.Equal(t, uint64(50000), result.Executions[0].Trade.Price)
	assert.Equal(t, uint64(50000), result.Executions[1].Trade.Price)
	assert.Equal(t, uint64(51000), result.Executions[2].Trade.Price)
	assert.Equal(t, uint64(10), result.Executions[2].Trade.Quantity)

	// Conservation: taker fills plus remainder equal the initial quantity.
	var filled uint64
	for _, execution := range result.Executions {
		filled += execution.TakerFill.FilledQuantity
	}
	assert.Equal(t, uint64(200), filled)
	assert.Equal(t, []protocol.PriceLevel{{Price: 51000, Quantity: 10}}, result.Depth.Asks)
	assert.Equal(t, 1, book.RestingOrders(), "only the partially consumed maker remains")
	checkInvariants(t, book)
}

func TestMatchMarket_EmptyBook(t *testing.T) {
	book := newTestBook()

	result, err := book.MatchMarket(marketTaker(1, 100, protocol.Buy, 30))

	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	assert.Empty(t, result.Executions)
	assert.Nil(t, result.Depth, "nothing changed, no snapshot")
	assert.Equal(t, 0, book.RestingOrders())
}

func TestMatchMarket_PartialFillNeverRests(t *testing.T) {
	book := newTestBook()
	placeResting(book, 50000, protocol.Sell, 10)

	result, err := book.MatchMarket(marketTaker(2, 200, protocol.Buy, 30))

	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	require.Len(t, result.Executions, 1)
	assert.Equal(t, uint64(10), result.Executions[0].Trade.Quantity)
	require.NotNil(t, result.Depth)
	assert.Empty(t, result.Depth.Asks)
	assert.Empty(t, result.Depth.Bids)

	_, ok := book.Order(2)
	assert.False(t, ok, "market remainder must be discarded")
	checkInvariants(t, book)
}

func TestMatchMarket_WalksEntireSide(t *testing.T) {
	book := newTestBook()
	placeResting(book, 50000, protocol.Sell, 10)
	placeResting(book, 60000, protocol.Sell, 10)
	placeResting(book, 70000, protocol.Sell, 10)

	result, err := book.MatchMarket(marketTaker(4, 200, protocol.Buy, 30))

	require.NoError(t, err)
	require.Len(t, result.Executions, 3)
	assert.Equal(t, uint64(50000), result.Executions[0].Trade.Price)
	assert.Equal(t, uint64(60000), result.Executions[1].Trade.Price)
	assert.Equal(t, uint64(70000), result.Executions[2].Trade.Price)
	checkInvariants(t, book)
}

func TestTradeIDs_MonotoneAcrossTakers(t *testing.T) {
	book := newTestBook()
	placeResting(book, 50000, protocol.Sell, 10, 10, 10)

	first := book.MatchLimit(limitTaker(4, 200, protocol.Buy, 50000, 10))
	second := book.MatchLimit(limitTaker(5, 200, protocol.Buy, 50000, 20))

	require.Len(t, first.Executions, 1)
	require.Len(t, second.Executions, 2)
	assert.Equal(t, uint64(1), first.Executions[0].Trade.TradeID)
	assert.Equal(t, uint64(2), second.Executions[0].Trade.TradeID)
	assert.Equal(t, uint64(3), second.Executions[1].Trade.TradeID)
}

func TestMatchLimit_SellTakerWalksBidsDescending(t *testing.T) {
	book := newTestBook()
	placeResting(book, 49000, protocol.Buy, 10)
	placeResting(book, 50000, protocol.Buy, 10)

	result := book.MatchLimit(limitTaker(3, 200, protocol.Sell, 49000, 20))

	require.Len(t, result.Executions, 2)
	assert.Equal(t, uint64(50000), result.Executions[0].Trade.Price, "best bid first")
	assert.Equal(t, uint64(49000), result.Executions[1].Trade.Price)
	checkInvariants(t, book)
}
