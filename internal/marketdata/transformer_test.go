package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gungnir/internal/protocol"
)

func TestTransform_TradeBecomesPublicTradeEvent(t *testing.T) {
	transformer := NewTransformer()

	event, ok := transformer.Transform(protocol.Trade{
		TradeID:  7,
		Symbol:   "SOL/USD",
		Quantity: 25,
		Price:    50000,
	})
	require.True(t, ok)

	trade, ok := event.(TradeEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(7), trade.TradeID)
	assert.Equal(t, uint64(25), trade.Quantity)
	assert.Equal(t, uint64(50000), trade.Price)
	assert.Equal(t, "market:trade:SOL/USD", trade.Channel())
	assert.Positive(t, trade.Timestamp)
}

func TestTransform_BookUpdateBecomesDepthEvent(t *testing.T) {
	transformer := NewTransformer()
	last := uint64(50000)

	event, ok := transformer.Transform(protocol.BookUpdate{
		Symbol:    "SOL/USD",
		Bids:      []protocol.PriceLevel{{Price: 49000, Quantity: 5}},
		Asks:      []protocol.PriceLevel{{Price: 51000, Quantity: 9}},
		LastPrice: &last,
	})
	require.True(t, ok)

	depth, ok := event.(DepthEvent)
	require.True(t, ok)
	assert.Equal(t, "market:depth:SOL/USD", depth.Channel())
	assert.Equal(t, []protocol.PriceLevel{{Price: 49000, Quantity: 5}}, depth.Bids)
	require.NotNil(t, depth.LastPrice)
	assert.Equal(t, uint64(50000), *depth.LastPrice)
}

func TestTransform_OrderLifecycleIsPrivate(t *testing.T) {
	transformer := NewTransformer()

	cases := []struct {
		event protocol.Event
		kind  OrderUpdateKind
	}{
		{protocol.OrderAck{OrderID: 1, UserID: 9, Symbol: "SOL/USD"}, OrderUpdateAck},
		{protocol.OrderReject{OrderID: 2, UserID: 9, Reason: protocol.InvalidQuantity, Message: "quantity must be greater than 0"}, OrderUpdateReject},
		{protocol.Fill{OrderID: 3, UserID: 9, FilledQuantity: 5, FilledPrice: 100, RemainingQuantity: 5}, OrderUpdateFill},
		{protocol.OrderCancelled{OrderID: 4, UserID: 9, Reason: protocol.UserRequested}, OrderUpdateCancelled},
	}

	for _, tc := range cases {
		event, ok := transformer.Transform(tc.event)
		require.True(t, ok)

		update, ok := event.(OrderUpdateEvent)
		require.True(t, ok)
		assert.Equal(t, tc.kind, update.Kind)
		assert.Equal(t, uint64(9), update.UserID)
		assert.Equal(t, "market:order:user:9", update.Channel())
	}
}
