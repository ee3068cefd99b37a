package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gungnir/internal/protocol"
)

func trade(symbol string, price, quantity uint64) TradeEvent {
	return TradeEvent{Symbol: symbol, Price: price, Quantity: quantity}
}

func TestAggregator_ForwardsAndRetainsDepth(t *testing.T) {
	aggregator := NewAggregator()
	depth := DepthEvent{
		Symbol: "SOL/USD",
		Bids:   []protocol.PriceLevel{{Price: 50000, Quantity: 70}},
	}

	out := aggregator.Process(depth)

	require.Len(t, out, 1)
	assert.Equal(t, depth, out[0])

	latest, ok := aggregator.LatestDepth("SOL/USD")
	require.True(t, ok)
	assert.Equal(t, depth, latest)

	_, ok = aggregator.LatestDepth("ETH/USD")
	assert.False(t, ok)
}

func TestAggregator_LatestDepthTracksNewestSnapshot(t *testing.T) {
	aggregator := NewAggregator()

	aggregator.Process(DepthEvent{Symbol: "SOL/USD", Timestamp: 1})
	aggregator.Process(DepthEvent{
		Symbol:    "SOL/USD",
		Asks:      []protocol.PriceLevel{{Price: 51000, Quantity: 9}},
		Timestamp: 2,
	})

	latest, ok := aggregator.LatestDepth("SOL/USD")
	require.True(t, ok)
	assert.Equal(t, int64(2), latest.Timestamp)
	assert.Equal(t, []protocol.PriceLevel{{Price: 51000, Quantity: 9}}, latest.Asks)
}

func TestAggregator_PassesOrderUpdatesThrough(t *testing.T) {
	aggregator := NewAggregator()
	update := OrderUpdateEvent{Kind: OrderUpdateAck, OrderID: 1, UserID: 9}

	out := aggregator.Process(update)

	require.Len(t, out, 1)
	assert.Equal(t, update, out[0])
}

func TestAggregator_TickerTracksOHLCAndVolume(t *testing.T) {
	aggregator := NewAggregator()

	out := aggregator.Process(trade("SOL/USD", 50000, 10))
	require.Len(t, out, 2, "trade is forwarded, then the ticker")
	ticker := out[1].(TickerEvent)
	assert.Equal(t, uint64(50000), ticker.Open)
	assert.Equal(t, uint64(50000), ticker.High)
	assert.Equal(t, uint64(50000), ticker.Low)
	assert.Equal(t, uint64(10), ticker.Volume)
	assert.Equal(t, int64(0), ticker.PriceChange)

	aggregator.Process(trade("SOL/USD", 52000, 5))
	out = aggregator.Process(trade("SOL/USD", 49000, 20))

	ticker = out[1].(TickerEvent)
	assert.Equal(t, uint64(50000), ticker.Open)
	assert.Equal(t, uint64(52000), ticker.High)
	assert.Equal(t, uint64(49000), ticker.Low)
	assert.Equal(t, uint64(49000), ticker.LastPrice)
	assert.Equal(t, uint64(35), ticker.Volume)
	assert.Equal(t, int64(-1000), ticker.PriceChange)
	assert.InDelta(t, -2.0, ticker.PriceChangePercent, 0.001)
	assert.Equal(t, "market:ticker:SOL/USD", ticker.Channel())
}

func TestAggregator_SymbolsAreIndependent(t *testing.T) {
	aggregator := NewAggregator()

	aggregator.Process(trade("SOL/USD", 50000, 10))
	out := aggregator.Process(trade("ETH/USD", 3000, 2))

	ticker := out[1].(TickerEvent)
	assert.Equal(t, uint64(3000), ticker.Open)
	assert.Equal(t, uint64(2), ticker.Volume)
}
