package marketdata

import "sync"

// Aggregator folds the trade stream into per-symbol ticker state and
// retains the most recent depth snapshot per symbol. Each trade is
// forwarded unchanged, followed by the recomputed ticker; depth events are
// forwarded and remembered for readers that do not go through the gateway.
type Aggregator struct {
	tickers map[string]*tickerState

	// depths is the only state read from outside the pipeline goroutine.
	depthsMu sync.RWMutex
	depths   map[string]DepthEvent
}

type tickerState struct {
	open   uint64
	high   uint64
	low    uint64
	last   uint64
	volume uint64
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		tickers: make(map[string]*tickerState),
		depths:  make(map[string]DepthEvent),
	}
}

// LatestDepth returns the most recent depth snapshot seen for symbol.
func (a *Aggregator) LatestDepth(symbol string) (DepthEvent, bool) {
	a.depthsMu.RLock()
	defer a.depthsMu.RUnlock()
	depth, ok := a.depths[symbol]
	return depth, ok
}

func (a *Aggregator) Process(event Event) []Event {
	if depth, ok := event.(DepthEvent); ok {
		a.depthsMu.Lock()
		a.depths[depth.Symbol] = depth
		a.depthsMu.Unlock()
		return []Event{depth}
	}

	trade, ok := event.(TradeEvent)
	if !ok {
		return []Event{event}
	}

	state, ok := a.tickers[trade.Symbol]
	if !ok {
		state = &tickerState{
			open: trade.Price,
			high: trade.Price,
			low:  trade.Price,
		}
		a.tickers[trade.Symbol] = state
	}

	state.last = trade.Price
	state.volume += trade.Quantity
	if trade.Price > state.high {
		state.high = trade.Price
	}
	if trade.Price < state.low {
		state.low = trade.Price
	}

	change := int64(state.last) - int64(state.open)
	percent := 0.0
	if state.open != 0 {
		percent = float64(change) / float64(state.open) * 100
	}

	ticker := TickerEvent{
		Symbol:             trade.Symbol,
		LastPrice:          state.last,
		Open:               state.open,
		High:               state.high,
		Low:                state.low,
		Volume:             state.volume,
		PriceChange:        change,
		PriceChangePercent: percent,
		Timestamp:          trade.Timestamp,
	}

	return []Event{trade, ticker}
}
