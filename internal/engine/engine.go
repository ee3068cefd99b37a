package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"gungnir/internal/book"
	"gungnir/internal/metrics"
	"gungnir/internal/protocol"
)

// Engine is the single-writer state machine for one symbol. It owns the
// book exclusively and runs on one goroutine; producers and consumers
// interact with it only through the command and event channels, so no
// locking happens anywhere inside.
type Engine struct {
	symbol    string
	book      *book.OrderBook
	collector *metrics.Collector

	// Last observed value of the book's stale-sweep counter, so sweeps
	// can be forwarded to the collector as they happen.
	sweepsSeen uint64
}

func New(symbol string, collector *metrics.Collector) *Engine {
	return &Engine{
		symbol:    symbol,
		book:      book.NewOrderBook(symbol),
		collector: collector,
	}
}

func (e *Engine) Symbol() string {
	return e.symbol
}

// Run drives the state machine: one blocking dequeue, one command to
// completion, repeat. When the command channel closes the loop finishes
// the in-flight command, closes the event stream and returns.
func (e *Engine) Run(commands <-chan protocol.Command, events chan<- protocol.Event) {
	log.Info().Str("symbol", e.symbol).Msg("engine starting")
	defer close(events)

	for command := range commands {
		start := time.Now()

		switch c := command.(type) {
		case protocol.PlaceOrder:
			e.collector.CommandsTotal.WithLabelValues("place").Inc()
			e.handlePlace(c, events)
		case protocol.CancelOrder:
			e.collector.CommandsTotal.WithLabelValues("cancel").Inc()
			e.handleCancel(c, events)
		case protocol.GetDepth:
			e.collector.CommandsTotal.WithLabelValues("depth").Inc()
			e.handleDepth(c)
		default:
			log.Error().
				Int("commandType", int(command.GetCommandType())).
				Msg("unknown command type")
		}

		e.observe(start)
	}

	log.Info().Str("symbol", e.symbol).Msg("engine shutting down")
}

// handlePlace validates, acks and matches one taker order. The ack always
// precedes any fill, trade or book update of the same command; a reject is
// the only event of a rejected place.
func (e *Engine) handlePlace(place protocol.PlaceOrder, events chan<- protocol.Event) {
	if place.Quantity == 0 {
		e.reject(events, place.OrderID, place.UserID,
			protocol.InvalidQuantity, "quantity must be greater than 0")
		return
	}

	var price uint64
	if place.Price != nil {
		price = *place.Price
	}
	if place.Type == protocol.LimitOrder && price == 0 {
		e.reject(events, place.OrderID, place.UserID,
			protocol.InvalidOrder, "price is required for limit orders")
		return
	}

	events <- protocol.OrderAck{
		OrderID: place.OrderID,
		UserID:  place.UserID,
		Symbol:  e.symbol,
	}

	taker := book.NewOrder(place.OrderID, place.UserID, place.Side, price, place.Quantity)

	var result book.MatchResult
	var err error
	switch place.Type {
	case protocol.LimitOrder:
		result = e.book.MatchLimit(taker)
	case protocol.MarketOrder:
		result, err = e.book.MatchMarket(taker)
	}

	for _, execution := range result.Executions {
		events <- execution.MakerFill.Protocol(e.symbol)
		events <- execution.TakerFill.Protocol(e.symbol)
		events <- execution.Trade.Protocol(e.symbol)

		e.collector.TradesTotal.Inc()
		e.collector.TradeVolume.Add(float64(execution.Trade.Quantity))
		e.collector.LastTradePrice.Set(float64(execution.Trade.Price))
	}
	if result.Depth != nil {
		events <- *result.Depth
	}
	if err != nil {
		// Market taker outlived the opposite side; the remainder is
		// discarded, never rested.
		e.reject(events, place.OrderID, place.UserID,
			protocol.InvalidOrder, "insufficient liquidity to fill market order")
	}
}

func (e *Engine) handleCancel(cancel protocol.CancelOrder, events chan<- protocol.Event) {
	removed, err := e.book.RemoveOrder(cancel.OrderID)
	if err != nil {
		e.reject(events, cancel.OrderID, cancel.UserID,
			protocol.InvalidOrder, "order not found")
		return
	}

	events <- protocol.OrderCancelled{
		OrderID: removed.OrderID,
		UserID:  removed.UserID,
		Symbol:  e.symbol,
		Reason:  protocol.UserRequested,
	}
	events <- e.book.BookUpdate(book.UpdateDepthLimit)
}

func (e *Engine) handleDepth(query protocol.GetDepth) {
	if query.Reply == nil {
		return
	}
	limit := query.Limit
	if limit <= 0 {
		limit = book.UpdateDepthLimit
	}
	// Never let a slow reader stall the command loop.
	select {
	case query.Reply <- e.book.BookUpdate(limit):
	default:
	}
}

func (e *Engine) reject(events chan<- protocol.Event, orderID, userID uint64, reason protocol.RejectReason, message string) {
	e.collector.RejectsTotal.WithLabelValues(reason.String()).Inc()
	events <- protocol.OrderReject{
		OrderID: orderID,
		UserID:  userID,
		Reason:  reason,
		Message: message,
	}
}

func (e *Engine) observe(start time.Time) {
	e.collector.CommandLatency.Observe(time.Since(start).Seconds())
	e.collector.RestingOrders.Set(float64(e.book.RestingOrders()))
	e.collector.BookLevels.WithLabelValues("bid").Set(float64(e.book.Levels(protocol.Buy)))
	e.collector.BookLevels.WithLabelValues("ask").Set(float64(e.book.Levels(protocol.Sell)))

	if sweeps := e.book.StaleSweeps(); sweeps > e.sweepsSeen {
		e.collector.StaleSweepsTotal.Add(float64(sweeps - e.sweepsSeen))
		e.sweepsSeen = sweeps
	}
}
