package marketdata

import (
	"context"

	"github.com/rs/zerolog/log"

	"gungnir/internal/metrics"
	"gungnir/internal/protocol"
)

// Pipeline consumes the engine's event stream, transforms and aggregates
// it, and hands the results to every configured publisher. It runs until
// the stream closes.
type Pipeline struct {
	transformer Transformer
	aggregator  *Aggregator
	publishers  []Publisher
	collector   *metrics.Collector
}

func NewPipeline(collector *metrics.Collector, publishers ...Publisher) *Pipeline {
	return &Pipeline{
		transformer: NewTransformer(),
		aggregator:  NewAggregator(),
		publishers:  publishers,
		collector:   collector,
	}
}

// LatestDepth exposes the aggregator's most recent depth snapshot for
// symbol to readers outside the event stream.
func (p *Pipeline) LatestDepth(symbol string) (DepthEvent, bool) {
	return p.aggregator.LatestDepth(symbol)
}

// Run drains the stream until it closes. Cancelling the context does not
// stop the drain; it only fails in-flight publishes fast, so shutdown
// cannot strand events between the engine and the publishers.
func (p *Pipeline) Run(ctx context.Context, events <-chan protocol.Event) error {
	log.Info().Int("publishers", len(p.publishers)).Msg("market-data pipeline starting")
	defer log.Info().Msg("market-data pipeline stopped")

	for event := range events {
		p.handle(ctx, event)
	}
	return nil
}

func (p *Pipeline) handle(ctx context.Context, event protocol.Event) {
	transformed, ok := p.transformer.Transform(event)
	if !ok {
		return
	}

	for _, out := range p.aggregator.Process(transformed) {
		for _, publisher := range p.publishers {
			if err := publisher.Publish(ctx, out); err != nil {
				p.collector.PublishErrorsTotal.Inc()
				log.Error().
					Err(err).
					Str("stream", out.Stream()).
					Msg("failed to publish market-data event")
				continue
			}
			p.collector.PublishedTotal.WithLabelValues(out.Stream()).Inc()
		}
	}
}
