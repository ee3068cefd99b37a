package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"gungnir/internal/engine"
	"gungnir/internal/gateway"
	"gungnir/internal/marketdata"
	"gungnir/internal/metrics"
	"gungnir/internal/persistence"
	"gungnir/internal/protocol"
)

const (
	defaultSymbol      = "SOL/USD"
	defaultMetricsAddr = "0.0.0.0:9100"

	// Command intake is bounded so producers feel backpressure; event
	// buffers are sized so the engine effectively never blocks on its
	// consumers.
	commandQueueSize = 1024
	eventBufferSize  = 1 << 16
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	symbol := envOr("GUNGNIR_SYMBOL", defaultSymbol)
	collector := metrics.NewCollector()

	commands := make(chan protocol.Command, commandQueueSize)
	events := make(chan protocol.Event, eventBufferSize)
	pipelineEvents := make(chan protocol.Event, eventBufferSize)
	writerEvents := make(chan protocol.Event, eventBufferSize)

	t, ctx := tomb.WithContext(ctx)

	// Matching engine: sole consumer of commands, sole producer of events.
	eng := engine.New(symbol, collector)
	t.Go(func() error {
		eng.Run(commands, events)
		return nil
	})

	// The engine has one outbound stream; copy it to each consumer.
	t.Go(func() error {
		broadcast(events, pipelineEvents, writerEvents)
		return nil
	})

	// Market-data pipeline, publishing over Redis when configured.
	var publishers []marketdata.Publisher
	if url := os.Getenv("GUNGNIR_REDIS_URL"); url != "" {
		publisher, err := marketdata.NewRedisPublisher(url)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to build redis publisher")
		}
		defer publisher.Close()
		publishers = append(publishers, publisher)
	}
	pipeline := marketdata.NewPipeline(collector, publishers...)
	t.Go(func() error {
		return pipeline.Run(ctx, pipelineEvents)
	})

	// Persistence writer.
	writerConfig := persistence.DefaultConfig()
	if dsn := os.Getenv("GUNGNIR_POSTGRES_DSN"); dsn != "" {
		writerConfig.DSN = dsn
	}
	writer, err := persistence.NewWriter(writerConfig, collector)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to build persistence writer")
	}
	defer writer.Close()
	if err := writer.EnsureSchema(ctx); err != nil {
		log.Error().Err(err).Msg("unable to ensure audit schema, writes will fail")
	}
	t.Go(func() error {
		return writer.Run(ctx, writerEvents)
	})

	// HTTP admission gateway.
	gatewayConfig := gateway.DefaultConfig()
	if port := os.Getenv("GUNGNIR_GATEWAY_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			log.Fatal().Str("port", port).Msg("invalid gateway port")
		}
		gatewayConfig.Port = parsed
	}
	gw := gateway.New(gatewayConfig, symbol, commands)
	gatewayDone := make(chan struct{})
	t.Go(func() error {
		defer close(gatewayDone)
		return gw.Run(ctx)
	})

	// Ops endpoint: Prometheus metrics plus a depth read served from the
	// pipeline's snapshot, so operators can inspect the book without
	// going through the gateway or the engine.
	t.Go(func() error {
		return serveOps(ctx, envOr("GUNGNIR_METRICS_ADDR", defaultMetricsAddr), collector, pipeline)
	})

	<-ctx.Done()

	// The gateway is the only command producer; once it has stopped the
	// intake can close, which drains the engine and, through it, every
	// downstream consumer.
	<-gatewayDone
	close(commands)

	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("shutdown finished with error")
		os.Exit(1)
	}
}

// broadcast copies each event to every consumer stream in order, closing
// the streams when the engine's stream ends.
func broadcast(in <-chan protocol.Event, outs ...chan protocol.Event) {
	defer func() {
		for _, out := range outs {
			close(out)
		}
	}()
	for event := range in {
		for _, out := range outs {
			out <- event
		}
	}
}

func serveOps(ctx context.Context, addr string, collector *metrics.Collector, pipeline *marketdata.Pipeline) error {
	handler := http.NewServeMux()
	handler.Handle("/metrics", collector.Handler())
	handler.HandleFunc("/depth", func(w http.ResponseWriter, r *http.Request) {
		depth, ok := pipeline.LatestDepth(r.URL.Query().Get("symbol"))
		if !ok {
			http.Error(w, "no depth snapshot yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(depth); err != nil {
			log.Error().Err(err).Msg("encode depth snapshot")
		}
	})
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("ops endpoint running")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
