package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"gungnir/internal/protocol"
)

type Config struct {
	Address      string
	Port         int
	DepthTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Address:      "0.0.0.0",
		Port:         8080,
		DepthTimeout: time.Second,
	}
}

// Server is the HTTP admission layer. It assigns order ids, shape-checks
// requests and enqueues commands; semantic validation and terminal state
// belong to the engine and arrive on the event stream.
type Server struct {
	config   Config
	symbol   string
	commands chan<- protocol.Command

	// Order ids must be unique across the book's lifetime; the gateway is
	// their single allocator.
	nextOrderID atomic.Uint64
}

func New(config Config, symbol string, commands chan<- protocol.Command) *Server {
	return &Server{
		config:   config,
		symbol:   symbol,
		commands: commands,
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/v1/orders", s.handlePlace).Methods(http.MethodPost)
	router.HandleFunc("/v1/orders", s.handleCancel).Methods(http.MethodDelete)
	// Symbols carry slashes (SOL/USD), so depth takes the symbol as a
	// query parameter rather than a path segment.
	router.HandleFunc("/v1/depth", s.handleDepth).Methods(http.MethodGet)
	return router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("gateway shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("symbol", s.symbol).Msg("gateway running")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}
	if req.Symbol != s.symbol {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   protocol.SymbolNotFound.String(),
			Message: fmt.Sprintf("symbol %q is not traded here", req.Symbol),
		})
		return
	}

	orderID := s.nextOrderID.Add(1)
	s.commands <- protocol.PlaceOrder{
		OrderID:  orderID,
		UserID:   req.UserID,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Type:     req.Type,
		Quantity: req.Quantity,
		Price:    req.Price,
	}

	writeJSON(w, http.StatusAccepted, PlaceOrderResponse{
		OrderID: orderID,
		Status:  "queued",
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}
	if req.Symbol != s.symbol {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   protocol.SymbolNotFound.String(),
			Message: fmt.Sprintf("symbol %q is not traded here", req.Symbol),
		})
		return
	}

	s.commands <- protocol.CancelOrder{
		OrderID: req.OrderID,
		UserID:  req.UserID,
		Symbol:  req.Symbol,
	}

	writeJSON(w, http.StatusAccepted, CancelOrderResponse{
		OrderID: req.OrderID,
		Status:  "queued",
	})
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol != s.symbol {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   protocol.SymbolNotFound.String(),
			Message: fmt.Sprintf("symbol %q is not traded here", symbol),
		})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}

	reply := make(chan protocol.BookUpdate, 1)
	s.commands <- protocol.GetDepth{Limit: limit, Reply: reply}

	select {
	case update := <-reply:
		writeJSON(w, http.StatusOK, update)
	case <-time.After(s.config.DepthTimeout):
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{
			Error:   protocol.InternalError.String(),
			Message: "engine did not answer in time",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// requestLogger tags every request with a uuid and writes one access log
// line when it finishes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		log.Info().
			Str("requestId", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
