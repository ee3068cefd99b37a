package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// loadgen hammers the gateway with randomized flow: mostly limit orders
// around a configurable mid price, some market orders, some cancels of
// orders it placed earlier.

type placeRequest struct {
	UserID   uint64  `json:"user_id"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Type     string  `json:"order_type"`
	Quantity uint64  `json:"quantity"`
	Price    *uint64 `json:"price,omitempty"`
}

type placeResponse struct {
	OrderID uint64 `json:"order_id"`
}

type cancelRequest struct {
	OrderID uint64 `json:"order_id"`
	UserID  uint64 `json:"user_id"`
	Symbol  string `json:"symbol"`
}

func main() {
	gatewayURL := flag.String("gateway", "http://127.0.0.1:8080", "Gateway base URL")
	symbol := flag.String("symbol", "SOL/USD", "Symbol to trade")
	users := flag.Uint64("users", 8, "Number of distinct user ids")
	rate := flag.Duration("rate", 10*time.Millisecond, "Delay between orders")
	marketRatio := flag.Float64("market-ratio", 0.1, "Fraction of market orders")
	cancelRatio := flag.Float64("cancel-ratio", 0.2, "Fraction of cancels")
	mid := flag.Uint64("mid", 50000, "Mid price in ticks")
	spread := flag.Uint64("spread", 500, "Max distance from mid in ticks")
	flag.Parse()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	client := &http.Client{Timeout: 2 * time.Second}
	var placed []uint64
	sent, cancelled := 0, 0

	ticker := time.NewTicker(*rate)
	defer ticker.Stop()

	log.Info().Str("gateway", *gatewayURL).Str("symbol", *symbol).Msg("loadgen starting")

	for {
		select {
		case <-ctx.Done():
			log.Info().Int("placed", sent).Int("cancelled", cancelled).Msg("loadgen stopping")
			return
		case <-ticker.C:
		}

		userID := 1 + rand.Uint64()%*users

		if len(placed) > 0 && rand.Float64() < *cancelRatio {
			victim := placed[rand.Intn(len(placed))]
			if err := postJSON(client, http.MethodDelete, *gatewayURL+"/v1/orders", cancelRequest{
				OrderID: victim,
				UserID:  userID,
				Symbol:  *symbol,
			}, nil); err != nil {
				log.Error().Err(err).Msg("cancel failed")
				continue
			}
			cancelled++
			continue
		}

		req := placeRequest{
			UserID:   userID,
			Symbol:   *symbol,
			Quantity: 1 + rand.Uint64()%100,
			Side:     "buy",
			Type:     "limit",
		}
		if rand.Intn(2) == 0 {
			req.Side = "sell"
		}
		if rand.Float64() < *marketRatio {
			req.Type = "market"
		} else {
			offset := rand.Uint64() % (*spread + 1)
			price := *mid + offset
			if rand.Intn(2) == 0 && *mid > offset {
				price = *mid - offset
			}
			req.Price = &price
		}

		var resp placeResponse
		if err := postJSON(client, http.MethodPost, *gatewayURL+"/v1/orders", req, &resp); err != nil {
			log.Error().Err(err).Msg("place failed")
			continue
		}
		sent++
		if req.Type == "limit" {
			placed = append(placed, resp.OrderID)
			if len(placed) > 4096 {
				placed = placed[len(placed)-2048:]
			}
		}

		if sent%500 == 0 {
			log.Info().Int("placed", sent).Int("cancelled", cancelled).Msg("progress")
		}
	}
}

func postJSON(client *http.Client, method, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
