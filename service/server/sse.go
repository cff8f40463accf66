package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mevlab/dexsim/service/market"
	"github.com/mevlab/dexsim/service/metrics"
)

// priceStreamInterval is how often the price stream ticks.
const priceStreamInterval = 2 * time.Second

// handleStreamPrices handles SSE streaming of market price ticks. Each tick
// recomputes a snapshot, so a connected client also advances the price
// history the way a dashboard poll would.
// GET /api/v1/stream/prices
func handleStreamPrices(engine *market.Engine, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, errKindInternal, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		// Set SSE headers
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher.Flush()

		if m != nil {
			m.RecordSSEConnectionChange(1)
			defer m.RecordSSEConnectionChange(-1)
		}
		logger.Debug("SSE client connected", "remote_addr", r.RemoteAddr)

		// Send initial connection event
		fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
		flusher.Flush()

		ticker := time.NewTicker(priceStreamInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				logger.Debug("SSE client disconnected", "remote_addr", r.RemoteAddr)
				return
			case <-ticker.C:
				snapshot := engine.Snapshot()
				data, err := json.Marshal(map[string]interface{}{
					"timestamp": time.Now(),
					"price":     snapshot.CurrentPrice,
					"liquidity": snapshot.Liquidity,
					"volume":    snapshot.Volume,
				})
				if err != nil {
					logger.Error("failed to marshal price tick", "error", err)
					continue
				}
				fmt.Fprintf(w, "event: price\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	})
}
