package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/platform/queue"
	"github.com/dontdude/regexbench/internal/platform/web"
)

// resultMessage wraps a benchmark result for WebSocket clients, which also
// receive raw progress events.
type resultMessage struct {
	Kind   string              `json:"kind"`
	Result domain.ResultRecord `json:"result"`
}

func main() {
	// 1. Initialize logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Redis (Fail-Fast)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	pub, err := queue.NewRedisPublisher(ctx, redisAddr)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer pub.Close()

	hub := web.NewHub()

	// 3. Start relays (Background goroutines)
	progressCh, err := pub.SubscribeProgress(ctx)
	if err != nil {
		slog.Error("Failed to subscribe to progress", "error", err)
		os.Exit(1)
	}
	resultsCh, err := pub.SubscribeResults(ctx)
	if err != nil {
		slog.Error("Failed to subscribe to results", "error", err)
		os.Exit(1)
	}
	go relayProgress(hub, progressCh)
	go relayResults(ctx, hub, pub, resultsCh)
	go pub.StartRecoveryRoutine(ctx, 30*time.Second, time.Minute, func(rec domain.ResultRecord) {
		hub.Broadcast(rec.RunID, resultMessage{Kind: "result", Result: rec})
	})

	// 4. Setup Rate Limiter
	// Rate: 0.5 tokens/sec (1 connection every 2s), Capacity: 5 (Burst)
	limiter := web.NewRateLimiter(0.5, 5)
	go limiter.Cleanup(ctx)

	// 5. Register Handlers
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ws", limiter.Middleware(hub.Handler()))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// 6. Middleware (CORS)
	srv := &http.Server{Addr: ":8080", Handler: enableCORS(mux)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Progress relay starting on :8080", "redis", redisAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// relayProgress forwards progress events to the clients following each run.
func relayProgress(hub *web.Hub, events <-chan domain.ProgressEvent) {
	for ev := range events {
		hub.Broadcast(ev.RunID, ev)
	}
}

// relayResults forwards results, then acknowledges them so that the
// recovery routine does not replay them.
func relayResults(ctx context.Context, hub *web.Hub, q domain.ResultPublisher, records <-chan domain.ResultRecord) {
	for rec := range records {
		hub.Broadcast(rec.RunID, resultMessage{Kind: "result", Result: rec})
		if err := q.Acknowledge(ctx, rec.RawID); err != nil {
			slog.Error("Failed to acknowledge result", "runID", rec.RunID, "msgID", rec.RawID, "error", err)
		}
	}
}

// enableCORS adds headers to allow requests from a dashboard.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle Preflight OPTIONS request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
