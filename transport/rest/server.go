package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
)

// StatsProvider exposes the aggregate match counters. Nil when the server
// runs without storage.
type StatsProvider interface {
	Snapshot(ctx context.Context) (repository.Stats, error)
}

// Start - starts the HTTP server with the health check, room-code issuer
// and stats endpoint, and shuts it down when ctx is canceled.
func Start(ctx context.Context, port string, registry *game.Registry, stats StatsProvider) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("/rooms", newRoomHandler(registry))
	mux.HandleFunc("/stats", statsHandler(stats))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
