// Package repository persists aggregate match statistics. Game state itself
// never touches storage; rooms live and die in memory.
package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const (
	keyStarted   = "stats:games:started"
	keyAbandoned = "stats:games:abandoned"
	keyFinished  = "stats:games:finished:" // suffixed with the winning mark, "-" for ties
)

// Stats is a snapshot of the aggregate counters.
type Stats struct {
	Started   int64
	Abandoned int64
	WonByX    int64
	WonByO    int64
	Tied      int64
}

type StatsRepository interface {
	RecordStarted(ctx context.Context) error
	RecordFinished(ctx context.Context, winner string) error
	RecordAbandoned(ctx context.Context) error
	Snapshot(ctx context.Context) (Stats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func (that *dbStats) RecordStarted(ctx context.Context) error {
	if err := that.client.Incr(ctx, keyStarted).Err(); err != nil {
		return fmt.Errorf("failed to increment started counter: %w", err)
	}

	return nil
}

func (that *dbStats) RecordFinished(ctx context.Context, winner string) error {
	if err := that.client.Incr(ctx, keyFinished+winner).Err(); err != nil {
		return fmt.Errorf("failed to increment finished counter: %w", err)
	}

	return nil
}

func (that *dbStats) RecordAbandoned(ctx context.Context) error {
	if err := that.client.Incr(ctx, keyAbandoned).Err(); err != nil {
		return fmt.Errorf("failed to increment abandoned counter: %w", err)
	}

	return nil
}

func (that *dbStats) Snapshot(ctx context.Context) (Stats, error) {
	values, err := that.client.MGet(ctx,
		keyStarted,
		keyAbandoned,
		keyFinished+entity.PlayerX,
		keyFinished+entity.PlayerO,
		keyFinished+entity.PlayerTie,
	).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read counters: %w", err)
	}

	counters := make([]int64, len(values))
	for i, value := range values {
		counters[i] = parseCounter(value)
	}

	return Stats{
		Started:   counters[0],
		Abandoned: counters[1],
		WonByX:    counters[2],
		WonByO:    counters[3],
		Tied:      counters[4],
	}, nil
}

// parseCounter treats missing or malformed values as zero; counters are
// best-effort telemetry, not game state.
func parseCounter(value any) int64 {
	s, ok := value.(string)
	if !ok {
		return 0
	}

	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}

	return n
}
