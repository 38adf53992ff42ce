package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/hireflow/pkg/queue/redis"
)

const DefaultRedisURL = "redis://localhost:6379/0"

func NewJobQueue(ctx context.Context, logger *slog.Logger, redisURL string) (*redis.Queue, error) {
	if redisURL == "" {
		redisURL = DefaultRedisURL
	}

	jobs, err := redis.Connect(ctx, logger, redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize job queue: %w", err)
	}

	return jobs, nil
}
