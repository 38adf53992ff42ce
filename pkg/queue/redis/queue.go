// Package redis implements the job queue on Redis lists.
//
// Ready jobs live in a list per queue (RPUSH on enqueue, BLPOP on consume).
// Delayed jobs wait in a sorted set scored by their due time and are moved to
// the list by Pop once due.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/hireflow/pkg/queue"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "hireflow:queue:"

type Queue struct {
	client redis.UniversalClient
	logger *slog.Logger
	now    func() time.Time
}

// Connect parses a redis:// URL, pings the server and returns a queue on it.
func Connect(ctx context.Context, logger *slog.Logger, url string) (*Queue, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return New(logger, client), nil
}

func New(logger *slog.Logger, client redis.UniversalClient) *Queue {
	return &Queue{
		client: client,
		logger: logger.With("module", "redis_queue"),
		now:    time.Now,
	}
}

func listKey(name queue.QueueName) string {
	return keyPrefix + string(name)
}

func delayedKey(name queue.QueueName) string {
	return keyPrefix + string(name) + ":delayed"
}

func (q *Queue) AddJob(ctx context.Context, name queue.QueueName, job queue.JobName, payload queue.JobPayload, opts ...queue.JobOption) (string, error) {
	if name == "" {
		return "", queue.ErrQueueRequired
	}

	options := queue.BuildOptions(opts...)

	id := options.JobID
	if id == "" {
		id = uuid.New().String()
	}

	now := q.now().UTC()

	entry := queue.Job{
		ID:          id,
		Queue:       name,
		Name:        job,
		Data:        payload,
		Attempts:    options.Attempts,
		EnqueuedAt:  now,
		AvailableAt: now.Add(options.Delay),
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}

	if options.Delay > 0 {
		err = q.client.ZAdd(ctx, delayedKey(name), redis.Z{
			Score:  float64(entry.AvailableAt.UnixMilli()),
			Member: encoded,
		}).Err()
	} else {
		err = q.client.RPush(ctx, listKey(name), encoded).Err()
	}

	if err != nil {
		return "", fmt.Errorf("failed to enqueue job on %s: %w", name, err)
	}

	q.logger.DebugContext(ctx, "Job enqueued", "queue", name, "job", job, "job_id", id, "delay", options.Delay)

	return id, nil
}

// Pop waits up to timeout for the next ready job. It returns nil and no
// error when nothing arrived in time.
func (q *Queue) Pop(ctx context.Context, name queue.QueueName, timeout time.Duration) (*queue.Job, error) {
	if err := q.promoteDue(ctx, name); err != nil {
		return nil, err
	}

	result, err := q.client.BLPop(ctx, timeout, listKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to pop from %s: %w", name, err)
	}

	// BLPOP returns [key, value].
	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply from %s", name)
	}

	var job queue.Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job from %s: %w", name, err)
	}

	return &job, nil
}

// Len returns the number of ready jobs.
func (q *Queue) Len(ctx context.Context, name queue.QueueName) (int64, error) {
	return q.client.LLen(ctx, listKey(name)).Result()
}

func (q *Queue) promoteDue(ctx context.Context, name queue.QueueName) error {
	due, err := q.client.ZRangeByScore(ctx, delayedKey(name), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(q.now().UTC().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read delayed jobs of %s: %w", name, err)
	}

	for _, member := range due {
		// Only the caller that removes the member pushes it, so concurrent
		// consumers never duplicate a job.
		removed, err := q.client.ZRem(ctx, delayedKey(name), member).Result()
		if err != nil {
			return fmt.Errorf("failed to claim delayed job of %s: %w", name, err)
		}

		if removed == 0 {
			continue
		}

		if err := q.client.RPush(ctx, listKey(name), member).Err(); err != nil {
			return fmt.Errorf("failed to promote delayed job of %s: %w", name, err)
		}
	}

	return nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}
