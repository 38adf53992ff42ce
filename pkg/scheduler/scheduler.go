// Package scheduler fires the TIME_ELAPSED trigger on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/workflow"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs time-elapsed rules once an hour.
const DefaultSchedule = "@hourly"

var ErrAlreadyStarted = errors.New("scheduler already started")

// TriggerHandler runs every active rule for a trigger.
type TriggerHandler interface {
	HandleTrigger(ctx context.Context, trigger models.WorkflowTrigger, payload map[string]any) []*workflow.ExecutionResult
}

type Scheduler struct {
	handler  TriggerHandler
	schedule string
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New validates schedule, a standard five-field cron expression or a
// descriptor such as "@every 15m".
func New(logger *slog.Logger, handler TriggerHandler, schedule string, opts ...Option) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	_, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression '%s': %w", schedule, err)
	}

	s := &Scheduler{
		handler:  handler,
		schedule: schedule,
		logger:   logger.With("module", "scheduler", "schedule", schedule),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrAlreadyStarted
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn))

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	_, err := s.cron.AddFunc(s.schedule, func() { s.Tick(s.ctx) })
	if err != nil {
		s.cancel()
		s.cron = nil

		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started")

	return nil
}

// Tick fires TIME_ELAPSED once with {"timestamp": now}.
func (s *Scheduler) Tick(ctx context.Context) []*workflow.ExecutionResult {
	payload := map[string]any{
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}

	results := s.handler.HandleTrigger(ctx, models.TriggerTimeElapsed, payload)

	s.logger.InfoContext(ctx, "Time elapsed trigger fired", "executions", len(results))

	return results
}

// Stop cancels the context of a running tick, then waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	stopped := s.cron.Stop()
	s.cancel()
	<-stopped.Done()
	s.cron = nil

	s.logger.Info("Scheduler stopped")
}
