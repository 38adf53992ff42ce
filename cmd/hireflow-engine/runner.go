// Package main provides the Hireflow engine service: it consumes recruiting
// events, runs matching rules and fires the time-elapsed schedule.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/hireflow/pkg/scheduler"
	"github.com/dukex/hireflow/pkg/workflow"
)

type Runner struct {
	engine    *workflow.Engine
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
}

func NewRunner(logger *slog.Logger, engine *workflow.Engine, scheduler *scheduler.Scheduler) *Runner {
	return &Runner{
		engine:    engine,
		scheduler: scheduler,
		logger:    logger.With("module", "engine_runner"),
	}
}

// Run starts the event subscription and the scheduler and blocks until ctx
// is done.
func (r *Runner) Run(ctx context.Context) error {
	err := r.engine.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer r.engine.Stop()

	err = r.scheduler.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer r.scheduler.Stop()

	r.logger.InfoContext(ctx, "Engine running")

	<-ctx.Done()

	r.logger.Info("Shutting down gracefully...")

	return nil
}
