// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/hireflow/pkg/actions"
	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/otelhelper"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/queue"
	"github.com/dukex/hireflow/pkg/workflow"
	"go.opentelemetry.io/otel/trace"
)

// NewTracer returns an OTLP tracer when enabled, a no-op tracer otherwise.
// The returned shutdown func is never nil.
//
// nolint:ireturn
func NewTracer(ctx context.Context, logger *slog.Logger, serviceName string, enabled bool) (trace.Tracer, otelhelper.ShutdownFunc) {
	noShutdown := func(context.Context) error { return nil }

	if !enabled {
		return otelhelper.NoopTracer(), noShutdown
	}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
	if err != nil {
		logger.WarnContext(ctx, "Tracing disabled, failed to create tracer", "error", err)

		return otelhelper.NoopTracer(), noShutdown
	}

	return tracer, shutdown
}

// NewEngine wires the action executor and the workflow engine.
func NewEngine(
	logger *slog.Logger,
	store persistence.Persistence,
	bus eventbus.EventBus,
	jobs queue.JobQueue,
	tracer trace.Tracer,
) *workflow.Engine {
	executor := actions.NewExecutor(logger, bus, jobs, store.EntityRepository())

	return workflow.NewEngine(logger, store, bus, executor, workflow.WithTracer(tracer))
}
