package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/hireflow/pkg/cmd"
	"github.com/dukex/hireflow/pkg/log"
	"github.com/dukex/hireflow/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
)

func main() {
	logger := log.WithModule("engine")

	command := &cli.Command{
		Name:                  "hireflow-engine",
		Usage:                 "Run workflow rules on recruiting events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file path or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL of the job queue",
				Value:   cmd.DefaultRedisURL,
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "time-elapsed-schedule",
				Usage:   "Cron expression for TIME_ELAPSED rules",
				Value:   scheduler.DefaultSchedule,
				Sources: cli.EnvVars("TIME_ELAPSED_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Hireflow engine")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracer, shutdownTracer := cmd.NewTracer(ctx, logger, "hireflow-engine", command.Bool("tracing"))
			defer func() {
				if err := shutdownTracer(context.WithoutCancel(ctx)); err != nil {
					logger.Error("Failed to shutdown tracer provider", "error", err)
				}
			}()

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(context.WithoutCancel(ctx)); err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "hireflow-engine", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			jobs, err := cmd.NewJobQueue(ctx, logger, command.String("redis-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := jobs.Close(); err != nil {
					logger.Error("Failed to close job queue", "error", err)
				}
			}()

			engine := cmd.NewEngine(logger, persistence, eventBus, jobs, tracer)

			timeElapsed, err := scheduler.New(logger, engine, command.String("time-elapsed-schedule"))
			if err != nil {
				return err
			}

			return NewRunner(logger, engine, timeElapsed).Run(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
