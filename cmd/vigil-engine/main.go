package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/nexuslab/vigil/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "vigil-engine",
		EnableShellCompletion: true,
		Usage:                 "Run the rule engine against the live sensor stream",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine-id",
				Aliases: []string{"id"},
				Usage:   "Custom engine ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("ENGINE_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL for the shared alert feed",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "tick-interval",
				Usage:   "Interval between sensor snapshot evaluations",
				Value:   2 * time.Second,
				Sources: cli.EnvVars("TICK_INTERVAL"),
			},
			&cli.StringSliceFlag{
				Name:    "equipment",
				Usage:   "Equipment to simulate, as id:type pairs",
				Value:   defaultEquipment,
				Sources: cli.EnvVars("EQUIPMENT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export spans for batch executions via OTLP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.BoolFlag{
				Name:    "scheduler",
				Usage:   "Run cron-scheduled batch executions of active workflows",
				Sources: cli.EnvVars("SCHEDULER_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for scheduled batch executions",
				Value:   "*/5 * * * *",
				Sources: cli.EnvVars("SCHEDULE"),
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

			engineID := command.String("engine-id")
			if engineID == "" {
				engineID = "engine-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("vigil-engine").With("engine_id", engineID)

			logger.InfoContext(ctx, "Initializing Vigil Engine")

			runner, err := NewRunner(ctx, engineID, logger, RunnerConfig{
				DatabaseURL:  command.String("database-url"),
				RedisURL:     command.String("redis-url"),
				TickInterval: command.Duration("tick-interval"),
				Equipment:    command.StringSlice("equipment"),
				Tracing:      command.Bool("tracing"),
				Scheduler:    command.Bool("scheduler"),
				Schedule:     command.String("schedule"),
			})
			if err != nil {
				return err
			}

			err = runner.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start engine runner", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
