package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/nexuslab/vigil/pkg/models"
)

// BatchExecutor runs one fully-audited workflow execution; the engine
// implements it.
type BatchExecutor interface {
	ExecuteWorkflow(ctx context.Context, workflowID, triggeredBy string, snapshot models.SensorSnapshot) (*models.ExecutionRecord, error)
}

// BatchScheduler runs workflows on cron schedules, each execution fed the
// sensor source's snapshot at fire time.
type BatchScheduler struct {
	cron     *cron.Cron
	source   SensorSource
	executor BatchExecutor
	logger   *slog.Logger
}

func NewBatchScheduler(source SensorSource, executor BatchExecutor, logger *slog.Logger) *BatchScheduler {
	return &BatchScheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		source:   source,
		executor: executor,
		logger:   logger.With("module", "batch_scheduler"),
	}
}

// Add registers a workflow on a standard cron expression.
func (s *BatchScheduler) Add(cronExpr, workflowID string) error {
	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	_, err := s.cron.AddFunc(cronExpr, func() {
		s.run(workflowID)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule workflow %s: %w", workflowID, err)
	}

	s.logger.Info("Scheduled workflow", "workflow_id", workflowID, "cron", cronExpr)

	return nil
}

func (s *BatchScheduler) run(workflowID string) {
	ctx := context.Background()
	snapshot := s.source.Snapshot(ctx)

	record, err := s.executor.ExecuteWorkflow(ctx, workflowID, "schedule", snapshot)
	if err != nil {
		s.logger.Error("Scheduled execution failed", "workflow_id", workflowID, "error", err)

		return
	}

	s.logger.Info("Scheduled execution completed",
		"workflow_id", workflowID, "execution_id", record.ID, "status", record.Status)
}

func (s *BatchScheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *BatchScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Batch scheduler stopped")
}
