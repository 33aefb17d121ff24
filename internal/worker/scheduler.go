package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/mailer"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// TaskStore is the durable task queue the scheduler drains.
type TaskStore interface {
	ClaimDueTasks(ctx context.Context, limit int, staleAfter time.Duration) ([]models.ScheduledTask, error)
	MarkTaskSent(ctx context.Context, taskID int64) error
	ReleaseTask(ctx context.Context, taskID int64, maxAttempts int) error
}

// Scheduler executes deferred tasks persisted by the dispatcher. Tasks
// live in the store, so a scheduled email survives restarts and fires
// exactly once even with multiple scheduler instances (claim-and-mark
// semantics in the store).
type Scheduler struct {
	tasks       TaskStore
	mailer      mailer.Sender
	logger      *zap.Logger
	interval    time.Duration
	batchSize   int
	staleAfter  time.Duration
	maxAttempts int
}

// NewScheduler creates a deferred-task scheduler
func NewScheduler(tasks TaskStore, sender mailer.Sender, interval time.Duration, batchSize int, staleAfter time.Duration, maxAttempts int) *Scheduler {
	return &Scheduler{
		tasks:       tasks,
		mailer:      sender,
		logger:      util.GetLogger(),
		interval:    interval,
		batchSize:   batchSize,
		staleAfter:  staleAfter,
		maxAttempts: maxAttempts,
	}
}

// Run polls for due tasks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Task scheduler started",
		zap.Duration("interval", s.interval),
		zap.Int("batch_size", s.batchSize))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Task scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessDue(ctx); err != nil {
				s.logger.Error("Task scheduler pass failed", zap.Error(err))
			}
		}
	}
}

// ProcessDue claims and executes one batch of runnable tasks, returning
// the number delivered. A failed task is released back to the queue with
// its attempt counted; the rest of the batch still runs.
func (s *Scheduler) ProcessDue(ctx context.Context) (int, error) {
	tasks, err := s.tasks.ClaimDueTasks(ctx, s.batchSize, s.staleAfter)
	if err != nil {
		return 0, fmt.Errorf("failed to claim due tasks: %w", err)
	}

	sent := 0
	for _, task := range tasks {
		if err := s.execute(&task); err != nil {
			util.ReviewEmailsFailed.Inc()
			s.logger.Error("Deferred task failed",
				zap.Int64("task_id", task.ID),
				zap.String("kind", task.Kind),
				zap.Int("attempts", task.Attempts),
				zap.Error(err))

			if err := s.tasks.ReleaseTask(ctx, task.ID, s.maxAttempts); err != nil {
				s.logger.Error("Failed to release task",
					zap.Int64("task_id", task.ID), zap.Error(err))
			}
			continue
		}

		if err := s.tasks.MarkTaskSent(ctx, task.ID); err != nil {
			s.logger.Error("Failed to mark task sent",
				zap.Int64("task_id", task.ID), zap.Error(err))
			continue
		}

		util.ReviewEmailsSent.Inc()
		sent++
		s.logger.Info("Deferred task delivered",
			zap.Int64("task_id", task.ID),
			zap.String("kind", task.Kind),
			zap.Int64("order_id", task.OrderID))
	}

	return sent, nil
}

func (s *Scheduler) execute(task *models.ScheduledTask) error {
	switch task.Kind {
	case models.TaskKindReviewRequestEmail:
		var payload models.ReviewEmailPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("malformed payload: %w", err)
		}

		return s.mailer.SendReviewRequest(&mailer.ReviewRequestEmail{
			Recipient:    payload.CustomerEmail,
			CustomerName: payload.CustomerName,
			Reference:    payload.Reference,
			Products:     payload.Products,
		})
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}
