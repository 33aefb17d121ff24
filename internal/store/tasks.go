package store

import (
	"context"
	"time"

	"storefront-service/internal/models"
)

// ScheduleTask persists a deferred task. The unique constraint on
// (kind, order_id) makes scheduling idempotent across concurrent callers:
// only the first insert wins and later attempts report scheduled=false.
func (s *Store) ScheduleTask(ctx context.Context, task *models.ScheduledTask) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (kind, order_id, status, due_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind, order_id) DO NOTHING`,
		task.Kind, task.OrderID, models.TaskStatusPending, task.DueAt, task.Payload)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ClaimDueTasks atomically claims a batch of runnable tasks: pending rows
// past due, plus processing rows whose claim went stale (worker died
// between claim and send). SKIP LOCKED keeps concurrent workers from
// claiming the same row, so each task is delivered by exactly one worker.
func (s *Store) ClaimDueTasks(ctx context.Context, limit int, staleAfter time.Duration) ([]models.ScheduledTask, error) {
	var tasks []models.ScheduledTask
	err := s.db.SelectContext(ctx, &tasks, `
		UPDATE scheduled_tasks
		SET status = $1, claimed_at = NOW(), attempts = attempts + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM scheduled_tasks
			WHERE (status = $2 AND due_at <= NOW())
			   OR (status = $1 AND claimed_at < NOW() - $3::interval)
			ORDER BY due_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		models.TaskStatusProcessing, models.TaskStatusPending,
		staleAfter.String(), limit)
	return tasks, err
}

// MarkTaskSent finalizes a delivered task.
func (s *Store) MarkTaskSent(ctx context.Context, taskID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE scheduled_tasks SET status = $1, updated_at = NOW() WHERE id = $2",
		models.TaskStatusSent, taskID)
	return err
}

// ReleaseTask returns a claimed task to the queue after a failed attempt,
// or parks it as failed once the attempt limit is reached.
func (s *Store) ReleaseTask(ctx context.Context, taskID int64, maxAttempts int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_tasks
		SET status = CASE WHEN attempts >= $1 THEN $2 ELSE $3 END,
		    updated_at = NOW()
		WHERE id = $4`,
		maxAttempts, models.TaskStatusFailed, models.TaskStatusPending, taskID)
	return err
}
