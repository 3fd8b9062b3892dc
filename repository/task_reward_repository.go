package repository

import (
	"context"
	"fmt"

	"starsbot/database"
)

// TaskRewardRepository records which tasks have already paid out to a user
type TaskRewardRepository struct {
	q queryable
}

// NewTaskRewardRepository creates a new task reward repository
func NewTaskRewardRepository(db *database.DB) *TaskRewardRepository {
	return &TaskRewardRepository{q: db.Pool}
}

func newTaskRewardRepositoryWithTx(tx queryable) *TaskRewardRepository {
	return &TaskRewardRepository{q: tx}
}

// Record stores the reward key and reports whether it was new
func (r *TaskRewardRepository) Record(ctx context.Context, userID int64, signature string, reward int64) (bool, error) {
	result, err := r.q.Exec(ctx, `
		INSERT INTO task_rewards (user_id, signature, reward)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, signature) DO NOTHING
	`, userID, signature, reward)
	if err != nil {
		return false, fmt.Errorf("failed to record task reward %q for user %d: %w", signature, userID, err)
	}
	return result.RowsAffected() == 1, nil
}
