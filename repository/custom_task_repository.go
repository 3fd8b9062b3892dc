package repository

import (
	"context"
	"fmt"

	"starsbot/database"
	"starsbot/models"

	"github.com/jackc/pgx/v5"
)

// CustomTaskRepository implements the CustomTaskRepository interface
type CustomTaskRepository struct {
	q queryable
}

// NewCustomTaskRepository creates a new custom task repository
func NewCustomTaskRepository(db *database.DB) *CustomTaskRepository {
	return &CustomTaskRepository{q: db.Pool}
}

func newCustomTaskRepositoryWithTx(tx queryable) *CustomTaskRepository {
	return &CustomTaskRepository{q: tx}
}

// List returns the admin defined tasks in the order they were added
func (r *CustomTaskRepository) List(ctx context.Context) ([]*models.CustomTask, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, channel_id, link, reward, created_at
		FROM custom_tasks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.CustomTask
	for rows.Next() {
		var task models.CustomTask
		if err := rows.Scan(&task.ID, &task.ChannelID, &task.Link, &task.Reward, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom task: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate custom tasks: %w", err)
	}

	return tasks, nil
}

func (r *CustomTaskRepository) GetByID(ctx context.Context, id int64) (*models.CustomTask, error) {
	var task models.CustomTask
	err := r.q.QueryRow(ctx, `
		SELECT id, channel_id, link, reward, created_at
		FROM custom_tasks
		WHERE id = $1
	`, id).Scan(&task.ID, &task.ChannelID, &task.Link, &task.Reward, &task.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom task %d: %w", id, err)
	}
	return &task, nil
}

func (r *CustomTaskRepository) Create(ctx context.Context, channelID, link string, reward int64) (*models.CustomTask, error) {
	task := models.CustomTask{ChannelID: channelID, Link: link, Reward: reward}
	err := r.q.QueryRow(ctx, `
		INSERT INTO custom_tasks (channel_id, link, reward)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, channelID, link, reward).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add custom task for %s: %w", channelID, err)
	}
	return &task, nil
}

func (r *CustomTaskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM custom_tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete custom task %d: %w", id, err)
	}
	return nil
}
