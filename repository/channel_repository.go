package repository

import (
	"context"
	"fmt"

	"starsbot/database"
	"starsbot/models"
)

// ChannelRepository implements the ChannelRepository interface for the
// channels users must join before using the bot
type ChannelRepository struct {
	q queryable
}

// NewChannelRepository creates a new required channel repository
func NewChannelRepository(db *database.DB) *ChannelRepository {
	return &ChannelRepository{q: db.Pool}
}

func newChannelRepositoryWithTx(tx queryable) *ChannelRepository {
	return &ChannelRepository{q: tx}
}

// List returns the required channels in the order they were added
func (r *ChannelRepository) List(ctx context.Context) ([]*models.Channel, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, channel_id, link, created_at
		FROM required_channels
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list required channels: %w", err)
	}
	defer rows.Close()

	var channels []*models.Channel
	for rows.Next() {
		var channel models.Channel
		if err := rows.Scan(&channel.ID, &channel.ChannelID, &channel.Link, &channel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan required channel: %w", err)
		}
		channels = append(channels, &channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate required channels: %w", err)
	}

	return channels, nil
}

func (r *ChannelRepository) Create(ctx context.Context, channelID, link string) (*models.Channel, error) {
	channel := models.Channel{ChannelID: channelID, Link: link}
	err := r.q.QueryRow(ctx, `
		INSERT INTO required_channels (channel_id, link)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, channelID, link).Scan(&channel.ID, &channel.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add required channel %s: %w", channelID, err)
	}
	return &channel, nil
}

func (r *ChannelRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM required_channels WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete required channel %d: %w", id, err)
	}
	return nil
}
