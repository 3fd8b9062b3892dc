package repository

import (
	"context"
	"fmt"

	"starsbot/database"
	"starsbot/models"

	"github.com/jackc/pgx/v5"
)

// SettingsRepository implements the SettingsRepository interface over the
// single row settings table
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

func newSettingsRepositoryWithTx(tx queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get returns the current settings, or the defaults when the row is missing
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `
		SELECT min_referrals, min_tasks, referral_reward, updated_at
		FROM settings
		WHERE id = 1
	`

	var settings models.Settings
	err := r.q.QueryRow(ctx, query).Scan(
		&settings.MinReferrals,
		&settings.MinTasks,
		&settings.ReferralReward,
		&settings.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// Update sets a single setting
func (r *SettingsRepository) Update(ctx context.Context, key models.SettingKey, value int64) error {
	var column string
	switch key {
	case models.SettingMinReferrals:
		column = "min_referrals"
	case models.SettingMinTasks:
		column = "min_tasks"
	case models.SettingReferralReward:
		column = "referral_reward"
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	defaults := models.DefaultSettings()
	if _, err := r.q.Exec(ctx, `
		INSERT INTO settings (id, min_referrals, min_tasks, referral_reward)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, defaults.MinReferrals, defaults.MinTasks, defaults.ReferralReward); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	query := fmt.Sprintf(`UPDATE settings SET %s = $1, updated_at = NOW() WHERE id = 1`, column)
	if _, err := r.q.Exec(ctx, query, value); err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}
