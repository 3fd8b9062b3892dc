package models

import "time"

// SettingKey names one of the admin adjustable settings
type SettingKey string

const (
	SettingMinReferrals   SettingKey = "min_referrals"
	SettingMinTasks       SettingKey = "min_tasks"
	SettingReferralReward SettingKey = "referral_reward"
)

// Settings is the program wide configuration singleton
type Settings struct {
	MinReferrals   int64     `db:"min_referrals"`
	MinTasks       int64     `db:"min_tasks"`
	ReferralReward int64     `db:"referral_reward"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// DefaultSettings mirrors the seed row of the settings table
func DefaultSettings() *Settings {
	return &Settings{
		MinReferrals:   5,
		MinTasks:       3,
		ReferralReward: 1,
	}
}
