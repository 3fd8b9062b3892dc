package service

import (
	"time"

	"starsbot/models"
)

const (
	dayWindow   = 24 * time.Hour
	weekWindow  = 7 * dayWindow
	monthWindow = 30 * dayWindow
)

// ReportingWindows returns the starts of the rolling day, week and month
// windows that end at now
func ReportingWindows(now time.Time) (day, week, month time.Time) {
	return now.Add(-dayWindow), now.Add(-weekWindow), now.Add(-monthWindow)
}

// LeaderboardSince returns the start of the rolling window for a leaderboard period
func LeaderboardSince(period models.LeaderboardPeriod, now time.Time) time.Time {
	day, week, month := ReportingWindows(now)
	switch period {
	case models.LeaderboardWeek:
		return week
	case models.LeaderboardMonth:
		return month
	default:
		return day
	}
}
