package models

// PeriodCounts is a value aggregated over the standard reporting windows
type PeriodCounts struct {
	Day   int64
	Week  int64
	Month int64
	Total int64
}

// AdminStats is the program overview shown in the admin panel
type AdminStats struct {
	NewAccounts    PeriodCounts
	WithdrawnStars PeriodCounts
	PendingCount   int64
}

// LeaderboardPeriod selects the window of the referral leaderboard
type LeaderboardPeriod string

const (
	LeaderboardDay   LeaderboardPeriod = "day"
	LeaderboardWeek  LeaderboardPeriod = "week"
	LeaderboardMonth LeaderboardPeriod = "month"
)

// LeaderboardEntry is a single row in the referral leaderboard
type LeaderboardEntry struct {
	Rank      int
	UserID    int64
	Username  string
	FirstName string
	Referrals int64
}

// WagerResult is the outcome of a slot spin
type WagerResult struct {
	Won        bool
	Stake      int64
	NewBalance int64
}

// AccountPage is one page of the admin user listing
type AccountPage struct {
	Accounts []*Account
	Page     int
	Pages    int
	Total    int64
}
