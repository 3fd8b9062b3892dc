package service

import (
	"context"
	"fmt"
	"time"

	"starsbot/models"
)

// LeaderboardSize is the number of referrers shown in the leaderboard
const LeaderboardSize = 5

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// GetAdminStats returns new accounts and approved withdrawn stars over the
// rolling day, week and month windows and in total
func (s *statsService) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	day, week, month := ReportingWindows(s.now())
	stats := &models.AdminStats{}

	accounts := uow.AccountRepository()
	var err error
	if stats.NewAccounts.Day, err = accounts.CountCreatedSince(ctx, day); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	if stats.NewAccounts.Week, err = accounts.CountCreatedSince(ctx, week); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	if stats.NewAccounts.Month, err = accounts.CountCreatedSince(ctx, month); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	if stats.NewAccounts.Total, err = accounts.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	withdrawals := uow.WithdrawalRepository()
	if stats.WithdrawnStars.Day, err = withdrawals.SumApprovedSince(ctx, day); err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	if stats.WithdrawnStars.Week, err = withdrawals.SumApprovedSince(ctx, week); err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	if stats.WithdrawnStars.Month, err = withdrawals.SumApprovedSince(ctx, month); err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	if stats.WithdrawnStars.Total, err = withdrawals.SumApprovedSince(ctx, time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	if stats.PendingCount, err = withdrawals.CountPending(ctx); err != nil {
		return nil, fmt.Errorf("failed to count pending withdrawals: %w", err)
	}

	return stats, nil
}

// GetLeaderboard ranks referrers by referred accounts created within the period
func (s *statsService) GetLeaderboard(ctx context.Context, period models.LeaderboardPeriod, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = LeaderboardSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.AccountRepository().TopReferrers(ctx, LeaderboardSince(period, s.now()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}

	for i, entry := range entries {
		entry.Rank = i + 1
	}
	return entries, nil
}
