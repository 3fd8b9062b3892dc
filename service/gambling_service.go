package service

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"starsbot/events"
	"starsbot/models"
)

// SlotStakes is the fixed menu of slot machine stakes
var SlotStakes = []int64{5, 10, 25, 50, 100, 200, 500}

// WinProbability is the chance of a slot spin paying out
const WinProbability = 0.5

type gamblingService struct {
	uowFactory UnitOfWorkFactory
	random     func() float64
}

// NewGamblingService creates a new gambling service. random must return a
// value in [0, 1); nil uses math/rand.
func NewGamblingService(uowFactory UnitOfWorkFactory, random func() float64) GamblingService {
	if random == nil {
		random = rand.Float64
	}
	return &gamblingService{
		uowFactory: uowFactory,
		random:     random,
	}
}

// Wager settles a spin as one balance adjustment of +stake or -stake
func (s *gamblingService) Wager(ctx context.Context, userID int64, stake int64) (*models.WagerResult, error) {
	if !slices.Contains(SlotStakes, stake) {
		return nil, ErrInvalidStake
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := lockActiveAccount(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if account.Balance < stake {
		return nil, ErrInsufficientFunds
	}

	won := s.random() < WinProbability

	delta := -stake
	transactionType := models.TransactionTypeSlotLoss
	if won {
		delta = stake
		transactionType = models.TransactionTypeSlotWin
	}

	newBalance, err := applyBalanceChange(ctx, uow, userID, delta, transactionType, map[string]any{
		"stake": stake,
		"won":   won,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle wager: %w", err)
	}

	uow.EventBus().Publish(events.WagerSettledEvent{
		UserID: userID,
		Stake:  stake,
		Won:    won,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WagerResult{
		Won:        won,
		Stake:      stake,
		NewBalance: newBalance,
	}, nil
}
