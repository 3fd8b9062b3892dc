package service

import (
	"context"
	"math/rand"
	"testing"

	"starsbot/events"
	"starsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedRandom(v float64) func() float64 {
	return func() float64 { return v }
}

func TestGamblingService_Wager(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		roll        float64
		stake       int64
		balance     int64
		wantWon     bool
		wantDelta   int64
		wantBalance int64
		wantType    models.TransactionType
	}{
		{
			name:        "win pays the stake",
			roll:        0.1,
			stake:       25,
			balance:     100,
			wantWon:     true,
			wantDelta:   25,
			wantBalance: 125,
			wantType:    models.TransactionTypeSlotWin,
		},
		{
			name:        "loss takes the stake",
			roll:        0.9,
			stake:       25,
			balance:     100,
			wantWon:     false,
			wantDelta:   -25,
			wantBalance: 75,
			wantType:    models.TransactionTypeSlotLoss,
		},
		{
			name:        "boundary roll loses",
			roll:        WinProbability,
			stake:       5,
			balance:     5,
			wantWon:     false,
			wantDelta:   -5,
			wantBalance: 0,
			wantType:    models.TransactionTypeSlotLoss,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMocks()
			m.expectCommit()
			m.Accounts.On("GetForUpdate", ctx, testUserID).Return(newTestAccount(testUserID, tt.balance), nil)
			m.expectBalanceChange(testUserID, tt.wantDelta, tt.wantBalance, tt.wantType)

			svc := NewGamblingService(m.Factory, fixedRandom(tt.roll))
			result, err := svc.Wager(ctx, testUserID, tt.stake)

			require.NoError(t, err)
			assert.Equal(t, tt.wantWon, result.Won)
			assert.Equal(t, tt.wantBalance, result.NewBalance)

			var settled []events.WagerSettledEvent
			for _, e := range m.publishedEvents() {
				if evt, ok := e.(events.WagerSettledEvent); ok {
					settled = append(settled, evt)
				}
			}
			require.Len(t, settled, 1)
			assert.Equal(t, tt.wantWon, settled[0].Won)
			m.assertExpectations(t)
		})
	}
}

func TestGamblingService_Wager_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("stake outside the menu", func(t *testing.T) {
		m := newTestMocks()
		svc := NewGamblingService(m.Factory, fixedRandom(0))

		_, err := svc.Wager(ctx, testUserID, 7)

		assert.ErrorIs(t, err, ErrInvalidStake)
		m.Factory.AssertNotCalled(t, "Create")
	})

	t.Run("stake above balance", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetForUpdate", ctx, testUserID).Return(newTestAccount(testUserID, 9), nil)
		svc := NewGamblingService(m.Factory, fixedRandom(0))

		_, err := svc.Wager(ctx, testUserID, 10)

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		m.Accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("frozen account", func(t *testing.T) {
		m := newTestMocks()
		frozen := newTestAccount(testUserID, 500)
		frozen.Frozen = true
		m.Accounts.On("GetForUpdate", ctx, testUserID).Return(frozen, nil)
		svc := NewGamblingService(m.Factory, fixedRandom(0))

		_, err := svc.Wager(ctx, testUserID, 10)

		assert.ErrorIs(t, err, ErrAccountFrozen)
	})
}

func TestGamblingService_WinRate(t *testing.T) {
	ctx := context.Background()
	const spins = 2000

	m := newTestMocks()
	m.expectCommit()
	m.Accounts.On("GetForUpdate", ctx, testUserID).Return(newTestAccount(testUserID, 1000), nil)
	m.Accounts.On("AdjustBalance", ctx, testUserID, mock.Anything).Return(int64(1000), nil)
	m.BalanceHistory.On("Record", ctx, mock.Anything).Return(nil)

	source := rand.New(rand.NewSource(42))
	svc := NewGamblingService(m.Factory, source.Float64)

	wins := 0
	for i := 0; i < spins; i++ {
		result, err := svc.Wager(ctx, testUserID, 5)
		require.NoError(t, err)
		if result.Won {
			wins++
		}
	}

	assert.InDelta(t, WinProbability, float64(wins)/spins, 0.05)
}
