package service

import (
	"testing"

	"starsbot/models"

	"github.com/stretchr/testify/mock"
)

const (
	testUserID     int64 = 111111
	testReferrerID int64 = 222222
	testOtherID    int64 = 333333
)

// testMocks holds a unit of work wired to a full set of mock repositories
type testMocks struct {
	Factory        *MockUnitOfWorkFactory
	UoW            *MockUnitOfWork
	Accounts       *MockAccountRepository
	PromoCodes     *MockPromoCodeRepository
	Checks         *MockCheckRepository
	Withdrawals    *MockWithdrawalRepository
	Settings       *MockSettingsRepository
	BalanceHistory *MockBalanceHistoryRepository
	TaskRewards    *MockTaskRewardRepository
	Channels       *MockChannelRepository
	CustomTasks    *MockCustomTaskRepository
	Events         *MockEventPublisher
	Oracle         *MockVerificationOracle
	Membership     *MockMembershipChecker
	Notifier       *MockWithdrawalNotifier
}

// newTestMocks creates the mocks with the transaction plumbing expectations
// already in place. Commit is left to each test.
func newTestMocks() *testMocks {
	m := &testMocks{
		Factory:        new(MockUnitOfWorkFactory),
		UoW:            new(MockUnitOfWork),
		Accounts:       new(MockAccountRepository),
		PromoCodes:     new(MockPromoCodeRepository),
		Checks:         new(MockCheckRepository),
		Withdrawals:    new(MockWithdrawalRepository),
		Settings:       new(MockSettingsRepository),
		BalanceHistory: new(MockBalanceHistoryRepository),
		TaskRewards:    new(MockTaskRewardRepository),
		Channels:       new(MockChannelRepository),
		CustomTasks:    new(MockCustomTaskRepository),
		Events:         new(MockEventPublisher),
		Oracle:         new(MockVerificationOracle),
		Membership:     new(MockMembershipChecker),
		Notifier:       new(MockWithdrawalNotifier),
	}

	m.UoW.SetRepositories(MockRepositories{
		Accounts:       m.Accounts,
		PromoCodes:     m.PromoCodes,
		Checks:         m.Checks,
		Withdrawals:    m.Withdrawals,
		Settings:       m.Settings,
		BalanceHistory: m.BalanceHistory,
		TaskRewards:    m.TaskRewards,
		Channels:       m.Channels,
		CustomTasks:    m.CustomTasks,
		EventBus:       m.Events,
	})

	m.Factory.On("Create").Return(m.UoW)
	m.UoW.On("Begin", mock.Anything).Return(nil)
	m.UoW.On("Rollback").Return(nil)
	m.Events.On("Publish", mock.Anything).Return()

	return m
}

// expectCommit expects the transaction to be committed
func (m *testMocks) expectCommit() {
	m.UoW.On("Commit").Return(nil)
}

// expectBalanceChange expects an AdjustBalance call followed by its history row
func (m *testMocks) expectBalanceChange(userID, delta, newBalance int64, txType models.TransactionType) {
	m.Accounts.On("AdjustBalance", mock.Anything, userID, delta).Return(newBalance, nil).Once()
	m.BalanceHistory.On("Record", mock.Anything, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == userID &&
			h.ChangeAmount == delta &&
			h.BalanceAfter == newBalance &&
			h.BalanceBefore == newBalance-delta &&
			h.TransactionType == txType
	})).Return(nil).Once()
}

// publishedEvents returns the events handed to the transactional bus
func (m *testMocks) publishedEvents() []any {
	var published []any
	for _, call := range m.Events.Calls {
		if call.Method == "Publish" {
			published = append(published, call.Arguments.Get(0))
		}
	}
	return published
}

func (m *testMocks) assertExpectations(t *testing.T) {
	m.Factory.AssertExpectations(t)
	m.UoW.AssertExpectations(t)
	m.Accounts.AssertExpectations(t)
	m.PromoCodes.AssertExpectations(t)
	m.Checks.AssertExpectations(t)
	m.Withdrawals.AssertExpectations(t)
	m.Settings.AssertExpectations(t)
	m.BalanceHistory.AssertExpectations(t)
	m.TaskRewards.AssertExpectations(t)
	m.Channels.AssertExpectations(t)
	m.CustomTasks.AssertExpectations(t)
	m.Oracle.AssertExpectations(t)
	m.Membership.AssertExpectations(t)
	m.Notifier.AssertExpectations(t)
}

func newTestAccount(userID, balance int64) *models.Account {
	return &models.Account{
		UserID:   userID,
		Username: "tester",
		Balance:  balance,
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
