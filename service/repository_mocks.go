package service

import (
	"context"
	"time"

	"starsbot/events"
	"starsbot/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, identity models.UserIdentity, pendingReferrer *int64) (*models.Account, bool, error) {
	args := m.Called(ctx, identity, pendingReferrer)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SetFrozen(ctx context.Context, userID int64, frozen bool) error {
	args := m.Called(ctx, userID, frozen)
	return args.Error(0)
}

func (m *MockAccountRepository) Reset(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAccountRepository) ConfirmReferral(ctx context.Context, referrerID, referredID int64) error {
	args := m.Called(ctx, referrerID, referredID)
	return args.Error(0)
}

func (m *MockAccountRepository) AddUsedPromoCode(ctx context.Context, userID int64, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) TopReferrers(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockPromoCodeRepository is a mock implementation of PromoCodeRepository
type MockPromoCodeRepository struct {
	mock.Mock
}

func (m *MockPromoCodeRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PromoCode), args.Error(1)
}

func (m *MockPromoCodeRepository) GetForUpdate(ctx context.Context, code string) (*models.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PromoCode), args.Error(1)
}

func (m *MockPromoCodeRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}

func (m *MockPromoCodeRepository) Delete(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromoCodeRepository) AddRedemption(ctx context.Context, code string, userID int64) error {
	args := m.Called(ctx, code, userID)
	return args.Error(0)
}

func (m *MockPromoCodeRepository) List(ctx context.Context) ([]*models.PromoCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PromoCode), args.Error(1)
}

// MockCheckRepository is a mock implementation of CheckRepository
type MockCheckRepository struct {
	mock.Mock
}

func (m *MockCheckRepository) GetByCode(ctx context.Context, code string) (*models.Check, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Check), args.Error(1)
}

func (m *MockCheckRepository) GetForUpdate(ctx context.Context, code string) (*models.Check, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Check), args.Error(1)
}

func (m *MockCheckRepository) Create(ctx context.Context, check *models.Check) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

func (m *MockCheckRepository) Delete(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckRepository) AddRedemption(ctx context.Context, code string, userID int64) error {
	args := m.Called(ctx, code, userID)
	return args.Error(0)
}

func (m *MockCheckRepository) List(ctx context.Context) ([]*models.Check, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Check), args.Error(1)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id int64) (*models.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) GetForUpdate(ctx context.Context, id int64) (*models.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, id int64, status models.WithdrawalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) SetMessageHandles(ctx context.Context, id int64, publicMessageID, adminMessageID *int) error {
	args := m.Called(ctx, id, publicMessageID, adminMessageID)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) CountApprovedByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWithdrawalRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWithdrawalRepository) SumApprovedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, key models.SettingKey, value int64) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockTaskRewardRepository is a mock implementation of TaskRewardRepository
type MockTaskRewardRepository struct {
	mock.Mock
}

func (m *MockTaskRewardRepository) Record(ctx context.Context, userID int64, signature string, reward int64) (bool, error) {
	args := m.Called(ctx, userID, signature, reward)
	return args.Bool(0), args.Error(1)
}

// MockChannelRepository is a mock implementation of ChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) List(ctx context.Context) ([]*models.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *MockChannelRepository) Create(ctx context.Context, channelID, link string) (*models.Channel, error) {
	args := m.Called(ctx, channelID, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockChannelRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCustomTaskRepository is a mock implementation of CustomTaskRepository
type MockCustomTaskRepository struct {
	mock.Mock
}

func (m *MockCustomTaskRepository) List(ctx context.Context) ([]*models.CustomTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CustomTask), args.Error(1)
}

func (m *MockCustomTaskRepository) GetByID(ctx context.Context, id int64) (*models.CustomTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomTask), args.Error(1)
}

func (m *MockCustomTaskRepository) Create(ctx context.Context, channelID, link string, reward int64) (*models.CustomTask, error) {
	args := m.Called(ctx, channelID, link, reward)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomTask), args.Error(1)
}

func (m *MockCustomTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVerificationOracle is a mock implementation of VerificationOracle
type MockVerificationOracle struct {
	mock.Mock
}

func (m *MockVerificationOracle) CheckSubscription(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationOracle) ListTasks(ctx context.Context, userID int64, limit int) ([]models.SponsorTask, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SponsorTask), args.Error(1)
}

func (m *MockVerificationOracle) CheckTaskStatus(ctx context.Context, signature string) (models.TaskStatus, error) {
	args := m.Called(ctx, signature)
	return args.Get(0).(models.TaskStatus), args.Error(1)
}

func (m *MockVerificationOracle) CompletedTaskCount(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMembershipChecker is a mock implementation of MembershipChecker
type MockMembershipChecker struct {
	mock.Mock
}

func (m *MockMembershipChecker) IsMember(ctx context.Context, chatID string, userID int64) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

// MockWithdrawalNotifier is a mock implementation of WithdrawalNotifier
type MockWithdrawalNotifier struct {
	mock.Mock
}

func (m *MockWithdrawalNotifier) PostRequest(ctx context.Context, withdrawal *models.Withdrawal, account *models.Account) (int, int, error) {
	args := m.Called(ctx, withdrawal, account)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockWithdrawalNotifier) PublishResolution(ctx context.Context, resolution *models.WithdrawalResolution) error {
	args := m.Called(ctx, resolution)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo        AccountRepository
	promoCodeRepo      PromoCodeRepository
	checkRepo          CheckRepository
	withdrawalRepo     WithdrawalRepository
	settingsRepo       SettingsRepository
	balanceHistoryRepo BalanceHistoryRepository
	taskRewardRepo     TaskRewardRepository
	channelRepo        ChannelRepository
	customTaskRepo     CustomTaskRepository
	eventBus           EventPublisher
}

// MockRepositories bundles the repositories a MockUnitOfWork hands out
type MockRepositories struct {
	Accounts       AccountRepository
	PromoCodes     PromoCodeRepository
	Checks         CheckRepository
	Withdrawals    WithdrawalRepository
	Settings       SettingsRepository
	BalanceHistory BalanceHistoryRepository
	TaskRewards    TaskRewardRepository
	Channels       ChannelRepository
	CustomTasks    CustomTaskRepository
	EventBus       EventPublisher
}

// SetRepositories installs the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(repos MockRepositories) {
	m.accountRepo = repos.Accounts
	m.promoCodeRepo = repos.PromoCodes
	m.checkRepo = repos.Checks
	m.withdrawalRepo = repos.Withdrawals
	m.settingsRepo = repos.Settings
	m.balanceHistoryRepo = repos.BalanceHistory
	m.taskRewardRepo = repos.TaskRewards
	m.channelRepo = repos.Channels
	m.customTaskRepo = repos.CustomTasks
	m.eventBus = repos.EventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) PromoCodeRepository() PromoCodeRepository {
	return m.promoCodeRepo
}

func (m *MockUnitOfWork) CheckRepository() CheckRepository {
	return m.checkRepo
}

func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository {
	return m.withdrawalRepo
}

func (m *MockUnitOfWork) SettingsRepository() SettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) TaskRewardRepository() TaskRewardRepository {
	return m.taskRewardRepo
}

func (m *MockUnitOfWork) ChannelRepository() ChannelRepository {
	return m.channelRepo
}

func (m *MockUnitOfWork) CustomTaskRepository() CustomTaskRepository {
	return m.customTaskRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}
