package service

import (
	"context"

	"starsbot/models"

	"github.com/stretchr/testify/mock"
)

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetOrCreateAccount(ctx context.Context, identity models.UserIdentity, referrerID *int64) (*models.Account, error) {
	args := m.Called(ctx, identity, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockLedgerService) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockLedgerService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, userID int64, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, userID, amount, txType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, userID int64, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, userID, amount, txType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) ConfirmReferral(ctx context.Context, referredID int64, completedTasks int64) (bool, error) {
	args := m.Called(ctx, referredID, completedTasks)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) Freeze(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLedgerService) Unfreeze(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLedgerService) Reset(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLedgerService) CheckEligibility(ctx context.Context, userID int64) (*models.Eligibility, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Eligibility), args.Error(1)
}

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) GetSettings(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockAdminService) UpdateSetting(ctx context.Context, key models.SettingKey, value int64) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockAdminService) CreatePromoCode(ctx context.Context, code string, reward, limit int64) (*models.PromoCode, error) {
	args := m.Called(ctx, code, reward, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PromoCode), args.Error(1)
}

func (m *MockAdminService) DeletePromoCode(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockAdminService) ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PromoCode), args.Error(1)
}

func (m *MockAdminService) CreateCheck(ctx context.Context, amount, limit int64) (*models.Check, error) {
	args := m.Called(ctx, amount, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Check), args.Error(1)
}

func (m *MockAdminService) DeleteCheck(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockAdminService) ListChecks(ctx context.Context) ([]*models.Check, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Check), args.Error(1)
}

func (m *MockAdminService) AddChannel(ctx context.Context, channelID, link string) (*models.Channel, error) {
	args := m.Called(ctx, channelID, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockAdminService) DeleteChannel(ctx context.Context, number int) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *MockAdminService) ListChannels(ctx context.Context) ([]*models.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *MockAdminService) AddCustomTask(ctx context.Context, channelID, link string, reward int64) (*models.CustomTask, error) {
	args := m.Called(ctx, channelID, link, reward)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomTask), args.Error(1)
}

func (m *MockAdminService) DeleteCustomTask(ctx context.Context, number int) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *MockAdminService) ListCustomTasks(ctx context.Context) ([]*models.CustomTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CustomTask), args.Error(1)
}

func (m *MockAdminService) ListAccounts(ctx context.Context, page int) (*models.AccountPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountPage), args.Error(1)
}

// MockRedemptionService is a mock implementation of RedemptionService
type MockRedemptionService struct {
	mock.Mock
}

func (m *MockRedemptionService) RedeemPromo(ctx context.Context, userID int64, code string) (*models.RedemptionResult, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RedemptionResult), args.Error(1)
}

func (m *MockRedemptionService) RedeemCheck(ctx context.Context, userID int64, code string) (*models.RedemptionResult, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RedemptionResult), args.Error(1)
}

func (m *MockRedemptionService) Redeem(ctx context.Context, userID int64, text string) (*models.RedemptionResult, error) {
	args := m.Called(ctx, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RedemptionResult), args.Error(1)
}

func (m *MockRedemptionService) ResolveStartParameter(ctx context.Context, param string) (*models.StartParameter, error) {
	args := m.Called(ctx, param)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StartParameter), args.Error(1)
}

// MockSubscriptionService is a mock implementation of SubscriptionService
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) CheckAccess(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionService) MissingChannels(ctx context.Context, userID int64) ([]*models.Channel, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

// MockWithdrawalService is a mock implementation of WithdrawalService
type MockWithdrawalService struct {
	mock.Mock
}

func (m *MockWithdrawalService) Request(ctx context.Context, userID int64, amount int64) (*models.Withdrawal, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalService) Approve(ctx context.Context, id int64) (*models.WithdrawalResolution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalResolution), args.Error(1)
}

func (m *MockWithdrawalService) Deny(ctx context.Context, id int64) (*models.WithdrawalResolution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalResolution), args.Error(1)
}
