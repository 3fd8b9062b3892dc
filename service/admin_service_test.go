package service

import (
	"context"
	"testing"
	"time"

	"starsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(m *testMocks) *adminService {
	return &adminService{
		uowFactory: m.Factory,
		now: func() time.Time {
			return time.Date(2024, 5, 17, 9, 30, 5, 0, time.UTC)
		},
	}
}

func TestAdminService_UpdateSetting(t *testing.T) {
	ctx := context.Background()

	t.Run("stores value", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Settings.On("Update", ctx, models.SettingReferralReward, int64(0)).Return(nil)

		svc := newTestAdminService(m)
		require.NoError(t, svc.UpdateSetting(ctx, models.SettingReferralReward, 0))
		m.assertExpectations(t)
	})

	t.Run("negative value", func(t *testing.T) {
		m := newTestMocks()
		svc := newTestAdminService(m)

		err := svc.UpdateSetting(ctx, models.SettingMinTasks, -1)

		assert.ErrorIs(t, err, ErrInvalidValue)
		m.Settings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown key", func(t *testing.T) {
		m := newTestMocks()
		svc := newTestAdminService(m)

		assert.ErrorIs(t, svc.UpdateSetting(ctx, models.SettingKey("max_bet"), 3), ErrInvalidValue)
	})
}

func TestAdminService_CreatePromoCode(t *testing.T) {
	ctx := context.Background()

	t.Run("creates code", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.PromoCodes.On("Create", ctx, mock.MatchedBy(func(p *models.PromoCode) bool {
			return p.Code == "WELCOME" && p.Reward == 5 && p.Limit == 100
		})).Return(nil)

		svc := newTestAdminService(m)
		promo, err := svc.CreatePromoCode(ctx, " WELCOME ", 5, 100)

		require.NoError(t, err)
		assert.Equal(t, "WELCOME", promo.Code)
	})

	t.Run("duplicate code", func(t *testing.T) {
		m := newTestMocks()
		m.PromoCodes.On("Create", ctx, mock.Anything).Return(ErrCodeExists)

		svc := newTestAdminService(m)
		_, err := svc.CreatePromoCode(ctx, "WELCOME", 5, 100)

		assert.ErrorIs(t, err, ErrCodeExists)
	})

	t.Run("invalid reward", func(t *testing.T) {
		m := newTestMocks()
		svc := newTestAdminService(m)

		_, err := svc.CreatePromoCode(ctx, "WELCOME", 0, 100)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestAdminService_CreateCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("generates code", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Checks.On("Create", ctx, mock.AnythingOfType("*models.Check")).Return(nil)

		svc := newTestAdminService(m)
		check, err := svc.CreateCheck(ctx, 50, 2)

		require.NoError(t, err)
		assert.Regexp(t, `^CHK-20240517093005-[A-Z0-9]{6}$`, check.Code)
		assert.Equal(t, int64(50), check.Amount)
		assert.Equal(t, int64(2), check.Limit)
	})

	t.Run("retries on collision", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Checks.On("Create", ctx, mock.Anything).Return(ErrCodeExists).Once()
		m.Checks.On("Create", ctx, mock.Anything).Return(nil).Once()

		svc := newTestAdminService(m)
		_, err := svc.CreateCheck(ctx, 50, 2)

		require.NoError(t, err)
		m.Checks.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		m := newTestMocks()
		m.Checks.On("Create", ctx, mock.Anything).Return(ErrCodeExists)

		svc := newTestAdminService(m)
		_, err := svc.CreateCheck(ctx, 50, 2)

		assert.ErrorIs(t, err, ErrCodeExists)
		m.Checks.AssertNumberOfCalls(t, "Create", checkCodeMaxRetries)
	})
}

func TestAdminService_DeletePromoCode_Unknown(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	m.PromoCodes.On("Delete", ctx, "GONE").Return(false, nil)

	svc := newTestAdminService(m)
	assert.ErrorIs(t, svc.DeletePromoCode(ctx, "GONE"), ErrCodeNotFound)
	m.UoW.AssertNotCalled(t, "Commit")
}

func TestAdminService_DeleteChannel(t *testing.T) {
	ctx := context.Background()
	channels := []*models.Channel{
		{ID: 10, ChannelID: "@a"},
		{ID: 14, ChannelID: "@b"},
	}

	t.Run("deletes by list position", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Channels.On("List", ctx).Return(channels, nil)
		m.Channels.On("Delete", ctx, int64(14)).Return(nil)

		svc := newTestAdminService(m)
		require.NoError(t, svc.DeleteChannel(ctx, 2))
		m.assertExpectations(t)
	})

	t.Run("out of range", func(t *testing.T) {
		m := newTestMocks()
		m.Channels.On("List", ctx).Return(channels, nil)

		svc := newTestAdminService(m)
		assert.ErrorIs(t, svc.DeleteChannel(ctx, 3), ErrInvalidValue)
		assert.ErrorIs(t, svc.DeleteChannel(ctx, 0), ErrInvalidValue)
		m.Channels.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAdminService_AddCustomTask(t *testing.T) {
	ctx := context.Background()

	t.Run("creates task", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		task := &models.CustomTask{ID: 1, ChannelID: "@sponsor", Link: "https://t.me/sponsor", Reward: 2}
		m.CustomTasks.On("Create", ctx, "@sponsor", "https://t.me/sponsor", int64(2)).Return(task, nil)

		svc := newTestAdminService(m)
		created, err := svc.AddCustomTask(ctx, "@sponsor", "https://t.me/sponsor", 2)

		require.NoError(t, err)
		assert.Equal(t, "custom:1", created.Signature())
	})

	t.Run("missing link", func(t *testing.T) {
		m := newTestMocks()
		svc := newTestAdminService(m)

		_, err := svc.AddCustomTask(ctx, "@sponsor", " ", 2)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestAdminService_ListAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("pages one account at a time", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Accounts.On("Count", ctx).Return(int64(3), nil)
		m.Accounts.On("List", ctx, AccountsPageSize, 1).Return([]*models.Account{newTestAccount(testReferrerID, 4)}, nil)

		svc := newTestAdminService(m)
		page, err := svc.ListAccounts(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.Pages)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Accounts, 1)
	})

	t.Run("clamps page past the end", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Accounts.On("Count", ctx).Return(int64(2), nil)
		m.Accounts.On("List", ctx, AccountsPageSize, 1).Return([]*models.Account{newTestAccount(testReferrerID, 4)}, nil)

		svc := newTestAdminService(m)
		page, err := svc.ListAccounts(ctx, 9)

		require.NoError(t, err)
		assert.Equal(t, 2, page.Page)
	})

	t.Run("empty table", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Accounts.On("Count", ctx).Return(int64(0), nil)
		m.Accounts.On("List", ctx, AccountsPageSize, 0).Return(nil, nil)

		svc := newTestAdminService(m)
		page, err := svc.ListAccounts(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, page.Pages)
		assert.Empty(t, page.Accounts)
	})
}
