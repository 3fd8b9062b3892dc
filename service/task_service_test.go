package service

import (
	"context"
	"errors"
	"testing"

	"starsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sponsorTasks = []models.SponsorTask{
	{Signature: "sig-a", URL: "https://t.me/a", Title: "Channel A", Reward: 1},
	{Signature: "sig-b", URL: "https://t.me/b", Title: "Channel B", Reward: 2},
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("returns oracle tasks", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.Oracle.On("ListTasks", ctx, testUserID, TaskListLimit).Return(sponsorTasks, nil)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		tasks, err := svc.ListTasks(ctx, testUserID)

		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("oracle failure yields no tasks", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.Oracle.On("ListTasks", ctx, testUserID, TaskListLimit).Return(nil, errors.New("bad gateway"))

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		tasks, err := svc.ListTasks(ctx, testUserID)

		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("frozen account", func(t *testing.T) {
		m := newTestMocks()
		frozen := newTestAccount(testUserID, 0)
		frozen.Frozen = true
		m.Accounts.On("GetByID", ctx, testUserID).Return(frozen, nil)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		_, err := svc.ListTasks(ctx, testUserID)

		assert.ErrorIs(t, err, ErrAccountFrozen)
		m.Oracle.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskService_CheckTask(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete task opens no transaction", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.Oracle.On("CheckTaskStatus", ctx, "sig-a").Return(models.TaskStatusWaiting, nil)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		result, err := svc.CheckTask(ctx, testUserID, "sig-a")

		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusWaiting, result.Status)
		assert.False(t, result.Rewarded)
		m.Accounts.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("status error reads as unknown", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.Oracle.On("CheckTaskStatus", ctx, "sig-a").Return(models.TaskStatus(""), errors.New("timeout"))

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		result, err := svc.CheckTask(ctx, testUserID, "sig-a")

		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusUnknown, result.Status)
	})

	t.Run("completed task credits reward and confirms referral", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		account := newTestAccount(testUserID, 0)
		account.PendingReferrer = int64Ptr(testReferrerID)
		m.Accounts.On("GetByID", ctx, testUserID).Return(account, nil)
		m.Oracle.On("CheckTaskStatus", ctx, "sig-b").Return(models.TaskStatusComplete, nil)
		m.Oracle.On("ListTasks", ctx, testUserID, TaskListLimit).Return(sponsorTasks, nil)
		m.Oracle.On("CompletedTaskCount", ctx, testUserID).Return(int64(0), nil)
		m.Accounts.On("GetForUpdate", ctx, testUserID).Return(account, nil)
		m.TaskRewards.On("Record", ctx, testUserID, "sig-b", int64(2)).Return(true, nil)
		m.expectBalanceChange(testUserID, 2, 2, models.TransactionTypeTaskReward)
		m.Accounts.On("GetForUpdate", ctx, testReferrerID).Return(newTestAccount(testReferrerID, 0), nil)
		m.Settings.On("Get", ctx).Return(models.DefaultSettings(), nil)
		m.Accounts.On("ConfirmReferral", ctx, testReferrerID, testUserID).Return(nil)
		m.expectBalanceChange(testReferrerID, 1, 1, models.TransactionTypeReferralReward)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		result, err := svc.CheckTask(ctx, testUserID, "sig-b")

		require.NoError(t, err)
		assert.True(t, result.Rewarded)
		assert.True(t, result.ReferralConfirmed)
		assert.Equal(t, int64(2), result.NewBalance)
		m.assertExpectations(t)
	})

	t.Run("count failure skips referral confirmation", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		account := newTestAccount(testUserID, 0)
		account.PendingReferrer = int64Ptr(testReferrerID)
		m.Accounts.On("GetByID", ctx, testUserID).Return(account, nil)
		m.Oracle.On("CheckTaskStatus", ctx, "sig-a").Return(models.TaskStatusComplete, nil)
		m.Oracle.On("ListTasks", ctx, testUserID, TaskListLimit).Return(sponsorTasks, nil)
		m.Oracle.On("CompletedTaskCount", ctx, testUserID).Return(int64(0), errors.New("timeout"))
		m.Accounts.On("GetForUpdate", ctx, testUserID).Return(account, nil)
		m.TaskRewards.On("Record", ctx, testUserID, "sig-a", int64(1)).Return(true, nil)
		m.expectBalanceChange(testUserID, 1, 1, models.TransactionTypeTaskReward)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		result, err := svc.CheckTask(ctx, testUserID, "sig-a")

		require.NoError(t, err)
		assert.True(t, result.Rewarded)
		assert.False(t, result.ReferralConfirmed)
		m.Accounts.AssertNotCalled(t, "ConfirmReferral", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second check is rejected", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 1), nil)
		m.Oracle.On("CheckTaskStatus", ctx, "sig-a").Return(models.TaskStatusComplete, nil)
		m.Oracle.On("ListTasks", ctx, testUserID, TaskListLimit).Return(sponsorTasks, nil)
		m.Oracle.On("CompletedTaskCount", ctx, testUserID).Return(int64(1), nil)
		m.Accounts.On("GetForUpdate", ctx, testUserID).Return(newTestAccount(testUserID, 1), nil)
		m.TaskRewards.On("Record", ctx, testUserID, "sig-a", int64(1)).Return(false, nil)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		_, err := svc.CheckTask(ctx, testUserID, "sig-a")

		assert.ErrorIs(t, err, ErrTaskAlreadyRewarded)
		m.Accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
		m.UoW.AssertNotCalled(t, "Commit")
	})

	t.Run("task missing from the list", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.Oracle.On("CheckTaskStatus", ctx, "sig-z").Return(models.TaskStatusComplete, nil)
		m.Oracle.On("ListTasks", ctx, testUserID, TaskListLimit).Return(sponsorTasks, nil)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		_, err := svc.CheckTask(ctx, testUserID, "sig-z")

		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_CheckCustomTask(t *testing.T) {
	ctx := context.Background()
	task := &models.CustomTask{ID: 4, ChannelID: "@sponsor", Link: "https://t.me/sponsor", Reward: 3}

	t.Run("member is rewarded", func(t *testing.T) {
		m := newTestMocks()
		m.expectCommit()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.CustomTasks.On("GetByID", ctx, int64(4)).Return(task, nil)
		m.Membership.On("IsMember", ctx, "@sponsor", testUserID).Return(true, nil)
		m.Accounts.On("GetForUpdate", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.TaskRewards.On("Record", ctx, testUserID, "custom:4", int64(3)).Return(true, nil)
		m.expectBalanceChange(testUserID, 3, 3, models.TransactionTypeTaskReward)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		result, err := svc.CheckCustomTask(ctx, testUserID, 4)

		require.NoError(t, err)
		assert.True(t, result.Rewarded)
		assert.Equal(t, int64(3), result.NewBalance)
		m.assertExpectations(t)
	})

	t.Run("non member is incomplete", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.CustomTasks.On("GetByID", ctx, int64(4)).Return(task, nil)
		m.Membership.On("IsMember", ctx, "@sponsor", testUserID).Return(false, nil)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		result, err := svc.CheckCustomTask(ctx, testUserID, 4)

		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusIncomplete, result.Status)
		m.TaskRewards.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("membership lookup failure is unknown", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.CustomTasks.On("GetByID", ctx, int64(4)).Return(task, nil)
		m.Membership.On("IsMember", ctx, "@sponsor", testUserID).Return(false, errors.New("chat not found"))

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		result, err := svc.CheckCustomTask(ctx, testUserID, 4)

		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusUnknown, result.Status)
	})

	t.Run("deleted task", func(t *testing.T) {
		m := newTestMocks()
		m.Accounts.On("GetByID", ctx, testUserID).Return(newTestAccount(testUserID, 0), nil)
		m.CustomTasks.On("GetByID", ctx, int64(4)).Return(nil, nil)

		svc := NewTaskService(m.Factory, m.Oracle, m.Membership)
		_, err := svc.CheckCustomTask(ctx, testUserID, 4)

		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}
