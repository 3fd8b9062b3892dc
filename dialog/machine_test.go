package dialog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"starsbot/models"
	"starsbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAdminID = int64(1000)

type machineFixture struct {
	machine *Machine
	store   *RedisStore
	admin   *service.MockAdminService
	ledger  *service.MockLedgerService
}

func newMachineFixture(t *testing.T) *machineFixture {
	t.Helper()
	_, client := setupMockRedis(t)
	store := NewRedisStore(client, time.Minute)
	admin := &service.MockAdminService{}
	ledger := &service.MockLedgerService{}
	t.Cleanup(func() {
		admin.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	return &machineFixture{
		machine: NewMachine(store, admin, ledger, "stars_test_bot"),
		store:   store,
		admin:   admin,
		ledger:  ledger,
	}
}

func (f *machineFixture) activeStep(t *testing.T) Step {
	t.Helper()
	session, err := f.store.Load(context.Background(), testAdminID)
	require.NoError(t, err)
	if session == nil {
		return ""
	}
	return session.Step
}

func (f *machineFixture) send(t *testing.T, text string) (string, error) {
	t.Helper()
	reply, handled, err := f.machine.Handle(context.Background(), testAdminID, text)
	require.True(t, handled)
	return reply, err
}

func TestMachine_NoActiveDialog(t *testing.T) {
	f := newMachineFixture(t)

	reply, handled, err := f.machine.Handle(context.Background(), testAdminID, "hello")

	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, reply)
}

func TestMachine_StartRejectsInnerStep(t *testing.T) {
	f := newMachineFixture(t)

	_, err := f.machine.Start(context.Background(), testAdminID, StepAddPromoLimit)

	assert.Error(t, err)
	assert.Equal(t, Step(""), f.activeStep(t))
}

func TestMachine_AddPromoCode(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	f.admin.On("CreatePromoCode", mock.Anything, "SPRING", int64(5), int64(100)).
		Return(&models.PromoCode{Code: "SPRING", Reward: 5, Limit: 100}, nil).Once()

	prompt, err := f.machine.Start(ctx, testAdminID, StepAddPromoCode)
	require.NoError(t, err)
	assert.Equal(t, prompts[StepAddPromoCode], prompt)

	reply, err := f.send(t, "SPRING")
	require.NoError(t, err)
	assert.Equal(t, prompts[StepAddPromoReward], reply)

	reply, err = f.send(t, "five")
	require.NoError(t, err)
	assert.Contains(t, reply, msgNotANumber)
	assert.Equal(t, StepAddPromoReward, f.activeStep(t))

	_, err = f.send(t, "5")
	require.NoError(t, err)
	assert.Equal(t, StepAddPromoLimit, f.activeStep(t))

	reply, err = f.send(t, " 100 ")
	require.NoError(t, err)
	assert.Contains(t, reply, "SPRING")
	assert.Equal(t, Step(""), f.activeStep(t))
}

func TestMachine_AddCustomTask(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	f.admin.On("AddCustomTask", mock.Anything, "@sponsor", "https://t.me/sponsor", int64(3)).
		Return(&models.CustomTask{ID: 4, ChannelID: "@sponsor", Reward: 3}, nil).Once()

	_, err := f.machine.Start(ctx, testAdminID, StepAddTaskChannel)
	require.NoError(t, err)

	_, err = f.send(t, "@sponsor")
	require.NoError(t, err)
	_, err = f.send(t, "https://t.me/sponsor")
	require.NoError(t, err)
	reply, err := f.send(t, "3")

	require.NoError(t, err)
	assert.Contains(t, reply, "#4")
}

func TestMachine_AddCheckIncludesDeepLink(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	f.admin.On("CreateCheck", mock.Anything, int64(10), int64(2)).
		Return(&models.Check{Code: "CHK-20240517093005-ABC123", Amount: 10, Limit: 2}, nil).Once()

	_, err := f.machine.Start(ctx, testAdminID, StepAddCheckAmount)
	require.NoError(t, err)
	_, err = f.send(t, "10")
	require.NoError(t, err)
	reply, err := f.send(t, "2")

	require.NoError(t, err)
	assert.Contains(t, reply, "https://t.me/stars_test_bot?start=CHK-20240517093005-ABC123")
}

func TestMachine_Settings(t *testing.T) {
	tests := []struct {
		step Step
		key  models.SettingKey
	}{
		{step: StepSetMinReferrals, key: models.SettingMinReferrals},
		{step: StepSetMinTasks, key: models.SettingMinTasks},
		{step: StepSetReferralReward, key: models.SettingReferralReward},
	}

	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			f := newMachineFixture(t)
			f.admin.On("UpdateSetting", mock.Anything, tt.key, int64(7)).Return(nil).Once()

			_, err := f.machine.Start(context.Background(), testAdminID, tt.step)
			require.NoError(t, err)
			reply, err := f.send(t, "7")

			require.NoError(t, err)
			assert.Contains(t, reply, string(tt.key))
		})
	}
}

func TestMachine_AccountActions(t *testing.T) {
	tests := []struct {
		step   Step
		method string
	}{
		{step: StepFreezeUser, method: "Freeze"},
		{step: StepUnfreezeUser, method: "Unfreeze"},
		{step: StepResetUser, method: "Reset"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			f := newMachineFixture(t)
			f.ledger.On(tt.method, mock.Anything, int64(555)).Return(nil).Once()

			_, err := f.machine.Start(context.Background(), testAdminID, tt.step)
			require.NoError(t, err)
			reply, err := f.send(t, "555")

			require.NoError(t, err)
			assert.Contains(t, reply, "555")
		})
	}
}

func TestMachine_ServiceErrorClosesSession(t *testing.T) {
	f := newMachineFixture(t)
	f.ledger.On("Freeze", mock.Anything, int64(404)).Return(service.ErrAccountNotFound).Once()

	_, err := f.machine.Start(context.Background(), testAdminID, StepFreezeUser)
	require.NoError(t, err)
	_, err = f.send(t, "404")

	assert.ErrorIs(t, err, service.ErrAccountNotFound)
	assert.Equal(t, Step(""), f.activeStep(t))
}

func TestMachine_DeleteByNumberAndCode(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()
	f.admin.On("DeleteChannel", mock.Anything, 2).Return(nil).Once()
	f.admin.On("DeleteCheck", mock.Anything, "CHK-1").Return(nil).Once()

	_, err := f.machine.Start(ctx, testAdminID, StepDeleteChannel)
	require.NoError(t, err)
	_, err = f.send(t, "2")
	require.NoError(t, err)

	_, err = f.machine.Start(ctx, testAdminID, StepDeleteCheck)
	require.NoError(t, err)
	reply, err := f.send(t, "CHK-1")
	require.NoError(t, err)
	assert.Contains(t, reply, "CHK-1")
}

func TestMachine_EmptyInputRetries(t *testing.T) {
	f := newMachineFixture(t)

	_, err := f.machine.Start(context.Background(), testAdminID, StepAddChannelID)
	require.NoError(t, err)
	reply, err := f.send(t, "   ")

	require.NoError(t, err)
	assert.Contains(t, reply, msgEmpty)
	assert.Equal(t, StepAddChannelID, f.activeStep(t))
}

func TestMachine_NonPositiveNumberRetriesStep(t *testing.T) {
	tests := []struct {
		name  string
		start Step
		setup []string
		step  Step
	}{
		{name: "promo reward", start: StepAddPromoCode, setup: []string{"SPRING"}, step: StepAddPromoReward},
		{name: "promo limit", start: StepAddPromoCode, setup: []string{"SPRING", "10"}, step: StepAddPromoLimit},
		{name: "check amount", start: StepAddCheckAmount, step: StepAddCheckAmount},
		{name: "check limit", start: StepAddCheckAmount, setup: []string{"5"}, step: StepAddCheckLimit},
		{name: "task reward", start: StepAddTaskChannel, setup: []string{"@news", "https://t.me/news"}, step: StepAddTaskReward},
		{name: "delete channel", start: StepDeleteChannel, step: StepDeleteChannel},
		{name: "delete task", start: StepDeleteTask, step: StepDeleteTask},
		{name: "freeze", start: StepFreezeUser, step: StepFreezeUser},
		{name: "unfreeze", start: StepUnfreezeUser, step: StepUnfreezeUser},
		{name: "reset", start: StepResetUser, step: StepResetUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMachineFixture(t)

			_, err := f.machine.Start(context.Background(), testAdminID, tt.start)
			require.NoError(t, err)
			for _, text := range tt.setup {
				_, err := f.send(t, text)
				require.NoError(t, err)
			}
			require.Equal(t, tt.step, f.activeStep(t))

			for _, text := range []string{"0", "-5"} {
				reply, err := f.send(t, text)
				require.NoError(t, err)
				assert.Contains(t, reply, msgNotPositive)
				assert.Contains(t, reply, prompts[tt.step])
				assert.Equal(t, tt.step, f.activeStep(t))
			}
		})
	}
}

func TestMachine_AddPromoCodeAfterRejectedReward(t *testing.T) {
	f := newMachineFixture(t)
	f.admin.On("CreatePromoCode", mock.Anything, "SPRING", int64(4), int64(3)).
		Return(&models.PromoCode{Code: "SPRING", Reward: 4, Limit: 3}, nil).Once()

	_, err := f.machine.Start(context.Background(), testAdminID, StepAddPromoCode)
	require.NoError(t, err)
	_, err = f.send(t, "SPRING")
	require.NoError(t, err)
	_, err = f.send(t, "-5")
	require.NoError(t, err)
	assert.Equal(t, StepAddPromoReward, f.activeStep(t))

	_, err = f.send(t, "4")
	require.NoError(t, err)
	reply, err := f.send(t, "3")

	require.NoError(t, err)
	assert.Contains(t, reply, "SPRING")
	assert.Equal(t, Step(""), f.activeStep(t))
}

func TestMachine_SettingsAcceptZeroRejectNegative(t *testing.T) {
	f := newMachineFixture(t)
	f.admin.On("UpdateSetting", mock.Anything, models.SettingMinTasks, int64(0)).Return(nil).Once()

	_, err := f.machine.Start(context.Background(), testAdminID, StepSetMinTasks)
	require.NoError(t, err)

	reply, err := f.send(t, "-1")
	require.NoError(t, err)
	assert.Contains(t, reply, msgNegative)
	assert.Equal(t, StepSetMinTasks, f.activeStep(t))

	_, err = f.send(t, "0")
	require.NoError(t, err)
	assert.Equal(t, Step(""), f.activeStep(t))
}

func TestMachine_InvalidValueFromServiceRetriesStep(t *testing.T) {
	f := newMachineFixture(t)
	f.admin.On("DeleteChannel", mock.Anything, 9).
		Return(fmt.Errorf("%w: no channel number 9", service.ErrInvalidValue)).Once()
	f.admin.On("DeleteChannel", mock.Anything, 1).Return(nil).Once()

	_, err := f.machine.Start(context.Background(), testAdminID, StepDeleteChannel)
	require.NoError(t, err)

	reply, err := f.send(t, "9")
	require.NoError(t, err)
	assert.Contains(t, reply, "no channel number 9")
	assert.Equal(t, StepDeleteChannel, f.activeStep(t))

	_, err = f.send(t, "1")
	require.NoError(t, err)
	assert.Equal(t, Step(""), f.activeStep(t))
}

func TestMachine_Cancel(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	_, err := f.machine.Start(ctx, testAdminID, StepAddCheckAmount)
	require.NoError(t, err)

	reply, err := f.machine.Cancel(ctx, testAdminID)

	require.NoError(t, err)
	assert.Equal(t, msgCancelled, reply)
	assert.Equal(t, Step(""), f.activeStep(t))
}

func TestMachine_Active(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	active, err := f.machine.Active(ctx, testAdminID)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = f.machine.Start(ctx, testAdminID, StepDeletePromo)
	require.NoError(t, err)

	active, err = f.machine.Active(ctx, testAdminID)
	require.NoError(t, err)
	assert.True(t, active)
}
