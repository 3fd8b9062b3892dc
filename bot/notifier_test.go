package bot

import (
	"context"
	"errors"
	"testing"

	"starsbot/bot/features/withdraw"
	"starsbot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPublicChannel = int64(-1001)
	testAdminChannel  = int64(-1002)
	testUserID        = int64(4242)
)

func testWithdrawal() (*models.Withdrawal, *models.Account) {
	return &models.Withdrawal{
			ID:     12,
			UserID: testUserID,
			Amount: 1500,
			Status: models.WithdrawalStatusPending,
		}, &models.Account{
			UserID:   testUserID,
			Username: "alice",
		}
}

func TestNotifier_PostRequest(t *testing.T) {
	client := newFakeClient()
	notifier := NewNotifier(client, testPublicChannel, testAdminChannel)
	withdrawal, account := testWithdrawal()

	publicID, adminID, err := notifier.PostRequest(context.Background(), withdrawal, account)

	require.NoError(t, err)
	assert.NotZero(t, publicID)
	assert.NotZero(t, adminID)
	assert.NotEqual(t, publicID, adminID)

	public := client.messages(testPublicChannel)
	require.Len(t, public, 1)
	assert.Contains(t, public[0].Text, "Request #12")
	assert.Contains(t, public[0].Text, "@alice")
	assert.Contains(t, public[0].Text, "1,500")
	assert.Nil(t, public[0].ReplyMarkup)

	admin := client.messages(testAdminChannel)
	require.Len(t, admin, 1)
	markup, ok := admin[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, withdraw.PrefixApprove+"12", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, withdraw.PrefixDeny+"12", *markup.InlineKeyboard[0][1].CallbackData)
}

func TestNotifier_PostRequestPartialFailure(t *testing.T) {
	client := newFakeClient()
	client.sendErr[testPublicChannel] = errors.New("chat not found")
	notifier := NewNotifier(client, testPublicChannel, testAdminChannel)
	withdrawal, account := testWithdrawal()

	publicID, adminID, err := notifier.PostRequest(context.Background(), withdrawal, account)

	require.Error(t, err)
	assert.Zero(t, publicID)
	assert.NotZero(t, adminID)
}

func TestNotifier_PublishResolution(t *testing.T) {
	client := newFakeClient()
	notifier := NewNotifier(client, testPublicChannel, testAdminChannel)
	withdrawal, account := testWithdrawal()
	publicID, adminID := 7, 8
	withdrawal.PublicMessageID = &publicID
	withdrawal.AdminMessageID = &adminID
	withdrawal.Status = models.WithdrawalStatusDenied

	err := notifier.PublishResolution(context.Background(), &models.WithdrawalResolution{
		Withdrawal: withdrawal,
		Account:    account,
		Refunded:   true,
	})

	require.NoError(t, err)

	publicEdits := client.edits(testPublicChannel)
	require.Len(t, publicEdits, 1)
	assert.Equal(t, 7, publicEdits[0].MessageID)
	assert.Contains(t, publicEdits[0].Text, "❌ Denied")

	adminEdits := client.edits(testAdminChannel)
	require.Len(t, adminEdits, 1)
	assert.Equal(t, 8, adminEdits[0].MessageID)
	assert.Nil(t, adminEdits[0].ReplyMarkup)

	userMessages := client.messages(testUserID)
	require.Len(t, userMessages, 1)
	assert.Contains(t, userMessages[0].Text, "denied")
	assert.Contains(t, userMessages[0].Text, "returned to your balance")
}

func TestNotifier_PublishResolutionWithoutHandles(t *testing.T) {
	client := newFakeClient()
	notifier := NewNotifier(client, testPublicChannel, testAdminChannel)
	withdrawal, account := testWithdrawal()
	withdrawal.Status = models.WithdrawalStatusApproved

	err := notifier.PublishResolution(context.Background(), &models.WithdrawalResolution{
		Withdrawal: withdrawal,
		Account:    account,
	})

	require.NoError(t, err)
	assert.Empty(t, client.edits(testPublicChannel))
	userMessages := client.messages(testUserID)
	require.Len(t, userMessages, 1)
	assert.Contains(t, userMessages[0].Text, "have been sent")
}

func TestNotifier_IsMember(t *testing.T) {
	tests := []struct {
		name     string
		chatID   string
		member   tgbotapi.ChatMember
		expected bool
	}{
		{name: "member by username", chatID: "@sponsor", member: tgbotapi.ChatMember{Status: "member"}, expected: true},
		{name: "creator by id", chatID: "-100123", member: tgbotapi.ChatMember{Status: "creator"}, expected: true},
		{name: "restricted member", chatID: "@sponsor", member: tgbotapi.ChatMember{Status: "restricted", IsMember: true}, expected: true},
		{name: "left", chatID: "@sponsor", member: tgbotapi.ChatMember{Status: "left"}, expected: false},
		{name: "kicked", chatID: "@sponsor", member: tgbotapi.ChatMember{Status: "kicked"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			client.member = tt.member
			notifier := NewNotifier(client, testPublicChannel, testAdminChannel)

			member, err := notifier.IsMember(context.Background(), tt.chatID, testUserID)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, member)
			assert.Equal(t, testUserID, client.lastChat.UserID)
		})
	}
}

func TestNotifier_IsMemberResolvesChat(t *testing.T) {
	client := newFakeClient()
	client.member = tgbotapi.ChatMember{Status: "member"}
	notifier := NewNotifier(client, testPublicChannel, testAdminChannel)

	_, err := notifier.IsMember(context.Background(), "-100123", testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), client.lastChat.ChatID)

	_, err = notifier.IsMember(context.Background(), "@sponsor", testUserID)
	require.NoError(t, err)
	assert.Equal(t, "@sponsor", client.lastChat.SuperGroupUsername)

	_, err = notifier.IsMember(context.Background(), "not-a-chat", testUserID)
	assert.Error(t, err)
}
