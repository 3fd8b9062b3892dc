package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"starsbot/bot/common"
	"starsbot/bot/features/withdraw"
	"starsbot/events"
	"starsbot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Notifier mirrors withdrawals into the channels, answers membership lookups
// and tells users about events that concern them
type Notifier struct {
	sender          common.Sender
	publicChannelID int64
	adminChannelID  int64
}

// NewNotifier creates a notifier posting to the given channels
func NewNotifier(sender common.Sender, publicChannelID, adminChannelID int64) *Notifier {
	return &Notifier{
		sender:          sender,
		publicChannelID: publicChannelID,
		adminChannelID:  adminChannelID,
	}
}

// Subscribe registers the user facing event handlers
func (n *Notifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeReferralConfirmed, n.handleReferralConfirmed)
}

func (n *Notifier) handleReferralConfirmed(_ context.Context, e events.Event) {
	evt, ok := e.(events.ReferralConfirmedEvent)
	if !ok {
		return
	}
	text := fmt.Sprintf("🎉 Your friend completed a task and your invite counted!\n\n+%s ⭐️",
		common.FormatStars(evt.Reward))
	common.Send(n.sender, evt.ReferrerID, text, nil)
}

// PostRequest announces a new request in the public and admin channels
func (n *Notifier) PostRequest(_ context.Context, withdrawal *models.Withdrawal, account *models.Account) (int, int, error) {
	text := common.FormatWithdrawalPost(withdrawal, account)
	var errs []error

	publicID, err := n.send(n.publicChannelID, text, nil)
	if err != nil {
		errs = append(errs, fmt.Errorf("public channel: %w", err))
	}

	id := strconv.FormatInt(withdrawal.ID, 10)
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Approve", withdraw.PrefixApprove+id),
		tgbotapi.NewInlineKeyboardButtonData("❌ Deny", withdraw.PrefixDeny+id),
	))
	adminID, err := n.send(n.adminChannelID, text, &markup)
	if err != nil {
		errs = append(errs, fmt.Errorf("admin channel: %w", err))
	}

	return publicID, adminID, errors.Join(errs...)
}

// PublishResolution edits both channel posts and messages the user
func (n *Notifier) PublishResolution(_ context.Context, resolution *models.WithdrawalResolution) error {
	withdrawal := resolution.Withdrawal
	text := common.FormatWithdrawalPost(withdrawal, resolution.Account)
	var errs []error

	if withdrawal.PublicMessageID != nil {
		if err := n.edit(n.publicChannelID, *withdrawal.PublicMessageID, text); err != nil {
			errs = append(errs, fmt.Errorf("public channel: %w", err))
		}
	}
	if withdrawal.AdminMessageID != nil {
		if err := n.edit(n.adminChannelID, *withdrawal.AdminMessageID, text); err != nil {
			errs = append(errs, fmt.Errorf("admin channel: %w", err))
		}
	}

	var userText string
	if withdrawal.Status == models.WithdrawalStatusApproved {
		userText = fmt.Sprintf("🎉 Request #%d is done!\n\n%s ⭐️ have been sent to you.",
			withdrawal.ID, common.FormatStars(withdrawal.Amount))
	} else {
		userText = fmt.Sprintf("⚠️ Request #%d was denied.", withdrawal.ID)
		if resolution.Refunded {
			userText += fmt.Sprintf("\n\n%s ⭐️ returned to your balance.", common.FormatStars(withdrawal.Amount))
		}
	}
	if _, err := n.send(withdrawal.UserID, userText, nil); err != nil {
		errs = append(errs, fmt.Errorf("user message: %w", err))
	}

	return errors.Join(errs...)
}

// IsMember reports whether the user has joined chatID, which is either an
// @username or a numeric chat id
func (n *Notifier) IsMember(_ context.Context, chatID string, userID int64) (bool, error) {
	config := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}
	if strings.HasPrefix(chatID, "@") {
		config.SuperGroupUsername = chatID
	} else {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return false, fmt.Errorf("invalid chat id %q: %w", chatID, err)
		}
		config.ChatID = id
	}

	member, err := n.sender.GetChatMember(config)
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	case "restricted":
		return member.IsMember, nil
	default:
		return false, nil
	}
}

func (n *Notifier) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := n.sender.Send(msg)
	if err != nil {
		log.WithFields(log.Fields{
			"chatID": chatID,
			"error":  err,
		}).Warn("Failed to send notification")
		return 0, err
	}
	return sent.MessageID, nil
}

func (n *Notifier) edit(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := n.sender.Send(edit)
	return err
}
