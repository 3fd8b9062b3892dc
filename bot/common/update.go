package common

import (
	"strconv"
	"strings"

	"starsbot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Update is the part of an inbound Telegram update a feature needs
type Update struct {
	Identity   models.UserIdentity
	ChatID     int64
	MessageID  int    // message to edit when answering a callback
	CallbackID string // empty for plain messages
	Data       string // callback data, or message text without the command
	Command    string
}

// IsCallback reports whether the update came from an inline button
func (u *Update) IsCallback() bool {
	return u.CallbackID != ""
}

// FromMessage converts a chat message
func FromMessage(msg *tgbotapi.Message) *Update {
	update := &Update{
		Identity:  identity(msg.From),
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Data:      msg.Text,
	}
	if msg.IsCommand() {
		update.Command = msg.Command()
		update.Data = strings.TrimSpace(msg.CommandArguments())
	}
	return update
}

// FromCallback converts an inline button press
func FromCallback(query *tgbotapi.CallbackQuery) *Update {
	update := &Update{
		Identity:   identity(query.From),
		CallbackID: query.ID,
		Data:       query.Data,
	}
	if query.Message != nil {
		update.ChatID = query.Message.Chat.ID
		update.MessageID = query.Message.MessageID
	} else {
		update.ChatID = query.From.ID
	}
	return update
}

func identity(user *tgbotapi.User) models.UserIdentity {
	if user == nil {
		return models.UserIdentity{}
	}
	return models.UserIdentity{
		UserID:    user.ID,
		Username:  user.UserName,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// ParseSuffixInt parses the integer after prefix in callback data
func ParseSuffixInt(data, prefix string) (int64, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return n, err == nil
}
