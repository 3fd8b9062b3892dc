package common

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Respond edits the message behind a callback, or sends a new message for
// plain text updates
func Respond(s Sender, u *Update, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if u.IsCallback() && u.MessageID != 0 {
		edit := tgbotapi.NewEditMessageText(u.ChatID, u.MessageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.DisableWebPagePreview = true
		edit.ReplyMarkup = markup
		_, err := s.Send(edit)
		if err == nil || isNotModified(err) {
			return
		}
		log.WithFields(log.Fields{
			"chatID": u.ChatID,
			"error":  err,
		}).Debug("Edit failed, sending a new message")
	}
	Send(s, u.ChatID, text, markup)
}

// Send posts a new HTML message and returns its id, or 0 on failure
func Send(s Sender, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := s.Send(msg)
	if err != nil {
		log.WithFields(log.Fields{
			"chatID": chatID,
			"error":  err,
		}).Error("Failed to send message")
		return 0
	}
	return sent.MessageID
}

// AnswerCallback acknowledges a button press, optionally with a toast or alert
func AnswerCallback(s Sender, u *Update, text string, alert bool) {
	if !u.IsCallback() {
		if text != "" {
			Send(s, u.ChatID, text, nil)
		}
		return
	}
	callback := tgbotapi.NewCallback(u.CallbackID, text)
	callback.ShowAlert = alert
	if _, err := s.Request(callback); err != nil {
		log.WithFields(log.Fields{
			"userID": u.Identity.UserID,
			"error":  err,
		}).Debug("Failed to answer callback")
	}
}

// RespondWithError reports a failed action to the user
func RespondWithError(s Sender, u *Update, err error) {
	message := ErrorMessage(err)
	if u.IsCallback() {
		AnswerCallback(s, u, message, true)
		return
	}
	Send(s, u.ChatID, message, nil)
}

func isNotModified(err error) bool {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return strings.Contains(tgErr.Message, "message is not modified")
	}
	return strings.Contains(err.Error(), "message is not modified")
}
