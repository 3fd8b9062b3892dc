package common

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data shared between features
const (
	CallbackMenu              = "menu"
	CallbackCheckSubscription = "check_subscription"
	CallbackAdminBack         = "admin_back"
)

// MainMenuKeyboard is the root menu of the bot
func MainMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💫 Earn stars", "referral"),
			tgbotapi.NewInlineKeyboardButtonData("👤 Profile", "profile"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Withdraw", "withdraw"),
			tgbotapi.NewInlineKeyboardButtonData("🎯 Tasks", "tasks_1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 Promo code", "promo"),
			tgbotapi.NewInlineKeyboardButtonData("🎰 Slots", "slots"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📌 How to earn", "instruction"),
			tgbotapi.NewInlineKeyboardButtonData("🏆 Leaderboard", "top_day"),
		),
	)
	return &markup
}

// BackKeyboard has a single button back to the main menu
func BackKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return BackKeyboardWith()
}

// BackKeyboardWith prepends rows to a back button
func BackKeyboardWith(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", CallbackMenu),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// GridRows lays buttons out in rows of width
func GridRows(buttons []tgbotapi.InlineKeyboardButton, width int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for start := 0; start < len(buttons); start += width {
		end := min(start+width, len(buttons))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons[start:end]...))
	}
	return rows
}
