package common

import (
	"fmt"
	"html"
	"strings"

	"starsbot/models"
)

// FormatStars formats an amount with thousand separators
func FormatStars(amount int64) string {
	str := fmt.Sprintf("%d", amount)
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	n := len(str)
	var result strings.Builder
	if negative {
		result.WriteByte('-')
	}
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// Escape quotes user supplied text for HTML parse mode
func Escape(text string) string {
	return html.EscapeString(text)
}

// DisplayName returns the escaped display name of an account
func DisplayName(account *models.Account) string {
	return Escape(account.DisplayName())
}

// ReferralLink is the deep link that registers userID as referrer
func ReferralLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", botUsername, userID)
}

// WithdrawalStatusLabel is the status line shown in the channel posts
func WithdrawalStatusLabel(status models.WithdrawalStatus) string {
	switch status {
	case models.WithdrawalStatusApproved:
		return "✅ Sent"
	case models.WithdrawalStatusDenied:
		return "❌ Denied"
	default:
		return "⏳ Pending"
	}
}

// FormatWithdrawalPost renders a withdrawal request for the public and admin channels
func FormatWithdrawalPost(withdrawal *models.Withdrawal, account *models.Account) string {
	return fmt.Sprintf("📌 Request #%d\n👤 %s | ID: <code>%d</code>\n💫 Amount: %s ⭐️\n📊 Status: %s",
		withdrawal.ID,
		DisplayName(account),
		withdrawal.UserID,
		FormatStars(withdrawal.Amount),
		WithdrawalStatusLabel(withdrawal.Status))
}
