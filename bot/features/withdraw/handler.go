package withdraw

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"starsbot/bot/common"
	"starsbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) HandleMenu(ctx context.Context, u *common.Update) {
	account, err := f.ledger.GetAccount(ctx, u.Identity.UserID)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}
	eligibility, err := f.ledger.CheckEligibility(ctx, u.Identity.UserID)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(service.WithdrawalAmounts))
	for _, amount := range service.WithdrawalAmounts {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d ⭐️", amount), PrefixAmount+strconv.FormatInt(amount, 10)))
	}

	text := fmt.Sprintf("💰 <b>Withdraw</b>\n\n"+
		"💫 Balance: %s ⭐️\n\n"+
		"Requirements:\n"+
		"👥 Referrals: %d/%d\n"+
		"🎯 Tasks: %d/%d\n\n"+
		"Choose an amount:",
		common.FormatStars(account.Balance),
		eligibility.Referrals, eligibility.RequiredReferrals,
		eligibility.CompletedTasks, eligibility.RequiredTasks)

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, text, common.BackKeyboardWith(common.GridRows(buttons, 3)...))
}

func (f *Feature) HandleRequest(ctx context.Context, u *common.Update) {
	amount, ok := common.ParseSuffixInt(u.Data, PrefixAmount)
	if !ok {
		common.AnswerCallback(f.sender, u, "", false)
		return
	}

	withdrawal, err := f.withdrawals.Request(ctx, u.Identity.UserID, amount)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, fmt.Sprintf("📌 Request #%d for %s ⭐️ created!\n\nWait for the administrator to process it.",
		withdrawal.ID, common.FormatStars(withdrawal.Amount)), common.BackKeyboard())
}

// HandleResolve approves or denies a request from the admin channel. The
// channel posts and the user message are updated by the notifier.
func (f *Feature) HandleResolve(ctx context.Context, u *common.Update) {
	if u.Identity.UserID != f.adminID {
		common.AnswerCallback(f.sender, u, "⛔️ Admins only", true)
		return
	}

	approve := strings.HasPrefix(u.Data, PrefixApprove)
	prefix := PrefixDeny
	if approve {
		prefix = PrefixApprove
	}
	// Callback data from older posts carries a trailing message id
	raw := strings.TrimPrefix(u.Data, prefix)
	if i := strings.IndexByte(raw, '_'); i >= 0 {
		raw = raw[:i]
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		common.AnswerCallback(f.sender, u, "", false)
		return
	}

	logger := log.WithFields(log.Fields{
		"withdrawalID": id,
		"approve":      approve,
	})

	if approve {
		_, err = f.withdrawals.Approve(ctx, id)
	} else {
		_, err = f.withdrawals.Deny(ctx, id)
	}
	if err != nil {
		logger.WithError(err).Warn("Failed to resolve withdrawal")
		common.RespondWithError(f.sender, u, err)
		return
	}

	logger.Info("Withdrawal resolved")
	common.AnswerCallback(f.sender, u, "✅ Done", false)
}
