package profile

import (
	"context"
	"fmt"

	"starsbot/bot/common"
	"starsbot/models"
)

func (f *Feature) HandleProfile(ctx context.Context, u *common.Update) {
	profile, err := f.ledger.GetProfile(ctx, u.Identity.UserID)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, formatProfile(profile), common.BackKeyboard())
}

func (f *Feature) HandleReferral(ctx context.Context, u *common.Update) {
	account, err := f.ledger.GetAccount(ctx, u.Identity.UserID)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}
	settings, err := f.admin.GetSettings(ctx)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	text := fmt.Sprintf("💫 <b>Earn stars</b>\n\n"+
		"Get %s ⭐️ for every friend who joins with your link and completes a task.\n\n"+
		"🔗 Your link:\n<code>%s</code>\n\n"+
		"👥 Invited: %d",
		common.FormatStars(settings.ReferralReward),
		common.ReferralLink(f.botUsername, account.UserID),
		account.ReferralCount())

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, text, common.BackKeyboard())
}

func formatProfile(profile *models.Profile) string {
	account := profile.Account
	status := "✅ Active"
	if account.Frozen {
		status = "❄️ Frozen"
	}

	return fmt.Sprintf("👤 <b>Profile</b>\n\n"+
		"🪪 Name: %s\n"+
		"🆔 ID: <code>%d</code>\n"+
		"💫 Balance: %s ⭐️\n"+
		"👥 Referrals: %d\n"+
		"🎯 Tasks completed: %d\n"+
		"💰 Withdrawals paid: %d\n"+
		"📊 Status: %s",
		common.DisplayName(account),
		account.UserID,
		common.FormatStars(account.Balance),
		account.ReferralCount(),
		profile.CompletedTasks,
		profile.ApprovedWithdrawals,
		status)
}
