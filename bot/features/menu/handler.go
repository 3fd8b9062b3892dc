package menu

import (
	"context"
	"fmt"
	"strings"

	"starsbot/bot/common"
	"starsbot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const mainMenuText = "⭐️ <b>Main menu</b>\n\n" +
	"Invite friends, complete tasks and activate codes to earn stars, then withdraw them."

const instructionText = "📌 <b>How to get more referrals?</b>\n\n" +
	"• Send your link to friends in private messages\n" +
	"• Share it in your stories, your profile or your channel\n" +
	"• Leave it in comments and group chats\n" +
	"• Post it on other social networks\n\n" +
	"A referral counts once your friend has subscribed to the required channels " +
	"and completed at least one task."

// HandleStart registers the user, applies the deep link parameter and shows
// the main menu or the subscription gate
func (f *Feature) HandleStart(ctx context.Context, u *common.Update) {
	logger := log.WithFields(log.Fields{
		"userID": u.Identity.UserID,
		"param":  u.Data,
	})

	param, err := f.redemption.ResolveStartParameter(ctx, u.Data)
	if err != nil {
		logger.WithError(err).Error("Failed to resolve start parameter")
		param = &models.StartParameter{Kind: models.StartParameterNone}
	}

	var referrerID *int64
	if param.Kind == models.StartParameterReferrer {
		referrerID = &param.ReferrerID
	}

	account, err := f.ledger.GetOrCreateAccount(ctx, u.Identity, referrerID)
	if err != nil {
		logger.WithError(err).Error("Failed to get or create account")
		common.RespondWithError(f.sender, u, err)
		return
	}

	if referrerID != nil && account.PendingReferrer != nil && *account.PendingReferrer == *referrerID {
		common.Send(f.sender, u.ChatID, "👋 Welcome!\n\n"+
			"For your invite to count you need to:\n"+
			"1. Subscribe to all channels\n"+
			"2. Complete at least one task\n\n"+
			"After that the friend who invited you gets a reward!", nil)
	}

	if !f.gate(ctx, u, param.CheckCode) {
		return
	}

	if param.Kind == models.StartParameterCheck {
		f.redeemCheck(ctx, u, param.CheckCode)
	}
	f.ShowMainMenu(u)
}

// HandleCheckSubscription re-runs the gate after the user pressed "I subscribed".
// The callback may carry a check code from the /start deep link.
func (f *Feature) HandleCheckSubscription(ctx context.Context, u *common.Update) {
	checkCode := strings.TrimPrefix(strings.TrimPrefix(u.Data, common.CallbackCheckSubscription), ":")

	allowed, err := f.subscription.CheckAccess(ctx, u.Identity.UserID)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}
	if !allowed {
		common.AnswerCallback(f.sender, u, "❌ You haven't subscribed to all channels yet", true)
		return
	}

	if _, err := f.ledger.GetOrCreateAccount(ctx, u.Identity, nil); err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	common.AnswerCallback(f.sender, u, "✅ Subscription confirmed", false)
	if checkCode != "" {
		f.redeemCheck(ctx, u, checkCode)
	}
	f.ShowMainMenu(u)
}

// ShowMainMenu renders the root menu
func (f *Feature) ShowMainMenu(u *common.Update) {
	common.Respond(f.sender, u, mainMenuText, common.MainMenuKeyboard())
}

// HandleMenu is the "back" button of every screen
func (f *Feature) HandleMenu(u *common.Update) {
	common.AnswerCallback(f.sender, u, "", false)
	f.ShowMainMenu(u)
}

func (f *Feature) HandleInstruction(u *common.Update) {
	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, instructionText, common.BackKeyboard())
}

// gate shows the subscription prompt and returns false when the user may not
// use the bot yet
func (f *Feature) gate(ctx context.Context, u *common.Update, checkCode string) bool {
	allowed, err := f.subscription.CheckAccess(ctx, u.Identity.UserID)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": u.Identity.UserID,
			"error":  err,
		}).Error("Failed to check access")
		return true
	}
	if allowed {
		return true
	}

	missing, err := f.subscription.MissingChannels(ctx, u.Identity.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to list missing channels")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, channel := range missing {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Subscribe", channel.Link),
		))
	}
	callback := common.CallbackCheckSubscription
	if checkCode != "" {
		callback += ":" + checkCode
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ I subscribed", callback),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)

	common.Send(f.sender, u.ChatID, "📢 Subscribe to our channels to use the bot", &markup)
	return false
}

func (f *Feature) redeemCheck(ctx context.Context, u *common.Update, code string) {
	result, err := f.redemption.RedeemCheck(ctx, u.Identity.UserID, code)
	if err != nil {
		common.Send(f.sender, u.ChatID, common.ErrorMessage(err), nil)
		return
	}
	common.Send(f.sender, u.ChatID, fmt.Sprintf("🎉 Check activated!\n\n+%s ⭐️\n💫 Your balance: %s ⭐️",
		common.FormatStars(result.Amount), common.FormatStars(result.NewBalance)), nil)
}
