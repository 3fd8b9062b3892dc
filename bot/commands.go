package bot

import (
	"context"
	"strings"

	"starsbot/bot/common"
	"starsbot/bot/features/admin"
	"starsbot/bot/features/leaderboard"
	"starsbot/bot/features/slots"
	"starsbot/bot/features/tasks"
	"starsbot/bot/features/withdraw"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// registerCommands publishes the command list shown in the Telegram client
func (b *Bot) registerCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Open the main menu"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Cancel the current action"},
	)
	_, err := b.client.Request(commands)
	return err
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// handleMessage routes private chat messages. Plain text goes to the admin
// dialog first and is otherwise treated as a code to redeem.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return
	}
	u := common.FromMessage(msg)

	log.WithFields(log.Fields{
		"userID":  u.Identity.UserID,
		"command": u.Command,
	}).Debug("Handling message")

	switch u.Command {
	case "start":
		b.menu.HandleStart(ctx, u)
		return
	case "admin":
		b.admin.HandlePanel(ctx, u)
		return
	case "cancel":
		if b.admin.IsAdmin(u.Identity.UserID) {
			b.admin.HandleCancel(ctx, u)
			return
		}
		b.menu.ShowMainMenu(u)
		return
	case "":
	default:
		b.menu.ShowMainMenu(u)
		return
	}

	if b.admin.HandleText(ctx, u) {
		return
	}
	if strings.TrimSpace(u.Data) == "" {
		return
	}
	b.redeem.HandleText(ctx, u)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}
	u := common.FromCallback(query)

	log.WithFields(log.Fields{
		"userID": u.Identity.UserID,
		"data":   u.Data,
	}).Debug("Handling callback")

	data := u.Data
	switch data {
	case common.CallbackMenu:
		b.menu.HandleMenu(u)
	case "profile":
		b.profile.HandleProfile(ctx, u)
	case "referral":
		b.profile.HandleReferral(ctx, u)
	case "instruction":
		b.menu.HandleInstruction(u)
	case "promo":
		b.redeem.HandlePrompt(u)
	case "slots":
		b.slots.HandleMenu(ctx, u)
	case "withdraw":
		b.withdraw.HandleMenu(ctx, u)
	case admin.CallbackStats:
		b.admin.HandleStats(ctx, u)
	case admin.CallbackCancel:
		b.admin.HandleCancel(ctx, u)
	case common.CallbackAdminBack:
		b.admin.HandlePanel(ctx, u)
	default:
		b.handlePrefixedCallback(ctx, u)
	}
}

func (b *Bot) handlePrefixedCallback(ctx context.Context, u *common.Update) {
	data := u.Data
	switch {
	case strings.HasPrefix(data, common.CallbackCheckSubscription):
		b.menu.HandleCheckSubscription(ctx, u)
	case strings.HasPrefix(data, withdraw.PrefixApprove), strings.HasPrefix(data, withdraw.PrefixDeny):
		b.withdraw.HandleResolve(ctx, u)
	case strings.HasPrefix(data, withdraw.PrefixAmount):
		b.withdraw.HandleRequest(ctx, u)
	case strings.HasPrefix(data, tasks.PrefixPage):
		b.tasks.HandlePage(ctx, u)
	case strings.HasPrefix(data, tasks.PrefixCheckTask):
		b.tasks.HandleCheckTask(ctx, u)
	case strings.HasPrefix(data, tasks.PrefixCheckCustom):
		b.tasks.HandleCheckCustom(ctx, u)
	case strings.HasPrefix(data, slots.PrefixBet):
		b.slots.HandleBet(ctx, u)
	case strings.HasPrefix(data, leaderboard.PrefixTop):
		b.leaderboard.HandleTop(ctx, u)
	case strings.HasPrefix(data, admin.PrefixUsers):
		b.admin.HandleUsers(ctx, u)
	case strings.HasPrefix(data, admin.PrefixFreeze),
		strings.HasPrefix(data, admin.PrefixUnfreeze),
		strings.HasPrefix(data, admin.PrefixReset):
		b.admin.HandleAccountAction(ctx, u)
	case strings.HasPrefix(data, admin.PrefixDialog) && b.admin.HandleDialogStart(ctx, u):
	default:
		// "noop" page counters and stale buttons
		common.AnswerCallback(b.client, u, "", false)
	}
}
