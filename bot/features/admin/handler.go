package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"starsbot/bot/common"
	"starsbot/dialog"
	"starsbot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

type dialogButton struct {
	label string
	data  string
	step  dialog.Step
}

var dialogButtons = []dialogButton{
	{label: "➕ Add task", data: "admin_add_task", step: dialog.StepAddTaskChannel},
	{label: "➖ Delete task", data: "admin_delete_task", step: dialog.StepDeleteTask},
	{label: "📢 Add channel", data: "admin_add_channel", step: dialog.StepAddChannelID},
	{label: "🗑 Delete channel", data: "admin_delete_channel", step: dialog.StepDeleteChannel},
	{label: "🎫 Create promo", data: "admin_add_promo", step: dialog.StepAddPromoCode},
	{label: "❌ Delete promo", data: "admin_delete_promo", step: dialog.StepDeletePromo},
	{label: "👥 Min. referrals", data: "admin_set_min_refs", step: dialog.StepSetMinReferrals},
	{label: "🎯 Min. tasks", data: "admin_set_min_tasks", step: dialog.StepSetMinTasks},
	{label: "⭐ Referral reward", data: "admin_set_ref_reward", step: dialog.StepSetReferralReward},
	{label: "❄️ Freeze", data: "admin_freeze", step: dialog.StepFreezeUser},
	{label: "🔥 Unfreeze", data: "admin_unfreeze", step: dialog.StepUnfreezeUser},
	{label: "🔄 Reset", data: "admin_reset", step: dialog.StepResetUser},
	{label: "🧾 Create check", data: "admin_add_check", step: dialog.StepAddCheckAmount},
	{label: "🗑 Delete check", data: "admin_delete_check", step: dialog.StepDeleteCheck},
}

// HandlePanel shows the admin panel
func (f *Feature) HandlePanel(ctx context.Context, u *common.Update) {
	if !f.authorize(u) {
		return
	}
	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, "🔧 <b>Admin panel</b>", panelKeyboard())
}

func panelKeyboard() *tgbotapi.InlineKeyboardMarkup {
	buttons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("📊 Statistics", CallbackStats),
		tgbotapi.NewInlineKeyboardButtonData("👥 Users", usersFirstPage),
	}
	for _, b := range dialogButtons {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.label, b.data))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(common.GridRows(buttons, dialogButtonCols)...)
	return &markup
}

func backToPanel(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", common.CallbackAdminBack),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func cancelKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🚫 Cancel", CallbackCancel),
	))
	return &markup
}

func (f *Feature) HandleStats(ctx context.Context, u *common.Update) {
	if !f.authorize(u) {
		return
	}
	stats, err := f.stats.GetAdminStats(ctx)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}
	settings, err := f.admin.GetSettings(ctx)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, FormatStats(stats, settings), backToPanel())
}

// FormatStats renders the statistics screen
func FormatStats(stats *models.AdminStats, settings *models.Settings) string {
	return fmt.Sprintf("📊 <b>Statistics</b>\n\n"+
		"👥 New users\n"+
		"• Day: %d\n• Week: %d\n• Month: %d\n• Total: %d\n\n"+
		"💫 Stars withdrawn\n"+
		"• Day: %s\n• Week: %s\n• Month: %s\n• Total: %s\n\n"+
		"⏳ Pending requests: %d\n\n"+
		"⚙️ Settings\n"+
		"• Min. referrals: %d\n• Min. tasks: %d\n• Referral reward: %d ⭐️",
		stats.NewAccounts.Day, stats.NewAccounts.Week, stats.NewAccounts.Month, stats.NewAccounts.Total,
		common.FormatStars(stats.WithdrawnStars.Day), common.FormatStars(stats.WithdrawnStars.Week),
		common.FormatStars(stats.WithdrawnStars.Month), common.FormatStars(stats.WithdrawnStars.Total),
		stats.PendingCount,
		settings.MinReferrals, settings.MinTasks, settings.ReferralReward)
}

// HandleUsers shows one account per page with moderation buttons
func (f *Feature) HandleUsers(ctx context.Context, u *common.Update) {
	if !f.authorize(u) {
		return
	}
	page, ok := common.ParseSuffixInt(u.Data, PrefixUsers)
	if !ok {
		page = 1
	}
	f.showUsers(ctx, u, int(page))
}

func (f *Feature) showUsers(ctx context.Context, u *common.Update, page int) {
	result, err := f.admin.ListAccounts(ctx, page)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}
	common.AnswerCallback(f.sender, u, "", false)

	if len(result.Accounts) == 0 {
		common.Respond(f.sender, u, "👥 No users yet", backToPanel())
		return
	}

	account := result.Accounts[0]
	status := "✅ Active"
	if account.Frozen {
		status = "❄️ Frozen"
	}
	text := fmt.Sprintf("👤 <b>User %d of %d</b>\n\n"+
		"🪪 %s\n🆔 <code>%d</code>\n💫 Balance: %s ⭐️\n👥 Referrals: %d\n📅 Joined: %s\n📊 Status: %s",
		result.Page, result.Total,
		common.DisplayName(account), account.UserID,
		common.FormatStars(account.Balance), account.ReferralCount(),
		account.CreatedAt.Format("2006-01-02 15:04"), status)

	var nav []tgbotapi.InlineKeyboardButton
	if result.Page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️", PrefixUsers+strconv.Itoa(result.Page-1)))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", result.Page, result.Pages), callbackNoop))
	if result.Page < result.Pages {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("▶️", PrefixUsers+strconv.Itoa(result.Page+1)))
	}

	userID := strconv.FormatInt(account.UserID, 10)
	suffix := userID + "_" + strconv.Itoa(result.Page)
	actions := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❄️ Freeze", PrefixFreeze+suffix),
		tgbotapi.NewInlineKeyboardButtonData("🔥 Unfreeze", PrefixUnfreeze+suffix),
		tgbotapi.NewInlineKeyboardButtonData("🔄 Reset", PrefixReset+suffix),
	)

	common.Respond(f.sender, u, text, backToPanel(nav, actions))
}

// HandleAccountAction freezes, unfreezes or resets the account in the
// callback data ("<prefix><userID>_<page>") and redraws the page
func (f *Feature) HandleAccountAction(ctx context.Context, u *common.Update) {
	if !f.authorize(u) {
		return
	}

	var (
		prefix string
		apply  func(context.Context, int64) error
		done   string
	)
	switch {
	case strings.HasPrefix(u.Data, PrefixFreeze):
		prefix, apply, done = PrefixFreeze, f.ledger.Freeze, "❄️ Account frozen"
	case strings.HasPrefix(u.Data, PrefixUnfreeze):
		prefix, apply, done = PrefixUnfreeze, f.ledger.Unfreeze, "🔥 Account unfrozen"
	case strings.HasPrefix(u.Data, PrefixReset):
		prefix, apply, done = PrefixReset, f.ledger.Reset, "🔄 Account reset"
	default:
		return
	}

	parts := strings.SplitN(strings.TrimPrefix(u.Data, prefix), "_", 2)
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		common.AnswerCallback(f.sender, u, "", false)
		return
	}
	page := 1
	if len(parts) == 2 {
		if p, err := strconv.Atoi(parts[1]); err == nil {
			page = p
		}
	}

	if err := apply(ctx, userID); err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	log.WithFields(log.Fields{
		"adminID": u.Identity.UserID,
		"userID":  userID,
		"action":  strings.TrimSuffix(prefix, "_"),
	}).Info("Admin account action")

	common.AnswerCallback(f.sender, u, done, false)
	f.showUsers(ctx, u, page)
}

// HandleDialogStart opens the dialog bound to an admin panel button
func (f *Feature) HandleDialogStart(ctx context.Context, u *common.Update) bool {
	var button *dialogButton
	for i := range dialogButtons {
		if dialogButtons[i].data == u.Data {
			button = &dialogButtons[i]
			break
		}
	}
	if button == nil {
		return false
	}
	if !f.authorize(u) {
		return true
	}

	prompt, err := f.dialogs.Start(ctx, u.Identity.UserID, button.step)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return true
	}

	listing, err := f.listingFor(ctx, button.step)
	if err != nil {
		log.WithError(err).Warn("Failed to load listing for admin dialog")
	}
	if listing != "" {
		prompt = listing + "\n\n" + prompt
	}

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, prompt, cancelKeyboard())
	return true
}

// listingFor shows what a delete step can choose from
func (f *Feature) listingFor(ctx context.Context, step dialog.Step) (string, error) {
	var sb strings.Builder
	switch step {
	case dialog.StepDeleteChannel:
		channels, err := f.admin.ListChannels(ctx)
		if err != nil {
			return "", err
		}
		if len(channels) == 0 {
			return "📢 No required channels", nil
		}
		sb.WriteString("📢 <b>Required channels</b>\n")
		for i, channel := range channels {
			fmt.Fprintf(&sb, "%d. %s %s\n", i+1, common.Escape(channel.ChannelID), common.Escape(channel.Link))
		}
	case dialog.StepDeleteTask:
		tasks, err := f.admin.ListCustomTasks(ctx)
		if err != nil {
			return "", err
		}
		if len(tasks) == 0 {
			return "📝 No custom tasks", nil
		}
		sb.WriteString("📝 <b>Custom tasks</b>\n")
		for i, task := range tasks {
			fmt.Fprintf(&sb, "%d. %s (%d ⭐️)\n", i+1, common.Escape(task.ChannelID), task.Reward)
		}
	case dialog.StepDeletePromo:
		promos, err := f.admin.ListPromoCodes(ctx)
		if err != nil {
			return "", err
		}
		if len(promos) == 0 {
			return "🎫 No promo codes", nil
		}
		sb.WriteString("🎫 <b>Promo codes</b>\n")
		for _, promo := range promos {
			fmt.Fprintf(&sb, "• <code>%s</code>: %d ⭐️, %d/%d used\n",
				common.Escape(promo.Code), promo.Reward, len(promo.UsedBy), promo.Limit)
		}
	case dialog.StepDeleteCheck:
		checks, err := f.admin.ListChecks(ctx)
		if err != nil {
			return "", err
		}
		if len(checks) == 0 {
			return "🧾 No checks", nil
		}
		sb.WriteString("🧾 <b>Checks</b>\n")
		for _, check := range checks {
			fmt.Fprintf(&sb, "• <code>%s</code>: %d ⭐️, %d left\n",
				common.Escape(check.Code), check.Amount, check.Remaining())
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (f *Feature) HandleCancel(ctx context.Context, u *common.Update) {
	if !f.authorize(u) {
		return
	}
	reply, err := f.dialogs.Cancel(ctx, u.Identity.UserID)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}
	common.AnswerCallback(f.sender, u, reply, false)
	common.Respond(f.sender, u, "🔧 <b>Admin panel</b>", panelKeyboard())
}

// HandleText feeds an admin message into the active dialog. It returns false
// when no dialog is open so the message can be handled as a regular one.
func (f *Feature) HandleText(ctx context.Context, u *common.Update) bool {
	if !f.IsAdmin(u.Identity.UserID) {
		return false
	}

	reply, handled, err := f.dialogs.Handle(ctx, u.Identity.UserID, u.Data)
	if !handled {
		if err != nil {
			log.WithError(err).Error("Failed to load admin dialog")
		}
		return false
	}
	if err != nil {
		common.Send(f.sender, u.ChatID, common.ErrorMessage(err), panelKeyboard())
		return true
	}

	markup := cancelKeyboard()
	if active, _ := f.dialogs.Active(ctx, u.Identity.UserID); !active {
		markup = panelKeyboard()
	}
	common.Send(f.sender, u.ChatID, reply, markup)
	return true
}

func (f *Feature) authorize(u *common.Update) bool {
	if f.IsAdmin(u.Identity.UserID) {
		return true
	}
	if u.IsCallback() {
		common.AnswerCallback(f.sender, u, "⛔️ Admins only", true)
	}
	return false
}
