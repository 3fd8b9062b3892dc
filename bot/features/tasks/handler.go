package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"starsbot/bot/common"
	"starsbot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// item is one entry of the combined task list
type item struct {
	title       string
	description string
	url         string
	reward      int64
	checkData   string
}

// HandlePage shows the task at the 1-based page in the callback data
func (f *Feature) HandlePage(ctx context.Context, u *common.Update) {
	page, ok := common.ParseSuffixInt(u.Data, PrefixPage)
	if !ok {
		page = 1
	}
	if err := f.showPage(ctx, u, int(page)); err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}
	common.AnswerCallback(f.sender, u, "", false)
}

func (f *Feature) showPage(ctx context.Context, u *common.Update, page int) error {
	items, err := f.loadItems(ctx, u.Identity.UserID)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		common.Respond(f.sender, u, "🎯 No tasks available right now. Come back later!", common.BackKeyboard())
		return nil
	}

	page = max(1, min(page, len(items)))
	task := items[page-1]

	text := fmt.Sprintf("📝 <b>%s</b>\n💫 Reward: %s ⭐️\n\n📋 %s",
		common.Escape(task.title), common.FormatStars(task.reward), common.Escape(task.description))

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("✅ Complete task", task.url)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔍 Check", task.checkData)),
	}
	if nav := navigationRow(page, len(items)); len(nav) > 0 {
		rows = append(rows, nav)
	}

	common.Respond(f.sender, u, text, common.BackKeyboardWith(rows...))
	return nil
}

func navigationRow(page, pages int) []tgbotapi.InlineKeyboardButton {
	if pages <= 1 {
		return nil
	}
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀️", PrefixPage+strconv.Itoa(page-1)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page, pages), "noop"))
	if page < pages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("▶️", PrefixPage+strconv.Itoa(page+1)))
	}
	return row
}

// loadItems returns sponsor tasks followed by custom tasks
func (f *Feature) loadItems(ctx context.Context, userID int64) ([]item, error) {
	sponsor, err := f.tasks.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	custom, err := f.tasks.ListCustomTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]item, 0, len(sponsor)+len(custom))
	for _, task := range sponsor {
		items = append(items, item{
			title:       valueOr(task.Title, "Task"),
			description: valueOr(task.Description, "No description"),
			url:         valueOr(task.URL, "https://t.me"),
			reward:      task.Reward,
			checkData:   PrefixCheckTask + task.Signature,
		})
	}
	for _, task := range custom {
		items = append(items, item{
			title:       "Join the channel",
			description: "Subscribe to " + task.ChannelID + " and press Check.",
			url:         task.Link,
			reward:      task.Reward,
			checkData:   PrefixCheckCustom + strconv.FormatInt(task.ID, 10),
		})
	}
	return items, nil
}

func (f *Feature) HandleCheckTask(ctx context.Context, u *common.Update) {
	signature := strings.TrimPrefix(u.Data, PrefixCheckTask)
	result, err := f.tasks.CheckTask(ctx, u.Identity.UserID, signature)
	f.reportCheck(ctx, u, result, err)
}

func (f *Feature) HandleCheckCustom(ctx context.Context, u *common.Update) {
	taskID, ok := common.ParseSuffixInt(u.Data, PrefixCheckCustom)
	if !ok {
		common.AnswerCallback(f.sender, u, "", false)
		return
	}
	result, err := f.tasks.CheckCustomTask(ctx, u.Identity.UserID, taskID)
	f.reportCheck(ctx, u, result, err)
}

func (f *Feature) reportCheck(ctx context.Context, u *common.Update, result *models.TaskCheckResult, err error) {
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	if !result.Rewarded {
		common.AnswerCallback(f.sender, u, StatusMessage(result.Status), true)
		return
	}

	message := fmt.Sprintf("✅ Task completed! +%s ⭐️", common.FormatStars(result.Reward))
	common.AnswerCallback(f.sender, u, message, true)
	if err := f.showPage(ctx, u, 1); err != nil {
		log.WithError(err).Warn("Failed to refresh task list")
	}
}

// StatusMessage explains a task status that did not pay out
func StatusMessage(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusWaiting:
		return "⏳ The task is being verified. Try again in a few minutes."
	case models.TaskStatusAbort:
		return "🚫 You unsubscribed too early. The task can't be counted."
	case models.TaskStatusUnavailable:
		return "🚫 This task is no longer available."
	case models.TaskStatusUnknown:
		return "⏳ Couldn't verify the task right now. Try again later."
	default:
		return "❌ The task is not completed yet."
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
