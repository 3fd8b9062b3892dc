package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"starsbot/bot/common"
	"starsbot/models"
	"starsbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PrefixTop is the callback prefix of the leaderboard screens
const PrefixTop = "top_"

// Size is how many referrers the leaderboard shows
const Size = 5

var periodTitles = map[models.LeaderboardPeriod]string{
	models.LeaderboardDay:   "day",
	models.LeaderboardWeek:  "week",
	models.LeaderboardMonth: "month",
}

var periods = []models.LeaderboardPeriod{
	models.LeaderboardDay,
	models.LeaderboardWeek,
	models.LeaderboardMonth,
}

var medals = []string{"🥇", "🥈", "🥉"}

// Feature shows the referral leaderboard
type Feature struct {
	sender common.Sender
	stats  service.StatsService
}

func New(sender common.Sender, stats service.StatsService) *Feature {
	return &Feature{
		sender: sender,
		stats:  stats,
	}
}

func (f *Feature) HandleTop(ctx context.Context, u *common.Update) {
	period := models.LeaderboardPeriod(strings.TrimPrefix(u.Data, PrefixTop))
	if _, ok := periodTitles[period]; !ok {
		period = models.LeaderboardDay
	}

	entries, err := f.stats.GetLeaderboard(ctx, period, Size)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	var buttons []tgbotapi.InlineKeyboardButton
	for _, other := range periods {
		if other != period {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
				"🏆 Top of the "+periodTitles[other], PrefixTop+string(other)))
		}
	}

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, FormatLeaderboard(period, entries),
		common.BackKeyboardWith(tgbotapi.NewInlineKeyboardRow(buttons...)))
}

// FormatLeaderboard renders the leaderboard of one period
func FormatLeaderboard(period models.LeaderboardPeriod, entries []*models.LeaderboardEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 <b>Top referrers of the %s</b>\n\n", periodTitles[period])

	if len(entries) == 0 {
		sb.WriteString("Nobody has invited friends yet. Be the first!")
		return sb.String()
	}

	for _, entry := range entries {
		place := fmt.Sprintf("%d.", entry.Rank)
		if entry.Rank >= 1 && entry.Rank <= len(medals) {
			place = medals[entry.Rank-1]
		}
		name := entry.FirstName
		if entry.Username != "" {
			name = "@" + entry.Username
		}
		if name == "" {
			name = fmt.Sprintf("id%d", entry.UserID)
		}
		fmt.Fprintf(&sb, "%s %s: %d referrals\n", place, common.Escape(name), entry.Referrals)
	}
	return sb.String()
}
