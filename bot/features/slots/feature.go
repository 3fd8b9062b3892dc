package slots

import (
	"context"
	"fmt"
	"strconv"

	"starsbot/bot/common"
	"starsbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PrefixBet is the callback prefix of a stake button
const PrefixBet = "slots_bet_"

// Feature runs the slot machine
type Feature struct {
	sender   common.Sender
	ledger   service.LedgerService
	gambling service.GamblingService
}

func New(sender common.Sender, ledger service.LedgerService, gambling service.GamblingService) *Feature {
	return &Feature{
		sender:   sender,
		ledger:   ledger,
		gambling: gambling,
	}
}

func (f *Feature) HandleMenu(ctx context.Context, u *common.Update) {
	account, err := f.ledger.GetAccount(ctx, u.Identity.UserID)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(service.SlotStakes))
	for _, stake := range service.SlotStakes {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d ⭐️", stake), PrefixBet+strconv.FormatInt(stake, 10)))
	}

	text := fmt.Sprintf("🎰 <b>Slots</b>\n\nWin and your stake is doubled, lose and it's gone.\n\n💫 Balance: %s ⭐️\n\nChoose your stake:",
		common.FormatStars(account.Balance))

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, text, common.BackKeyboardWith(common.GridRows(buttons, 3)...))
}

func (f *Feature) HandleBet(ctx context.Context, u *common.Update) {
	stake, ok := common.ParseSuffixInt(u.Data, PrefixBet)
	if !ok {
		common.AnswerCallback(f.sender, u, "", false)
		return
	}

	result, err := f.gambling.Wager(ctx, u.Identity.UserID, stake)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	var text string
	if result.Won {
		text = fmt.Sprintf("🎰 🍒🍒🍒\n\n🎉 <b>You won!</b> +%s ⭐️", common.FormatStars(result.Stake))
	} else {
		text = fmt.Sprintf("🎰 🍋🍒🔔\n\n😔 <b>You lost</b> %s ⭐️", common.FormatStars(result.Stake))
	}
	text += fmt.Sprintf("\n💫 Balance: %s ⭐️", common.FormatStars(result.NewBalance))

	again := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎰 Spin again", "slots"))

	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, text, common.BackKeyboardWith(again))
}
