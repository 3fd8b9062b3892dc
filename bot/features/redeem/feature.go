package redeem

import (
	"context"
	"fmt"

	"starsbot/bot/common"
	"starsbot/service"
)

// Feature activates promo codes and checks typed as free text
type Feature struct {
	sender     common.Sender
	redemption service.RedemptionService
}

func New(sender common.Sender, redemption service.RedemptionService) *Feature {
	return &Feature{
		sender:     sender,
		redemption: redemption,
	}
}

func (f *Feature) HandlePrompt(u *common.Update) {
	common.AnswerCallback(f.sender, u, "", false)
	common.Respond(f.sender, u, "🎁 Send a promo code or a check code as a message", common.BackKeyboard())
}

// HandleText treats any plain message as a code
func (f *Feature) HandleText(ctx context.Context, u *common.Update) {
	result, err := f.redemption.Redeem(ctx, u.Identity.UserID, u.Data)
	if err != nil {
		common.RespondWithError(f.sender, u, err)
		return
	}

	common.Send(f.sender, u.ChatID, fmt.Sprintf("🎉 Code activated!\n\n+%s ⭐️\n💫 Your balance: %s ⭐️",
		common.FormatStars(result.Amount), common.FormatStars(result.NewBalance)), common.BackKeyboard())
}
