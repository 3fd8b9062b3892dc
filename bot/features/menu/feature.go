package menu

import (
	"starsbot/bot/common"
	"starsbot/service"
)

// Feature handles /start, the subscription gate and the main menu
type Feature struct {
	sender       common.Sender
	ledger       service.LedgerService
	redemption   service.RedemptionService
	subscription service.SubscriptionService
}

func New(sender common.Sender, ledger service.LedgerService, redemption service.RedemptionService, subscription service.SubscriptionService) *Feature {
	return &Feature{
		sender:       sender,
		ledger:       ledger,
		redemption:   redemption,
		subscription: subscription,
	}
}
