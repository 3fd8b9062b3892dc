package profile

import (
	"starsbot/bot/common"
	"starsbot/service"
)

// Feature shows the profile and the referral link
type Feature struct {
	sender      common.Sender
	ledger      service.LedgerService
	admin       service.AdminService
	botUsername string
}

func New(sender common.Sender, ledger service.LedgerService, admin service.AdminService, botUsername string) *Feature {
	return &Feature{
		sender:      sender,
		ledger:      ledger,
		admin:       admin,
		botUsername: botUsername,
	}
}
