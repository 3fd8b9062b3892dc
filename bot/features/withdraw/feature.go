package withdraw

import (
	"starsbot/bot/common"
	"starsbot/service"
)

// Callback prefixes of the withdrawal flow
const (
	PrefixAmount  = "withdraw_"
	PrefixApprove = "withdraw_sent_"
	PrefixDeny    = "withdraw_denied_"
)

// Feature handles withdrawal requests and their admin resolution
type Feature struct {
	sender      common.Sender
	ledger      service.LedgerService
	withdrawals service.WithdrawalService
	adminID     int64
}

func New(sender common.Sender, ledger service.LedgerService, withdrawals service.WithdrawalService, adminID int64) *Feature {
	return &Feature{
		sender:      sender,
		ledger:      ledger,
		withdrawals: withdrawals,
		adminID:     adminID,
	}
}
