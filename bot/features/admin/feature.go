package admin

import (
	"starsbot/bot/common"
	"starsbot/dialog"
	"starsbot/service"
)

// Callback data of the admin panel
const (
	CallbackStats    = "admin_stats"
	CallbackCancel   = "admin_cancel"
	PrefixUsers      = "admin_users_"
	PrefixFreeze     = "freeze_"
	PrefixUnfreeze   = "unfreeze_"
	PrefixReset      = "reset_"
	PrefixDialog     = "admin_"
	callbackNoop     = "noop"
	usersFirstPage   = PrefixUsers + "1"
	dialogButtonCols = 2
)

// Feature is the admin panel
type Feature struct {
	sender  common.Sender
	admin   service.AdminService
	ledger  service.LedgerService
	stats   service.StatsService
	dialogs *dialog.Machine
	adminID int64
}

func New(sender common.Sender, admin service.AdminService, ledger service.LedgerService, stats service.StatsService, dialogs *dialog.Machine, adminID int64) *Feature {
	return &Feature{
		sender:  sender,
		admin:   admin,
		ledger:  ledger,
		stats:   stats,
		dialogs: dialogs,
		adminID: adminID,
	}
}

// IsAdmin reports whether userID may use the panel
func (f *Feature) IsAdmin(userID int64) bool {
	return userID == f.adminID
}
