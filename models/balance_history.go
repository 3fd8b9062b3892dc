package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeReferralReward   TransactionType = "referral_reward"
	TransactionTypeTaskReward       TransactionType = "task_reward"
	TransactionTypePromoRedeem      TransactionType = "promo_redeem"
	TransactionTypeCheckRedeem      TransactionType = "check_redeem"
	TransactionTypeSlotWin          TransactionType = "slot_win"
	TransactionTypeSlotLoss         TransactionType = "slot_loss"
	TransactionTypeWithdrawalDebit  TransactionType = "withdrawal_debit"
	TransactionTypeWithdrawalRefund TransactionType = "withdrawal_refund"
	TransactionTypeAdminReset       TransactionType = "admin_reset"
	TransactionTypeAdminCredit      TransactionType = "admin_credit"
	TransactionTypeAdminDebit       TransactionType = "admin_debit"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
