package models

import (
	"time"
)

// WithdrawalStatus represents the state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusDenied   WithdrawalStatus = "denied"
)

// Withdrawal is a payout request awaiting or past an admin decision.
// The amount is debited when the request is created.
type Withdrawal struct {
	ID              int64            `db:"id"`
	UserID          int64            `db:"user_id"`
	Amount          int64            `db:"amount"`
	Status          WithdrawalStatus `db:"status"`
	AdminMessageID  *int             `db:"admin_message_id"`
	PublicMessageID *int             `db:"public_message_id"`
	CreatedAt       time.Time        `db:"created_at"`
	ResolvedAt      *time.Time       `db:"resolved_at"`
}

// IsPending reports whether the request still awaits a decision
func (w *Withdrawal) IsPending() bool {
	return w.Status == WithdrawalStatusPending
}

// WithdrawalResolution is the outcome of an admin decision
type WithdrawalResolution struct {
	Withdrawal *Withdrawal
	Account    *Account
	Refunded   bool
}
