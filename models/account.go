package models

import (
	"strconv"
	"time"
)

// Account represents a Telegram user taking part in the rewards program
type Account struct {
	UserID          int64     `db:"user_id"`
	Username        string    `db:"username"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	Balance         int64     `db:"balance"`
	ReferrerID      *int64    `db:"referrer_id"`
	PendingReferrer *int64    `db:"pending_referrer"`
	Frozen          bool      `db:"frozen"`
	Referrals       []int64   `db:"-"` // Confirmed referred accounts, oldest first
	UsedPromoCodes  []string  `db:"-"` // Read model only, never consulted for idempotence
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ReferralCount returns the number of confirmed referrals
func (a *Account) ReferralCount() int64 {
	return int64(len(a.Referrals))
}

// HasPendingReferrer reports whether a candidate referrer awaits confirmation
func (a *Account) HasPendingReferrer() bool {
	return a.PendingReferrer != nil
}

// DisplayName returns the best human readable name for the account
func (a *Account) DisplayName() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	if a.FirstName != "" {
		if a.LastName != "" {
			return a.FirstName + " " + a.LastName
		}
		return a.FirstName
	}
	return "id" + strconv.FormatInt(a.UserID, 10)
}

// UserIdentity is the transport supplied profile of the user behind an update
type UserIdentity struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
}

// Profile is the account view shown to the user
type Profile struct {
	Account             *Account
	CompletedTasks      int64
	ApprovedWithdrawals int64
}

// Eligibility holds the counts compared against the withdrawal thresholds
type Eligibility struct {
	Referrals         int64
	RequiredReferrals int64
	CompletedTasks    int64
	RequiredTasks     int64
}

// Eligible reports whether both thresholds are met
func (e Eligibility) Eligible() bool {
	return e.Referrals >= e.RequiredReferrals && e.CompletedTasks >= e.RequiredTasks
}
