package models

import (
	"slices"
	"time"
)

// CodeKind distinguishes the two redeemable code tables
type CodeKind string

const (
	CodeKindPromo CodeKind = "promo"
	CodeKindCheck CodeKind = "check"
)

// PromoCode is an admin defined code with a fixed reward and activation limit
type PromoCode struct {
	Code      string    `db:"code"`
	Reward    int64     `db:"reward"`
	Limit     int64     `db:"activation_limit"`
	UsedBy    []int64   `db:"-"`
	CreatedAt time.Time `db:"created_at"`
}

// RedeemedBy reports whether the account already activated the code
func (p *PromoCode) RedeemedBy(userID int64) bool {
	return slices.Contains(p.UsedBy, userID)
}

// Exhausted reports whether every activation has been used
func (p *PromoCode) Exhausted() bool {
	return int64(len(p.UsedBy)) >= p.Limit
}

// Check is a generated voucher shared through a deep link
type Check struct {
	Code      string    `db:"code"`
	Amount    int64     `db:"amount"`
	Limit     int64     `db:"activation_limit"`
	UsedBy    []int64   `db:"-"`
	CreatedAt time.Time `db:"created_at"`
}

// RedeemedBy reports whether the account already activated the check
func (c *Check) RedeemedBy(userID int64) bool {
	return slices.Contains(c.UsedBy, userID)
}

// Exhausted reports whether every activation has been used
func (c *Check) Exhausted() bool {
	return int64(len(c.UsedBy)) >= c.Limit
}

// Remaining returns the number of activations left
func (c *Check) Remaining() int64 {
	if left := c.Limit - int64(len(c.UsedBy)); left > 0 {
		return left
	}
	return 0
}

// RedemptionResult describes a successful code activation
type RedemptionResult struct {
	Kind       CodeKind
	Code       string
	Amount     int64
	NewBalance int64
}

// StartParameterKind tells how a deep link parameter was interpreted
type StartParameterKind int

const (
	StartParameterNone StartParameterKind = iota
	StartParameterCheck
	StartParameterReferrer
)

// StartParameter is the interpreted value of a /start deep link payload
type StartParameter struct {
	Kind       StartParameterKind
	CheckCode  string
	ReferrerID int64
}
