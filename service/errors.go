package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccountFrozen       = errors.New("account is frozen")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrCodeNotFound        = errors.New("code not found")
	ErrAlreadyRedeemed     = errors.New("code already redeemed by this account")
	ErrLimitExhausted      = errors.New("code activation limit exhausted")
	ErrEligibilityNotMet   = errors.New("withdrawal requirements not met")
	ErrOracleUnavailable   = errors.New("verification service unavailable")
	ErrAccountNotFound     = errors.New("account not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrWithdrawalResolved  = errors.New("withdrawal already resolved")
	ErrInvalidStake        = errors.New("invalid stake")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAlreadyRewarded = errors.New("task already rewarded")
	ErrCodeExists          = errors.New("code already exists")
	ErrInvalidValue        = errors.New("invalid value")
)

// EligibilityError carries the counts behind an ErrEligibilityNotMet
type EligibilityError struct {
	Referrals         int64
	RequiredReferrals int64
	CompletedTasks    int64
	RequiredTasks     int64
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s: %d/%d referrals, %d/%d tasks",
		ErrEligibilityNotMet, e.Referrals, e.RequiredReferrals, e.CompletedTasks, e.RequiredTasks)
}

func (e *EligibilityError) Unwrap() error {
	return ErrEligibilityNotMet
}
