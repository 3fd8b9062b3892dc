package common

import (
	"errors"
	"fmt"

	"starsbot/service"

	log "github.com/sirupsen/logrus"
)

// ErrorMessage maps a service error onto the text shown to the user
func ErrorMessage(err error) string {
	var eligibility *service.EligibilityError
	switch {
	case errors.As(err, &eligibility):
		return fmt.Sprintf("⚠️ Withdrawal requirements not met\n\n👥 Referrals: %d/%d\n🎯 Tasks: %d/%d",
			eligibility.Referrals, eligibility.RequiredReferrals,
			eligibility.CompletedTasks, eligibility.RequiredTasks)
	case errors.Is(err, service.ErrAccountFrozen):
		return "❄️ Your account is frozen."
	case errors.Is(err, service.ErrInsufficientFunds):
		return "❌ Not enough stars on your balance."
	case errors.Is(err, service.ErrCodeNotFound):
		return "❌ Code not found."
	case errors.Is(err, service.ErrAlreadyRedeemed):
		return "⚠️ You have already activated this code."
	case errors.Is(err, service.ErrLimitExhausted):
		return "⚠️ This code has no activations left."
	case errors.Is(err, service.ErrOracleUnavailable):
		return "⏳ Task verification is unavailable right now. Try again later."
	case errors.Is(err, service.ErrAccountNotFound):
		return "❌ Account not found. Send /start first."
	case errors.Is(err, service.ErrWithdrawalNotFound):
		return "❌ Withdrawal request not found."
	case errors.Is(err, service.ErrWithdrawalResolved):
		return "⚠️ This request has already been processed."
	case errors.Is(err, service.ErrInvalidStake):
		return "❌ Invalid amount."
	case errors.Is(err, service.ErrTaskNotFound):
		return "❌ Task not found."
	case errors.Is(err, service.ErrTaskAlreadyRewarded):
		return "⚠️ You have already been rewarded for this task."
	case errors.Is(err, service.ErrCodeExists):
		return "❌ A code with this name already exists."
	case errors.Is(err, service.ErrInvalidValue):
		return "❌ Invalid value."
	default:
		log.WithError(err).Error("Unhandled error while processing update")
		return "❌ Something went wrong. Please try again."
	}
}
