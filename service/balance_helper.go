package service

import (
	"context"
	"fmt"

	"starsbot/events"
	"starsbot/models"
)

// RecordBalanceChange records a balance history entry and emits appropriate events.
// This is the single entry point for all balance changes in the system.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Flushed only after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}

// applyBalanceChange adjusts the balance of an account already locked by the
// caller and records the change. It returns the new balance.
func applyBalanceChange(ctx context.Context, uow UnitOfWork, userID int64, delta int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	newBalance, err := uow.AccountRepository().AdjustBalance(ctx, userID, delta)
	if err != nil {
		return 0, err
	}

	history := &models.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       newBalance - delta,
		BalanceAfter:        newBalance,
		ChangeAmount:        delta,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// lockActiveAccount locks the account row and rejects frozen accounts
func lockActiveAccount(ctx context.Context, uow UnitOfWork, userID int64) (*models.Account, error) {
	account, err := uow.AccountRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Frozen {
		return nil, ErrAccountFrozen
	}
	return account, nil
}

// confirmReferral credits the pending referrer of an already locked referred
// account. It reports whether a referral was confirmed. Nothing changes when
// there is no pending referrer, when the account already completed a task, or
// when the referrer is unknown or frozen.
func confirmReferral(ctx context.Context, uow UnitOfWork, referred *models.Account, completedTasks int64) (bool, error) {
	if !referred.HasPendingReferrer() || referred.ReferrerID != nil || completedTasks != 0 {
		return false, nil
	}
	referrerID := *referred.PendingReferrer

	referrer, err := uow.AccountRepository().GetForUpdate(ctx, referrerID)
	if err != nil {
		return false, fmt.Errorf("failed to lock referrer: %w", err)
	}
	if referrer == nil || referrer.Frozen || referrer.UserID == referred.UserID {
		return false, nil
	}

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := uow.AccountRepository().ConfirmReferral(ctx, referrerID, referred.UserID); err != nil {
		return false, fmt.Errorf("failed to confirm referral: %w", err)
	}

	if settings.ReferralReward > 0 {
		metadata := map[string]any{"referred_id": referred.UserID}
		if _, err := applyBalanceChange(ctx, uow, referrerID, settings.ReferralReward, models.TransactionTypeReferralReward, metadata); err != nil {
			return false, fmt.Errorf("failed to credit referral reward: %w", err)
		}
	}

	uow.EventBus().Publish(events.ReferralConfirmedEvent{
		ReferrerID: referrerID,
		ReferredID: referred.UserID,
		Reward:     settings.ReferralReward,
	})

	return true, nil
}
