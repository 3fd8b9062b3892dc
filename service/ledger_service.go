package service

import (
	"context"
	"fmt"

	"starsbot/events"
	"starsbot/models"

	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	oracle     VerificationOracle
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, oracle VerificationOracle) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		oracle:     oracle,
	}
}

func (s *ledgerService) GetOrCreateAccount(ctx context.Context, identity models.UserIdentity, referrerID *int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	var pendingReferrer *int64
	if referrerID != nil && *referrerID > 0 && *referrerID != identity.UserID {
		pendingReferrer = referrerID
	}

	account, created, err := uow.AccountRepository().Create(ctx, identity, pendingReferrer)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if !created {
		// Lost a race with a concurrent /start of the same user
		account, err = uow.AccountRepository().GetByID(ctx, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get account: %w", err)
		}
		return account, nil
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		UserID:          identity.UserID,
		Username:        identity.Username,
		PendingReferrer: pendingReferrer,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (s *ledgerService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Queried after the transaction is closed
	profile.CompletedTasks = completedTaskCount(ctx, s.oracle, userID)
	return profile, nil
}

func (s *ledgerService) loadProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	approved, err := uow.WithdrawalRepository().CountApprovedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved withdrawals: %w", err)
	}

	return &models.Profile{
		Account:             account,
		ApprovedWithdrawals: approved,
	}, nil
}

func (s *ledgerService) Credit(ctx context.Context, userID int64, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", ErrInvalidValue)
	}
	return s.adjust(ctx, userID, amount, txType, metadata)
}

func (s *ledgerService) Debit(ctx context.Context, userID int64, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: debit amount must be positive", ErrInvalidValue)
	}
	return s.adjust(ctx, userID, -amount, txType, metadata)
}

func (s *ledgerService) adjust(ctx context.Context, userID int64, delta int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := lockActiveAccount(ctx, uow, userID)
	if err != nil {
		return 0, err
	}
	if account.Balance+delta < 0 {
		return 0, ErrInsufficientFunds
	}

	newBalance, err := applyBalanceChange(ctx, uow, userID, delta, txType, metadata)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

func (s *ledgerService) ConfirmReferral(ctx context.Context, referredID int64, completedTasks int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	referred, err := uow.AccountRepository().GetForUpdate(ctx, referredID)
	if err != nil {
		return false, fmt.Errorf("failed to lock account: %w", err)
	}
	if referred == nil {
		return false, ErrAccountNotFound
	}

	confirmed, err := confirmReferral(ctx, uow, referred, completedTasks)
	if err != nil || !confirmed {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

func (s *ledgerService) Freeze(ctx context.Context, userID int64) error {
	return s.setFrozen(ctx, userID, true)
}

func (s *ledgerService) Unfreeze(ctx context.Context, userID int64) error {
	return s.setFrozen(ctx, userID, false)
}

func (s *ledgerService) setFrozen(ctx context.Context, userID int64, frozen bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AccountRepository().SetFrozen(ctx, userID, frozen); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"frozen": frozen,
	}).Info("Account frozen flag changed")
	return nil
}

func (s *ledgerService) Reset(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if err := uow.AccountRepository().Reset(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset account: %w", err)
	}

	if account.Balance != 0 {
		history := &models.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   account.Balance,
			BalanceAfter:    0,
			ChangeAmount:    -account.Balance,
			TransactionType: models.TransactionTypeAdminReset,
			TransactionMetadata: map[string]any{
				"referrals": len(account.Referrals),
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"balanceBefore": account.Balance,
	}).Info("Account reset")
	return nil
}

func (s *ledgerService) CheckEligibility(ctx context.Context, userID int64) (*models.Eligibility, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := uow.Rollback(); err != nil {
		return nil, fmt.Errorf("failed to close transaction: %w", err)
	}

	return &models.Eligibility{
		Referrals:         account.ReferralCount(),
		RequiredReferrals: settings.MinReferrals,
		CompletedTasks:    completedTaskCount(ctx, s.oracle, userID),
		RequiredTasks:     settings.MinTasks,
	}, nil
}

// completedTaskCount asks the oracle for the completed task count. Failures
// fail closed: the count is treated as zero.
func completedTaskCount(ctx context.Context, oracle VerificationOracle, userID int64) int64 {
	count, err := oracle.CompletedTaskCount(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"userID":   userID,
			"fallback": "zero_completed_tasks",
			"error":    err,
		}).Warn("Completed task count unavailable")
		return 0
	}
	return count
}
