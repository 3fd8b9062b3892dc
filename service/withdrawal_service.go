package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"starsbot/events"
	"starsbot/models"

	log "github.com/sirupsen/logrus"
)

// WithdrawalAmounts is the fixed menu of withdrawable amounts
var WithdrawalAmounts = []int64{15, 25, 50, 100, 150, 350, 500}

type withdrawalService struct {
	uowFactory UnitOfWorkFactory
	oracle     VerificationOracle
	notifier   WithdrawalNotifier
}

// NewWithdrawalService creates a new withdrawal workflow service
func NewWithdrawalService(uowFactory UnitOfWorkFactory, oracle VerificationOracle, notifier WithdrawalNotifier) WithdrawalService {
	return &withdrawalService{
		uowFactory: uowFactory,
		oracle:     oracle,
		notifier:   notifier,
	}
}

// Request debits the amount and opens a pending withdrawal. The checks run in
// the order frozen, balance, eligibility.
func (s *withdrawalService) Request(ctx context.Context, userID int64, amount int64) (*models.Withdrawal, error) {
	if !slices.Contains(WithdrawalAmounts, amount) {
		return nil, ErrInvalidStake
	}

	completed := completedTaskCount(ctx, s.oracle, userID)

	withdrawal, account, err := s.createRequest(ctx, userID, amount, completed)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, withdrawal, account)
	return withdrawal, nil
}

func (s *withdrawalService) createRequest(ctx context.Context, userID int64, amount int64, completedTasks int64) (*models.Withdrawal, *models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := lockActiveAccount(ctx, uow, userID)
	if err != nil {
		return nil, nil, err
	}
	if account.Balance < amount {
		return nil, nil, ErrInsufficientFunds
	}

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get settings: %w", err)
	}
	eligibility := models.Eligibility{
		Referrals:         account.ReferralCount(),
		RequiredReferrals: settings.MinReferrals,
		CompletedTasks:    completedTasks,
		RequiredTasks:     settings.MinTasks,
	}
	if !eligibility.Eligible() {
		return nil, nil, &EligibilityError{
			Referrals:         eligibility.Referrals,
			RequiredReferrals: eligibility.RequiredReferrals,
			CompletedTasks:    eligibility.CompletedTasks,
			RequiredTasks:     eligibility.RequiredTasks,
		}
	}

	withdrawal := &models.Withdrawal{
		UserID: userID,
		Amount: amount,
		Status: models.WithdrawalStatusPending,
	}
	if err := uow.WithdrawalRepository().Create(ctx, withdrawal); err != nil {
		return nil, nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	metadata := map[string]any{"withdrawal_id": withdrawal.ID}
	if _, err := applyBalanceChange(ctx, uow, userID, -amount, models.TransactionTypeWithdrawalDebit, metadata); err != nil {
		return nil, nil, fmt.Errorf("failed to debit withdrawal: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawalRequestedEvent{
		WithdrawalID: withdrawal.ID,
		UserID:       userID,
		Amount:       amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return withdrawal, account, nil
}

// announce posts the request to both channels and stores the message handles.
// Delivery is best effort; the request stands either way.
func (s *withdrawalService) announce(ctx context.Context, withdrawal *models.Withdrawal, account *models.Account) {
	logger := log.WithFields(log.Fields{
		"withdrawalID": withdrawal.ID,
		"userID":       withdrawal.UserID,
	})

	publicID, adminID, err := s.notifier.PostRequest(ctx, withdrawal, account)
	if err != nil {
		logger.WithError(err).Error("Failed to post withdrawal request")
	}
	if publicID == 0 && adminID == 0 {
		return
	}

	var publicHandle, adminHandle *int
	if publicID != 0 {
		publicHandle = &publicID
	}
	if adminID != 0 {
		adminHandle = &adminID
	}
	withdrawal.PublicMessageID = publicHandle
	withdrawal.AdminMessageID = adminHandle

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		logger.WithError(err).Error("Failed to store withdrawal message handles")
		return
	}
	defer uow.Rollback()

	if err := uow.WithdrawalRepository().SetMessageHandles(ctx, withdrawal.ID, publicHandle, adminHandle); err != nil {
		logger.WithError(err).Error("Failed to store withdrawal message handles")
		return
	}
	if err := uow.Commit(); err != nil {
		logger.WithError(err).Error("Failed to store withdrawal message handles")
	}
}

func (s *withdrawalService) Approve(ctx context.Context, id int64) (*models.WithdrawalResolution, error) {
	return s.resolve(ctx, id, models.WithdrawalStatusApproved)
}

func (s *withdrawalService) Deny(ctx context.Context, id int64) (*models.WithdrawalResolution, error) {
	return s.resolve(ctx, id, models.WithdrawalStatusDenied)
}

// resolve performs the single transition out of pending. The withdrawal row
// is locked before the account row.
func (s *withdrawalService) resolve(ctx context.Context, id int64, status models.WithdrawalStatus) (*models.WithdrawalResolution, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	withdrawal, err := uow.WithdrawalRepository().GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal: %w", err)
	}
	if withdrawal == nil {
		return nil, ErrWithdrawalNotFound
	}
	if !withdrawal.IsPending() {
		return nil, ErrWithdrawalResolved
	}

	account, err := uow.AccountRepository().GetForUpdate(ctx, withdrawal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if err := uow.WithdrawalRepository().UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal status: %w", err)
	}

	// A frozen account keeps the debit; the admin corrects it manually
	refunded := false
	if status == models.WithdrawalStatusDenied && !account.Frozen {
		metadata := map[string]any{"withdrawal_id": id}
		newBalance, err := applyBalanceChange(ctx, uow, account.UserID, withdrawal.Amount, models.TransactionTypeWithdrawalRefund, metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to refund withdrawal: %w", err)
		}
		account.Balance = newBalance
		refunded = true
	}

	now := time.Now()
	withdrawal.Status = status
	withdrawal.ResolvedAt = &now

	uow.EventBus().Publish(events.WithdrawalResolvedEvent{
		WithdrawalID: id,
		UserID:       withdrawal.UserID,
		Amount:       withdrawal.Amount,
		Status:       status,
		Refunded:     refunded,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	resolution := &models.WithdrawalResolution{
		Withdrawal: withdrawal,
		Account:    account,
		Refunded:   refunded,
	}

	if err := s.notifier.PublishResolution(ctx, resolution); err != nil {
		log.WithFields(log.Fields{
			"withdrawalID": id,
			"status":       status,
			"error":        err,
		}).Error("Failed to publish withdrawal resolution")
	}

	return resolution, nil
}
