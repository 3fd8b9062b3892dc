package repository

import (
	"context"
	"fmt"

	"starsbot/database"
	"starsbot/events"
	"starsbot/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                 *database.DB
	tx                 pgx.Tx
	ctx                context.Context
	transactionalBus   *events.TransactionalBus
	accountRepo        service.AccountRepository
	promoCodeRepo      service.PromoCodeRepository
	checkRepo          service.CheckRepository
	withdrawalRepo     service.WithdrawalRepository
	settingsRepo       service.SettingsRepository
	balanceHistoryRepo service.BalanceHistoryRepository
	taskRewardRepo     service.TaskRewardRepository
	channelRepo        service.ChannelRepository
	customTaskRepo     service.CustomTaskRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.promoCodeRepo = newPromoCodeRepositoryWithTx(tx)
	u.checkRepo = newCheckRepositoryWithTx(tx)
	u.withdrawalRepo = newWithdrawalRepositoryWithTx(tx)
	u.settingsRepo = newSettingsRepositoryWithTx(tx)
	u.balanceHistoryRepo = newBalanceHistoryRepositoryWithTx(tx)
	u.taskRewardRepo = newTaskRewardRepositoryWithTx(tx)
	u.channelRepo = newChannelRepositoryWithTx(tx)
	u.customTaskRepo = newCustomTaskRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes the pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and drops the pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

const notStarted = "unit of work not started - call Begin() first"

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic(notStarted)
	}
	return u.accountRepo
}

// PromoCodeRepository returns the promo code repository for this unit of work
func (u *unitOfWork) PromoCodeRepository() service.PromoCodeRepository {
	if u.promoCodeRepo == nil {
		panic(notStarted)
	}
	return u.promoCodeRepo
}

// CheckRepository returns the check repository for this unit of work
func (u *unitOfWork) CheckRepository() service.CheckRepository {
	if u.checkRepo == nil {
		panic(notStarted)
	}
	return u.checkRepo
}

// WithdrawalRepository returns the withdrawal repository for this unit of work
func (u *unitOfWork) WithdrawalRepository() service.WithdrawalRepository {
	if u.withdrawalRepo == nil {
		panic(notStarted)
	}
	return u.withdrawalRepo
}

// SettingsRepository returns the settings repository for this unit of work
func (u *unitOfWork) SettingsRepository() service.SettingsRepository {
	if u.settingsRepo == nil {
		panic(notStarted)
	}
	return u.settingsRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	if u.balanceHistoryRepo == nil {
		panic(notStarted)
	}
	return u.balanceHistoryRepo
}

// TaskRewardRepository returns the task reward repository for this unit of work
func (u *unitOfWork) TaskRewardRepository() service.TaskRewardRepository {
	if u.taskRewardRepo == nil {
		panic(notStarted)
	}
	return u.taskRewardRepo
}

// ChannelRepository returns the required channel repository for this unit of work
func (u *unitOfWork) ChannelRepository() service.ChannelRepository {
	if u.channelRepo == nil {
		panic(notStarted)
	}
	return u.channelRepo
}

// CustomTaskRepository returns the custom task repository for this unit of work
func (u *unitOfWork) CustomTaskRepository() service.CustomTaskRepository {
	if u.customTaskRepo == nil {
		panic(notStarted)
	}
	return u.customTaskRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic(notStarted)
	}
	return u.transactionalBus
}
