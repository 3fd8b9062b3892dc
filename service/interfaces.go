package service

import (
	"context"
	"time"

	"starsbot/events"
	"starsbot/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account with its referrals and used promo codes.
	// Returns nil when the account does not exist.
	GetByID(ctx context.Context, userID int64) (*models.Account, error)

	// GetForUpdate is GetByID holding a row lock until the transaction ends
	GetForUpdate(ctx context.Context, userID int64) (*models.Account, error)

	// Create inserts a new account unless one already exists. The returned
	// bool is false when the account was already there.
	Create(ctx context.Context, identity models.UserIdentity, pendingReferrer *int64) (*models.Account, bool, error)

	// AdjustBalance adds delta to the balance and returns the new balance.
	// Fails with ErrInsufficientFunds when the result would be negative.
	AdjustBalance(ctx context.Context, userID int64, delta int64) (int64, error)

	// SetFrozen sets or clears the frozen flag
	SetFrozen(ctx context.Context, userID int64, frozen bool) error

	// Reset zeroes the balance and clears referrals, used promo codes,
	// pending referrer and frozen flag
	Reset(ctx context.Context, userID int64) error

	// ConfirmReferral links the referred account to its referrer and clears
	// the pending referrer
	ConfirmReferral(ctx context.Context, referrerID, referredID int64) error

	// AddUsedPromoCode appends to the used promo codes read model
	AddUsedPromoCode(ctx context.Context, userID int64, code string) error

	// Count returns the total number of accounts
	Count(ctx context.Context) (int64, error)

	// CountCreatedSince returns the number of accounts created at or after since
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)

	// List returns accounts ordered by creation time
	List(ctx context.Context, limit, offset int) ([]*models.Account, error)

	// TopReferrers ranks referrers by referred accounts created since the given time
	TopReferrers(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error)
}

// PromoCodeRepository defines the interface for promo code data access
type PromoCodeRepository interface {
	// GetByCode returns nil when the code does not exist
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	GetForUpdate(ctx context.Context, code string) (*models.PromoCode, error)
	Create(ctx context.Context, promo *models.PromoCode) error
	Delete(ctx context.Context, code string) (bool, error)
	AddRedemption(ctx context.Context, code string, userID int64) error
	List(ctx context.Context) ([]*models.PromoCode, error)
}

// CheckRepository defines the interface for check voucher data access
type CheckRepository interface {
	// GetByCode returns nil when the check does not exist
	GetByCode(ctx context.Context, code string) (*models.Check, error)
	GetForUpdate(ctx context.Context, code string) (*models.Check, error)
	Create(ctx context.Context, check *models.Check) error
	Delete(ctx context.Context, code string) (bool, error)
	AddRedemption(ctx context.Context, code string, userID int64) error
	List(ctx context.Context) ([]*models.Check, error)
}

// WithdrawalRepository defines the interface for withdrawal request data access
type WithdrawalRepository interface {
	// Create inserts a pending request and fills in its ID and timestamps
	Create(ctx context.Context, withdrawal *models.Withdrawal) error

	// GetByID returns nil when the request does not exist
	GetByID(ctx context.Context, id int64) (*models.Withdrawal, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Withdrawal, error)

	// UpdateStatus moves the request to a terminal status and stamps resolved_at
	UpdateStatus(ctx context.Context, id int64, status models.WithdrawalStatus) error

	// SetMessageHandles stores the channel messages that mirror the request
	SetMessageHandles(ctx context.Context, id int64, publicMessageID, adminMessageID *int) error

	CountApprovedByUser(ctx context.Context, userID int64) (int64, error)
	CountPending(ctx context.Context) (int64, error)

	// SumApprovedSince returns the approved amount resolved at or after since
	SumApprovedSince(ctx context.Context, since time.Time) (int64, error)
}

// SettingsRepository defines the interface for the settings singleton
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, key models.SettingKey, value int64) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// TaskRewardRepository tracks which task rewards were already paid out
type TaskRewardRepository interface {
	// Record stores the reward and reports false when it was already recorded
	Record(ctx context.Context, userID int64, signature string, reward int64) (bool, error)
}

// ChannelRepository defines the interface for required channel data access
type ChannelRepository interface {
	List(ctx context.Context) ([]*models.Channel, error)
	Create(ctx context.Context, channelID, link string) (*models.Channel, error)
	Delete(ctx context.Context, id int64) error
}

// CustomTaskRepository defines the interface for admin defined tasks
type CustomTaskRepository interface {
	List(ctx context.Context) ([]*models.CustomTask, error)
	GetByID(ctx context.Context, id int64) (*models.CustomTask, error)
	Create(ctx context.Context, channelID, link string, reward int64) (*models.CustomTask, error)
	Delete(ctx context.Context, id int64) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	PromoCodeRepository() PromoCodeRepository
	CheckRepository() CheckRepository
	WithdrawalRepository() WithdrawalRepository
	SettingsRepository() SettingsRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	TaskRewardRepository() TaskRewardRepository
	ChannelRepository() ChannelRepository
	CustomTaskRepository() CustomTaskRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// VerificationOracle is the third party subscription and task API
type VerificationOracle interface {
	CheckSubscription(ctx context.Context, userID int64) (bool, error)
	ListTasks(ctx context.Context, userID int64, limit int) ([]models.SponsorTask, error)
	CheckTaskStatus(ctx context.Context, signature string) (models.TaskStatus, error)
	CompletedTaskCount(ctx context.Context, userID int64) (int64, error)
}

// MembershipChecker reports whether a user has joined a chat
type MembershipChecker interface {
	IsMember(ctx context.Context, chatID string, userID int64) (bool, error)
}

// WithdrawalNotifier mirrors withdrawal requests into the public and admin channels
type WithdrawalNotifier interface {
	// PostRequest announces a new request and returns the message handles
	PostRequest(ctx context.Context, withdrawal *models.Withdrawal, account *models.Account) (publicMessageID, adminMessageID int, err error)

	// PublishResolution edits both channel messages and tells the user
	PublishResolution(ctx context.Context, resolution *models.WithdrawalResolution) error
}

// LedgerService defines the account ledger operations
type LedgerService interface {
	// GetOrCreateAccount returns the account, creating it on first contact.
	// A referrer id becomes the pending referrer only on creation.
	GetOrCreateAccount(ctx context.Context, identity models.UserIdentity, referrerID *int64) (*models.Account, error)

	// GetAccount returns the account or ErrAccountNotFound
	GetAccount(ctx context.Context, userID int64) (*models.Account, error)

	// GetProfile returns the account together with live task and withdrawal counts
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)

	// Credit adds amount to a non frozen account
	Credit(ctx context.Context, userID int64, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error)

	// Debit removes amount from a non frozen account
	Debit(ctx context.Context, userID int64, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error)

	// ConfirmReferral credits the pending referrer once per referred account
	ConfirmReferral(ctx context.Context, referredID int64, completedTasks int64) (bool, error)

	Freeze(ctx context.Context, userID int64) error
	Unfreeze(ctx context.Context, userID int64) error
	Reset(ctx context.Context, userID int64) error

	// CheckEligibility compares live counts against the withdrawal thresholds
	CheckEligibility(ctx context.Context, userID int64) (*models.Eligibility, error)
}

// RedemptionService defines promo code and check activation
type RedemptionService interface {
	RedeemPromo(ctx context.Context, userID int64, code string) (*models.RedemptionResult, error)
	RedeemCheck(ctx context.Context, userID int64, code string) (*models.RedemptionResult, error)

	// Redeem handles free text input; checks are tried before promo codes
	Redeem(ctx context.Context, userID int64, text string) (*models.RedemptionResult, error)

	// ResolveStartParameter interprets a deep link payload
	ResolveStartParameter(ctx context.Context, param string) (*models.StartParameter, error)
}

// TaskService defines sponsor and custom task verification
type TaskService interface {
	ListTasks(ctx context.Context, userID int64) ([]models.SponsorTask, error)
	CheckTask(ctx context.Context, userID int64, signature string) (*models.TaskCheckResult, error)
	ListCustomTasks(ctx context.Context, userID int64) ([]*models.CustomTask, error)
	CheckCustomTask(ctx context.Context, userID int64, taskID int64) (*models.TaskCheckResult, error)
}

// WithdrawalService defines the withdrawal approval workflow
type WithdrawalService interface {
	Request(ctx context.Context, userID int64, amount int64) (*models.Withdrawal, error)
	Approve(ctx context.Context, id int64) (*models.WithdrawalResolution, error)
	Deny(ctx context.Context, id int64) (*models.WithdrawalResolution, error)
}

// GamblingService defines the slot machine gamble
type GamblingService interface {
	Wager(ctx context.Context, userID int64, stake int64) (*models.WagerResult, error)
}

// SubscriptionService gates access to the bot behind required subscriptions
type SubscriptionService interface {
	// CheckAccess reports whether the user may use the bot
	CheckAccess(ctx context.Context, userID int64) (bool, error)

	// MissingChannels lists required channels the user has not joined
	MissingChannels(ctx context.Context, userID int64) ([]*models.Channel, error)
}

// AdminService defines catalog and settings management
type AdminService interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSetting(ctx context.Context, key models.SettingKey, value int64) error

	CreatePromoCode(ctx context.Context, code string, reward, limit int64) (*models.PromoCode, error)
	DeletePromoCode(ctx context.Context, code string) error
	ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error)

	CreateCheck(ctx context.Context, amount, limit int64) (*models.Check, error)
	DeleteCheck(ctx context.Context, code string) error
	ListChecks(ctx context.Context) ([]*models.Check, error)

	AddChannel(ctx context.Context, channelID, link string) (*models.Channel, error)
	// DeleteChannel removes the channel at a 1-based position of ListChannels
	DeleteChannel(ctx context.Context, number int) error
	ListChannels(ctx context.Context) ([]*models.Channel, error)

	AddCustomTask(ctx context.Context, channelID, link string, reward int64) (*models.CustomTask, error)
	// DeleteCustomTask removes the task at a 1-based position of ListCustomTasks
	DeleteCustomTask(ctx context.Context, number int) error
	ListCustomTasks(ctx context.Context) ([]*models.CustomTask, error)

	ListAccounts(ctx context.Context, page int) (*models.AccountPage, error)
}

// StatsService defines the interface for statistics operations
type StatsService interface {
	GetAdminStats(ctx context.Context) (*models.AdminStats, error)
	GetLeaderboard(ctx context.Context, period models.LeaderboardPeriod, limit int) ([]*models.LeaderboardEntry, error)
}
