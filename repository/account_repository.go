package repository

import (
	"context"
	"fmt"
	"time"

	"starsbot/database"
	"starsbot/models"
	"starsbot/service"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	a.user_id,
	a.username,
	a.first_name,
	a.last_name,
	a.balance,
	a.referrer_id,
	a.pending_referrer,
	a.frozen,
	a.created_at,
	a.updated_at,
	ARRAY(SELECT r.referred_id FROM account_referrals r WHERE r.referrer_id = a.user_id ORDER BY r.created_at, r.referred_id) AS referrals,
	ARRAY(SELECT p.code FROM account_promo_codes p WHERE p.user_id = a.user_id ORDER BY p.created_at, p.code) AS used_promo_codes
`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.UserID,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.Balance,
		&account.ReferrerID,
		&account.PendingReferrer,
		&account.Frozen,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.Referrals,
		&account.UsedPromoCodes,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its Telegram user ID
func (r *AccountRepository) GetByID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.user_id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}
	return account, nil
}

// GetForUpdate locks the account row until the transaction ends. The account
// is read by a separate statement so its referral and promo lists reflect
// everything committed before the lock was granted.
func (r *AccountRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	var locked int64
	err := r.q.QueryRow(ctx, `SELECT user_id FROM accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&locked)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", userID, err)
	}
	return r.GetByID(ctx, userID)
}

// Create inserts a new account with zero balance. It reports false when the
// account already exists.
func (r *AccountRepository) Create(ctx context.Context, identity models.UserIdentity, pendingReferrer *int64) (*models.Account, bool, error) {
	query := `
		INSERT INTO accounts (user_id, username, first_name, last_name, pending_referrer)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING user_id, username, first_name, last_name, balance, referrer_id, pending_referrer, frozen, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query,
		identity.UserID,
		identity.Username,
		identity.FirstName,
		identity.LastName,
		pendingReferrer,
	).Scan(
		&account.UserID,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.Balance,
		&account.ReferrerID,
		&account.PendingReferrer,
		&account.Frozen,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account %d: %w", identity.UserID, err)
	}

	return &account, true, nil
}

// AdjustBalance adds delta to the balance in a single statement, refusing any
// change that would leave it negative. It returns the new balance.
func (r *AccountRepository) AdjustBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2 AND balance + $1 >= 0
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, delta, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		exists, existsErr := r.exists(ctx, userID)
		if existsErr != nil {
			return 0, existsErr
		}
		if !exists {
			return 0, service.ErrAccountNotFound
		}
		return 0, service.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance for account %d: %w", userID, err)
	}

	return balance, nil
}

func (r *AccountRepository) exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account %d: %w", userID, err)
	}
	return exists, nil
}

// SetFrozen sets the frozen flag
func (r *AccountRepository) SetFrozen(ctx context.Context, userID int64, frozen bool) error {
	result, err := r.q.Exec(ctx, `UPDATE accounts SET frozen = $1, updated_at = NOW() WHERE user_id = $2`, frozen, userID)
	if err != nil {
		return fmt.Errorf("failed to set frozen flag for account %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}
	return nil
}

// Reset zeroes the balance and clears the referral list, used promo codes,
// pending referrer and frozen flag. Identity and the confirmed referrer stay.
func (r *AccountRepository) Reset(ctx context.Context, userID int64) error {
	result, err := r.q.Exec(ctx, `
		UPDATE accounts
		SET balance = 0, pending_referrer = NULL, frozen = FALSE, updated_at = NOW()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset account %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM account_referrals WHERE referrer_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear referrals for account %d: %w", userID, err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM account_promo_codes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear used promo codes for account %d: %w", userID, err)
	}

	return nil
}

// ConfirmReferral appends the referred account to the referrer's list and
// moves the pending referrer into referrer_id
func (r *AccountRepository) ConfirmReferral(ctx context.Context, referrerID, referredID int64) error {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO account_referrals (referrer_id, referred_id)
		VALUES ($1, $2)
	`, referrerID, referredID); err != nil {
		return fmt.Errorf("failed to record referral %d -> %d: %w", referrerID, referredID, err)
	}

	result, err := r.q.Exec(ctx, `
		UPDATE accounts
		SET referrer_id = $1, pending_referrer = NULL, updated_at = NOW()
		WHERE user_id = $2 AND referrer_id IS NULL
	`, referrerID, referredID)
	if err != nil {
		return fmt.Errorf("failed to set referrer for account %d: %w", referredID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d already has a confirmed referrer", referredID)
	}

	return nil
}

// AddUsedPromoCode records a promo code on the account's used list
func (r *AccountRepository) AddUsedPromoCode(ctx context.Context, userID int64, code string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO account_promo_codes (user_id, code)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, code)
	if err != nil {
		return fmt.Errorf("failed to record used promo code for account %d: %w", userID, err)
	}
	return nil
}

// Count returns the number of accounts
func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// CountCreatedSince returns the number of accounts created at or after since
func (r *AccountRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE created_at >= $1`, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts created since %s: %w", since, err)
	}
	return count, nil
}

// List returns accounts newest first
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a ORDER BY a.created_at DESC, a.user_id DESC LIMIT $1 OFFSET $2`

	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// TopReferrers ranks referrers by confirmed referrals whose referred account
// was created at or after since
func (r *AccountRepository) TopReferrers(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT a.user_id, a.username, a.first_name, COUNT(*) AS referrals
		FROM account_referrals r
		JOIN accounts referred ON referred.user_id = r.referred_id
		JOIN accounts a ON a.user_id = r.referrer_id
		WHERE referred.created_at >= $1
		GROUP BY a.user_id, a.username, a.first_name
		ORDER BY referrals DESC, a.user_id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.FirstName, &entry.Referrals); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}

	return entries, nil
}
