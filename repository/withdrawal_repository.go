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

const withdrawalColumns = `id, user_id, amount, status, admin_message_id, public_message_id, created_at, resolved_at`

// WithdrawalRepository implements the WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new withdrawal repository with a transaction
func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

func scanWithdrawal(row pgx.Row) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Amount,
		&w.Status,
		&w.AdminMessageID,
		&w.PublicMessageID,
		&w.CreatedAt,
		&w.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create inserts a pending withdrawal and fills in its ID and creation time
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (user_id, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if withdrawal.Status == "" {
		withdrawal.Status = models.WithdrawalStatusPending
	}

	err := r.q.QueryRow(ctx, query, withdrawal.UserID, withdrawal.Amount, withdrawal.Status).
		Scan(&withdrawal.ID, &withdrawal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal for user %d: %w", withdrawal.UserID, err)
	}
	return nil
}

// GetByID retrieves a withdrawal by its ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*models.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`

	withdrawal, err := scanWithdrawal(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal %d: %w", id, err)
	}
	return withdrawal, nil
}

// GetForUpdate retrieves a withdrawal and locks its row
func (r *WithdrawalRepository) GetForUpdate(ctx context.Context, id int64) (*models.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1 FOR UPDATE`

	withdrawal, err := scanWithdrawal(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal %d: %w", id, err)
	}
	return withdrawal, nil
}

// UpdateStatus moves a pending withdrawal to its final status. A withdrawal
// that is no longer pending is left untouched.
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, id int64, status models.WithdrawalStatus) error {
	result, err := r.q.Exec(ctx, `
		UPDATE withdrawals
		SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrWithdrawalResolved
	}
	return nil
}

// SetMessageHandles stores the channel message IDs used to edit the request later
func (r *WithdrawalRepository) SetMessageHandles(ctx context.Context, id int64, publicMessageID, adminMessageID *int) error {
	_, err := r.q.Exec(ctx, `
		UPDATE withdrawals
		SET public_message_id = COALESCE($1, public_message_id),
		    admin_message_id = COALESCE($2, admin_message_id)
		WHERE id = $3
	`, publicMessageID, adminMessageID, id)
	if err != nil {
		return fmt.Errorf("failed to store message handles for withdrawal %d: %w", id, err)
	}
	return nil
}

// CountApprovedByUser returns the number of approved withdrawals of a user
func (r *WithdrawalRepository) CountApprovedByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM withdrawals WHERE user_id = $1 AND status = 'approved'
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved withdrawals for user %d: %w", userID, err)
	}
	return count, nil
}

// CountPending returns the number of withdrawals awaiting a decision
func (r *WithdrawalRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawals WHERE status = 'pending'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending withdrawals: %w", err)
	}
	return count, nil
}

// SumApprovedSince sums approved amounts resolved at or after since. A zero
// since covers all time.
func (r *WithdrawalRepository) SumApprovedSince(ctx context.Context, since time.Time) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM withdrawals
		WHERE status = 'approved' AND ($1::timestamptz IS NULL OR resolved_at >= $1)
	`, nullableTime(since)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved withdrawals: %w", err)
	}
	return sum, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
