package repository

import (
	"context"
	"fmt"

	"starsbot/database"
	"starsbot/models"
	"starsbot/service"

	"github.com/jackc/pgx/v5"
)

const checkColumns = `
	c.code,
	c.amount,
	c.activation_limit,
	c.created_at,
	ARRAY(SELECT cr.user_id FROM check_redemptions cr WHERE cr.code = c.code ORDER BY cr.created_at, cr.user_id) AS used_by
`

// CheckRepository implements the CheckRepository interface
type CheckRepository struct {
	q queryable
}

// NewCheckRepository creates a new check voucher repository
func NewCheckRepository(db *database.DB) *CheckRepository {
	return &CheckRepository{q: db.Pool}
}

func newCheckRepositoryWithTx(tx queryable) *CheckRepository {
	return &CheckRepository{q: tx}
}

func scanCheck(row pgx.Row) (*models.Check, error) {
	var check models.Check
	if err := row.Scan(&check.Code, &check.Amount, &check.Limit, &check.CreatedAt, &check.UsedBy); err != nil {
		return nil, err
	}
	return &check, nil
}

func (r *CheckRepository) GetByCode(ctx context.Context, code string) (*models.Check, error) {
	query := `SELECT ` + checkColumns + ` FROM checks c WHERE c.code = $1`

	check, err := scanCheck(r.q.QueryRow(ctx, query, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check %q: %w", code, err)
	}
	return check, nil
}

// GetForUpdate locks the check row, then reads the check with a second
// statement so used_by includes redemptions committed while waiting on the lock
func (r *CheckRepository) GetForUpdate(ctx context.Context, code string) (*models.Check, error) {
	var locked string
	err := r.q.QueryRow(ctx, `SELECT code FROM checks WHERE code = $1 FOR UPDATE`, code).Scan(&locked)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock check %q: %w", code, err)
	}
	return r.GetByCode(ctx, code)
}

func (r *CheckRepository) Create(ctx context.Context, check *models.Check) error {
	query := `
		INSERT INTO checks (code, amount, activation_limit)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, check.Code, check.Amount, check.Limit).Scan(&check.CreatedAt)
	if isUniqueViolation(err) {
		return service.ErrCodeExists
	}
	if err != nil {
		return fmt.Errorf("failed to create check %q: %w", check.Code, err)
	}
	return nil
}

func (r *CheckRepository) Delete(ctx context.Context, code string) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM checks WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete check %q: %w", code, err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *CheckRepository) AddRedemption(ctx context.Context, code string, userID int64) error {
	_, err := r.q.Exec(ctx, `INSERT INTO check_redemptions (code, user_id) VALUES ($1, $2)`, code, userID)
	if isUniqueViolation(err) {
		return service.ErrAlreadyRedeemed
	}
	if err != nil {
		return fmt.Errorf("failed to record redemption of %q by %d: %w", code, userID, err)
	}
	return nil
}

func (r *CheckRepository) List(ctx context.Context) ([]*models.Check, error) {
	query := `SELECT ` + checkColumns + ` FROM checks c ORDER BY c.created_at DESC, c.code`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var checks []*models.Check
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		checks = append(checks, check)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checks: %w", err)
	}

	return checks, nil
}
