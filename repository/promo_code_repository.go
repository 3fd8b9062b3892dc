package repository

import (
	"context"
	"fmt"

	"starsbot/database"
	"starsbot/models"
	"starsbot/service"

	"github.com/jackc/pgx/v5"
)

const promoCodeColumns = `
	c.code,
	c.reward,
	c.activation_limit,
	c.created_at,
	ARRAY(SELECT pr.user_id FROM promo_redemptions pr WHERE pr.code = c.code ORDER BY pr.created_at, pr.user_id) AS used_by
`

// PromoCodeRepository implements the PromoCodeRepository interface
type PromoCodeRepository struct {
	q queryable
}

// NewPromoCodeRepository creates a new promo code repository
func NewPromoCodeRepository(db *database.DB) *PromoCodeRepository {
	return &PromoCodeRepository{q: db.Pool}
}

// newPromoCodeRepositoryWithTx creates a new promo code repository with a transaction
func newPromoCodeRepositoryWithTx(tx queryable) *PromoCodeRepository {
	return &PromoCodeRepository{q: tx}
}

func scanPromoCode(row pgx.Row) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := row.Scan(&promo.Code, &promo.Reward, &promo.Limit, &promo.CreatedAt, &promo.UsedBy); err != nil {
		return nil, err
	}
	return &promo, nil
}

// GetByCode retrieves a promo code with its redemptions
func (r *PromoCodeRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `SELECT ` + promoCodeColumns + ` FROM promo_codes c WHERE c.code = $1`

	promo, err := scanPromoCode(r.q.QueryRow(ctx, query, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code %q: %w", code, err)
	}
	return promo, nil
}

// GetForUpdate locks the promo code row, then reads the code with a second
// statement so used_by includes redemptions committed while waiting on the lock
func (r *PromoCodeRepository) GetForUpdate(ctx context.Context, code string) (*models.PromoCode, error) {
	var locked string
	err := r.q.QueryRow(ctx, `SELECT code FROM promo_codes WHERE code = $1 FOR UPDATE`, code).Scan(&locked)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock promo code %q: %w", code, err)
	}
	return r.GetByCode(ctx, code)
}

// Create inserts a new promo code
func (r *PromoCodeRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	query := `
		INSERT INTO promo_codes (code, reward, activation_limit)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, promo.Code, promo.Reward, promo.Limit).Scan(&promo.CreatedAt)
	if isUniqueViolation(err) {
		return service.ErrCodeExists
	}
	if err != nil {
		return fmt.Errorf("failed to create promo code %q: %w", promo.Code, err)
	}
	return nil
}

// Delete removes a promo code and its redemptions
func (r *PromoCodeRepository) Delete(ctx context.Context, code string) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM promo_codes WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete promo code %q: %w", code, err)
	}
	return result.RowsAffected() > 0, nil
}

// AddRedemption appends a user to the promo code's used list
func (r *PromoCodeRepository) AddRedemption(ctx context.Context, code string, userID int64) error {
	_, err := r.q.Exec(ctx, `INSERT INTO promo_redemptions (code, user_id) VALUES ($1, $2)`, code, userID)
	if isUniqueViolation(err) {
		return service.ErrAlreadyRedeemed
	}
	if err != nil {
		return fmt.Errorf("failed to record redemption of %q by %d: %w", code, userID, err)
	}
	return nil
}

// List returns all promo codes, newest first
func (r *PromoCodeRepository) List(ctx context.Context) ([]*models.PromoCode, error) {
	query := `SELECT ` + promoCodeColumns + ` FROM promo_codes c ORDER BY c.created_at DESC, c.code`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	var promos []*models.PromoCode
	for rows.Next() {
		promo, err := scanPromoCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, promo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate promo codes: %w", err)
	}

	return promos, nil
}
