package testutil

import (
	"context"
	"fmt"
	"testing"

	"starsbot/database"
	"starsbot/models"

	"github.com/stretchr/testify/require"
)

// CreateTestIdentity returns a Telegram identity with predictable names
func CreateTestIdentity(userID int64) models.UserIdentity {
	return models.UserIdentity{
		UserID:    userID,
		Username:  fmt.Sprintf("user%d", userID),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User %d", userID),
	}
}

// InsertAccount inserts an account row directly, bypassing the services
func InsertAccount(t *testing.T, db *database.DB, userID int64, balance int64) {
	t.Helper()
	identity := CreateTestIdentity(userID)
	_, err := db.Exec(context.Background(), `
		INSERT INTO accounts (user_id, username, first_name, last_name, balance)
		VALUES ($1, $2, $3, $4, $5)
	`, identity.UserID, identity.Username, identity.FirstName, identity.LastName, balance)
	require.NoError(t, err)
}

// InsertReferral links referred to referrer and sets referred.created_at
// to the given offset from now
func InsertReferral(t *testing.T, db *database.DB, referrerID, referredID int64, createdAgo string) {
	t.Helper()
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		UPDATE accounts
		SET referrer_id = $1, created_at = NOW() - $3::interval
		WHERE user_id = $2
	`, referrerID, referredID, createdAgo)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `INSERT INTO account_referrals (referrer_id, referred_id) VALUES ($1, $2)`, referrerID, referredID)
	require.NoError(t, err)
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   100,
		BalanceAfter:    90,
		ChangeAmount:    -10,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
