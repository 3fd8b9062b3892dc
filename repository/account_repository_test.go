package repository

import (
	"context"
	"testing"
	"time"

	"starsbot/repository/testutil"
	"starsbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("new account starts empty", func(t *testing.T) {
		referrer := int64(500)
		account, created, err := repo.Create(ctx, testutil.CreateTestIdentity(100), &referrer)
		require.NoError(t, err)
		require.True(t, created)

		assert.Equal(t, int64(100), account.UserID)
		assert.Equal(t, "user100", account.Username)
		assert.Equal(t, int64(0), account.Balance)
		assert.False(t, account.Frozen)
		require.NotNil(t, account.PendingReferrer)
		assert.Equal(t, referrer, *account.PendingReferrer)
		assert.Nil(t, account.ReferrerID)
	})

	t.Run("existing account is not replaced", func(t *testing.T) {
		_, created, err := repo.Create(ctx, testutil.CreateTestIdentity(101), nil)
		require.NoError(t, err)
		require.True(t, created)

		account, created, err := repo.Create(ctx, testutil.CreateTestIdentity(101), nil)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Nil(t, account)
	})

	t.Run("self referral is refused by the schema", func(t *testing.T) {
		self := int64(102)
		_, _, err := repo.Create(ctx, testutil.CreateTestIdentity(102), &self)
		assert.Error(t, err)
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("account not found", func(t *testing.T) {
		account, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("loads referrals and used codes", func(t *testing.T) {
		testutil.InsertAccount(t, testDB.DB, 200, 10)
		testutil.InsertAccount(t, testDB.DB, 201, 0)
		testutil.InsertAccount(t, testDB.DB, 202, 0)
		testutil.InsertReferral(t, testDB.DB, 200, 201, "1 hour")
		testutil.InsertReferral(t, testDB.DB, 200, 202, "1 hour")
		require.NoError(t, repo.AddUsedPromoCode(ctx, 200, "SPRING"))
		require.NoError(t, repo.AddUsedPromoCode(ctx, 200, "SPRING"))

		account, err := repo.GetByID(ctx, 200)
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.ElementsMatch(t, []int64{201, 202}, account.Referrals)
		assert.Equal(t, []string{"SPRING"}, account.UsedPromoCodes)
		assert.Equal(t, int64(2), account.ReferralCount())
	})
}

func TestAccountRepository_AdjustBalance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	testutil.InsertAccount(t, testDB.DB, 300, 20)

	balance, err := repo.AdjustBalance(ctx, 300, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)

	balance, err = repo.AdjustBalance(ctx, 300, -25)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	_, err = repo.AdjustBalance(ctx, 300, -1)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	_, err = repo.AdjustBalance(ctx, 301, 1)
	assert.ErrorIs(t, err, service.ErrAccountNotFound)

	account, err := repo.GetByID(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
}

func TestAccountRepository_ConfirmReferral(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	testutil.InsertAccount(t, testDB.DB, 400, 0)
	referrer := int64(400)
	_, _, err := repo.Create(ctx, testutil.CreateTestIdentity(401), &referrer)
	require.NoError(t, err)

	require.NoError(t, repo.ConfirmReferral(ctx, 400, 401))

	referred, err := repo.GetByID(ctx, 401)
	require.NoError(t, err)
	require.NotNil(t, referred.ReferrerID)
	assert.Equal(t, int64(400), *referred.ReferrerID)
	assert.Nil(t, referred.PendingReferrer)

	owner, err := repo.GetByID(ctx, 400)
	require.NoError(t, err)
	assert.Equal(t, []int64{401}, owner.Referrals)

	// A referred account can be counted once only
	assert.Error(t, repo.ConfirmReferral(ctx, 400, 401))
}

func TestAccountRepository_Reset(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	testutil.InsertAccount(t, testDB.DB, 500, 75)
	testutil.InsertAccount(t, testDB.DB, 501, 0)
	testutil.InsertReferral(t, testDB.DB, 500, 501, "1 day")
	require.NoError(t, repo.AddUsedPromoCode(ctx, 500, "WELCOME"))
	require.NoError(t, repo.SetFrozen(ctx, 500, true))

	require.NoError(t, repo.Reset(ctx, 500))

	account, err := repo.GetByID(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
	assert.Empty(t, account.Referrals)
	assert.Empty(t, account.UsedPromoCodes)
	assert.False(t, account.Frozen)
	assert.Nil(t, account.PendingReferrer)
	assert.Equal(t, "user500", account.Username)

	assert.ErrorIs(t, repo.Reset(ctx, 999), service.ErrAccountNotFound)
}

func TestAccountRepository_Stats(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	for _, id := range []int64{600, 601, 602, 603, 604, 605} {
		testutil.InsertAccount(t, testDB.DB, id, 0)
	}
	testutil.InsertReferral(t, testDB.DB, 600, 601, "2 hours")
	testutil.InsertReferral(t, testDB.DB, 600, 602, "3 days")
	testutil.InsertReferral(t, testDB.DB, 603, 604, "1 hour")
	testutil.InsertReferral(t, testDB.DB, 603, 605, "40 days")

	t.Run("counts", func(t *testing.T) {
		total, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)

		recent, err := repo.CountCreatedSince(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(4), recent)
	})

	t.Run("daily leaderboard", func(t *testing.T) {
		entries, err := repo.TopReferrers(ctx, time.Now().Add(-24*time.Hour), 5)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(1), entries[0].Referrals)
		assert.Equal(t, int64(1), entries[1].Referrals)
	})

	t.Run("weekly leaderboard", func(t *testing.T) {
		entries, err := repo.TopReferrers(ctx, time.Now().Add(-7*24*time.Hour), 5)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(600), entries[0].UserID)
		assert.Equal(t, int64(2), entries[0].Referrals)
		assert.Equal(t, "user600", entries[0].Username)
	})

	t.Run("list pages", func(t *testing.T) {
		page, err := repo.List(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, int64(604), page[0].UserID)

		last, err := repo.List(ctx, 1, 5)
		require.NoError(t, err)
		require.Len(t, last, 1)
		assert.Equal(t, int64(605), last[0].UserID)
	})
}

func TestAccountRepository_GetForUpdate_MissingAccount(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	tx, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	account, err := newAccountRepositoryWithTx(tx).GetForUpdate(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, account)
}
