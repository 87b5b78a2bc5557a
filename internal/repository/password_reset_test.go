package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"workshophub/internal/models"
	"workshophub/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetRepository_IssueInvalidatesPrevious(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	first, err := repo.Issue(ctx, alice.ID, 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), first.ExpiresAt, time.Minute)

	second, err := repo.Issue(ctx, alice.ID, 24*time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	now := time.Now()
	reloaded, err := repo.GetByToken(ctx, first.Token)
	require.NoError(t, err)
	assert.False(t, reloaded.IsValid(now))

	live, err := repo.GetByToken(ctx, second.Token)
	require.NoError(t, err)
	assert.True(t, live.IsValid(now))

	var liveCount int64
	require.NoError(t, db.Model(&models.PasswordReset{}).
		Where("user_id = ? AND used = ? AND expires_at > ?", alice.ID, false, now).
		Count(&liveCount).Error)
	assert.Equal(t, int64(1), liveCount)
}

func TestPasswordResetRepository_Redeem(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	reset, err := repo.Issue(ctx, alice.ID, time.Hour)
	require.NoError(t, err)

	user, err := repo.Redeem(ctx, reset.Token, "new-hash", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "new-hash", user.Password)

	_, err = repo.Redeem(ctx, reset.Token, "other-hash", time.Now())
	require.Error(t, err)
	assert.Equal(t, models.CodeTokenInvalid, models.ErrorCode(err))
	assert.Equal(t, models.TokenReasonUsed, models.ErrorReason(err))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, alice.ID).Error)
	assert.Equal(t, "new-hash", reloaded.Password)
}

func TestPasswordResetRepository_RedeemRejections(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	reset, err := repo.Issue(ctx, alice.ID, time.Hour)
	require.NoError(t, err)

	_, err = repo.Redeem(ctx, uuid.New(), "h", time.Now())
	assert.Equal(t, models.TokenReasonInvalid, models.ErrorReason(err))

	_, err = repo.Redeem(ctx, reset.Token, "h", time.Now().Add(2*time.Hour))
	assert.Equal(t, models.TokenReasonExpired, models.ErrorReason(err))

	var reloaded models.PasswordReset
	require.NoError(t, db.First(&reloaded, reset.ID).Error)
	assert.False(t, reloaded.Used, "failed redemption must not mark the token used")

	var user models.User
	require.NoError(t, db.First(&user, alice.ID).Error)
	assert.Equal(t, "x", user.Password)
}

func TestPasswordResetRepository_ConcurrentRedeemSingleWinner(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	reset, err := repo.Issue(ctx, alice.ID, time.Hour)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Redeem(ctx, reset.Token, "hash", time.Now())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, models.TokenReasonUsed, models.ErrorReason(err))
	}
	assert.Equal(t, 1, wins)
}

func TestPasswordResetRepository_DeleteStale(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	old := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, db.Create(&models.PasswordReset{UserID: alice.ID, CreatedAt: old, ExpiresAt: old.Add(24 * time.Hour)}).Error)
	require.NoError(t, db.Create(&models.PasswordReset{UserID: alice.ID, CreatedAt: old, ExpiresAt: time.Now().Add(time.Hour), Used: true}).Error)
	live, err := repo.Issue(ctx, alice.ID, time.Hour)
	require.NoError(t, err)

	n, err := repo.DeleteStale(ctx, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetByToken(ctx, live.Token)
	assert.NoError(t, err)
}
