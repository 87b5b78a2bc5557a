package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"workshophub/internal/models"
	"workshophub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func assertEnrolledCountMatchesRows(t *testing.T, db *gorm.DB, repo EnrollmentRepository, workshopID uint) {
	t.Helper()
	var rows []models.Enrollment
	require.NoError(t, db.Where("workshop_id = ?", workshopID).Find(&rows).Error)
	var want int64
	for _, e := range rows {
		if e.Status == models.EnrollmentStatusEnrolled {
			want++
		}
	}
	got, err := repo.CountEnrolled(context.Background(), workshopID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEnrollmentRepository_Admit(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	cat := testutil.CreateCategory(t, db, "frontend")
	w := testutil.CreateWorkshop(t, db, cat.ID, "react", 30)
	alice := testutil.CreateUser(t, db, "alice")

	change, err := repo.Admit(ctx, alice.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, change.Enrollment.Status)
	assert.False(t, change.Reactivated)
	assert.Equal(t, int64(1), change.EnrolledCount)
	assert.Equal(t, 30, change.MaxStudents)
	assertEnrolledCountMatchesRows(t, db, repo, w.ID)

	_, err = repo.Admit(ctx, alice.ID, w.ID)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.Equal(t, models.ConflictReasonDuplicate, models.ErrorReason(err))
	assertEnrolledCountMatchesRows(t, db, repo, w.ID)
}

func TestEnrollmentRepository_AdmitPreconditions(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	cat := testutil.CreateCategory(t, db, "frontend")
	inactive := testutil.CreateWorkshop(t, db, cat.ID, "inactive", 30)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	full := testutil.CreateWorkshop(t, db, cat.ID, "full", 1)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	_, err := repo.Admit(ctx, bob.ID, full.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		workshopID uint
		wantCode   string
		wantReason string
	}{
		{"missing workshop", 9999, models.CodeNotFound, ""},
		{"inactive workshop", inactive.ID, models.CodeConflict, models.ConflictReasonInactive},
		{"full workshop", full.ID, models.CodeConflict, models.ConflictReasonFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Admit(ctx, alice.ID, tt.workshopID)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, models.ErrorCode(err))
			assert.Equal(t, tt.wantReason, models.ErrorReason(err))
		})
	}

	var n int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("user_id = ?", alice.ID).Count(&n).Error)
	assert.Zero(t, n, "failed admissions must not write rows")
}

func TestEnrollmentRepository_CancelFreesSeatAndReactivates(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	cat := testutil.CreateCategory(t, db, "frontend")
	w := testutil.CreateWorkshop(t, db, cat.ID, "tiny", 1)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	first, err := repo.Admit(ctx, alice.ID, w.ID)
	require.NoError(t, err)

	_, err = repo.Admit(ctx, bob.ID, w.ID)
	assert.Equal(t, models.ConflictReasonFull, models.ErrorReason(err))

	_, err = repo.Cancel(ctx, bob.ID, first.Enrollment.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "cannot cancel another user's enrollment")

	cancelled, err := repo.Cancel(ctx, alice.ID, first.Enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelled, cancelled.Enrollment.Status)
	assert.Equal(t, int64(0), cancelled.EnrolledCount)
	assertEnrolledCountMatchesRows(t, db, repo, w.ID)

	var row models.Enrollment
	require.NoError(t, db.First(&row, first.Enrollment.ID).Error)
	assert.Equal(t, models.EnrollmentStatusCancelled, row.Status, "cancel keeps the row")

	again, err := repo.Admit(ctx, alice.ID, w.ID)
	require.NoError(t, err)
	assert.True(t, again.Reactivated)
	assert.Equal(t, first.Enrollment.ID, again.Enrollment.ID)
	assertEnrolledCountMatchesRows(t, db, repo, w.ID)
}

func TestEnrollmentRepository_ConcurrentAdmissionsNeverOversell(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	cat := testutil.CreateCategory(t, db, "frontend")
	w := testutil.CreateWorkshop(t, db, cat.ID, "popular", 3)

	users := make([]*models.User, 10)
	for i := range users {
		users[i] = testutil.CreateUser(t, db, fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, full := 0, 0
	for _, u := range users {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := repo.Admit(ctx, userID, w.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case models.ErrorReason(err) == models.ConflictReasonFull:
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 3, admitted)
	assert.Equal(t, 7, full)
	assertEnrolledCountMatchesRows(t, db, repo, w.ID)
}

func TestEnrollmentRepository_ListScopedToCaller(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	cat := testutil.CreateCategory(t, db, "frontend")
	w1 := testutil.CreateWorkshop(t, db, cat.ID, "one", 30)
	w2 := testutil.CreateWorkshop(t, db, cat.ID, "two", 30)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	a1, err := repo.Admit(ctx, alice.ID, w1.ID)
	require.NoError(t, err)
	_, err = repo.Admit(ctx, alice.ID, w2.ID)
	require.NoError(t, err)
	_, err = repo.Admit(ctx, bob.ID, w1.ID)
	require.NoError(t, err)
	_, err = repo.Cancel(ctx, alice.ID, a1.Enrollment.ID)
	require.NoError(t, err)

	all, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, e := range all {
		assert.Equal(t, alice.ID, e.UserID)
		assert.Equal(t, "alice", e.UserName)
		require.NotNil(t, e.Workshop)
		assert.Equal(t, "frontend", e.Workshop.CategoryName)
	}

	active, err := repo.ListByUser(ctx, alice.ID, models.EnrollmentStatusEnrolled)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, w2.ID, active[0].WorkshopID)

	n, err := repo.CountByUser(ctx, alice.ID, models.EnrollmentStatusEnrolled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetForUser(ctx, bob.ID, a1.Enrollment.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
