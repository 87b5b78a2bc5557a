package service

import (
	"context"
	"testing"

	"workshophub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_RegisterEnrollReview(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	cat := testutil.CreateCategory(t, env.db, "web-development")
	w := testutil.CreateWorkshop(t, env.db, cat.ID, "reactjs-workshop", 30)
	assert.Equal(t, int64(0), env.workshop(t, "reactjs-workshop", 0).EnrolledCount)

	_, err := env.auth.Register(ctx, validRegister("usera"))
	require.NoError(t, err)
	user, err := env.auth.Login(ctx, LoginInput{Username: "usera", Password: "secret1"})
	require.NoError(t, err)

	_, err = env.enrollments.Enroll(ctx, EnrollInput{UserID: user.ID, WorkshopID: w.ID})
	require.NoError(t, err)
	got := env.workshop(t, "reactjs-workshop", user.ID)
	assert.Equal(t, int64(1), got.EnrolledCount)
	assert.False(t, got.IsFull)
	assert.True(t, got.IsEnrolled)

	_, err = env.reviews.CreateReview(ctx, CreateReviewInput{UserID: user.ID, WorkshopID: w.ID, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, env.workshop(t, "reactjs-workshop", 0).AverageRating)
}
