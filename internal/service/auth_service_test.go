package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"workshophub/internal/models"
	"workshophub/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegister(username string) RegisterInput {
	return RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "secret1",
		Password2: "secret1",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	user, err := env.auth.Register(ctx, validRegister("ada"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))

	var profiles int64
	require.NoError(t, env.db.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)

	_, err = env.auth.Register(ctx, validRegister("ada"))
	assertAppError(t, err, models.CodeConflict)

	tests := map[string]func(*RegisterInput){
		"short password":    func(in *RegisterInput) { in.Password, in.Password2 = "abc", "abc" },
		"mismatch":          func(in *RegisterInput) { in.Password2 = "secret2" },
		"bad email":         func(in *RegisterInput) { in.Email = "nope" },
		"bad username":      func(in *RegisterInput) { in.Username = "has space" },
		"missing username":  func(in *RegisterInput) { in.Username = "" },
		"missing password2": func(in *RegisterInput) { in.Password2 = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := validRegister("grace")
			mutate(&in)
			_, err := env.auth.Register(ctx, in)
			assertAppError(t, err, models.CodeValidation)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	_, err := env.auth.Register(ctx, validRegister("ada"))
	require.NoError(t, err)

	user, err := env.auth.Login(ctx, LoginInput{Username: "ada", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	_, err = env.auth.Login(ctx, LoginInput{Username: "ada", Password: "wrong!"})
	assertAppError(t, err, models.CodeUnauthorized)
	_, err = env.auth.Login(ctx, LoginInput{Username: "nobody", Password: "secret1"})
	assertAppError(t, err, models.CodeUnauthorized)
	_, err = env.auth.Login(ctx, LoginInput{Username: "ada"})
	assertAppError(t, err, models.CodeValidation)
}

func TestAuthService_RequestResetMismatchIsGeneric(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	testutil.CreateUser(t, env.db, "ada")

	_, errUser := env.auth.RequestPasswordReset(ctx, RequestResetInput{Username: "nobody", Email: "ada@example.com"})
	_, errEmail := env.auth.RequestPasswordReset(ctx, RequestResetInput{Username: "ada", Email: "other@example.com"})
	assertAppError(t, errUser, models.CodeValidation)
	assertAppError(t, errEmail, models.CodeValidation)
	assert.Equal(t, errUser.Error(), errEmail.Error())

	_, err := env.auth.RequestPasswordReset(ctx, RequestResetInput{Username: "ada"})
	assertAppError(t, err, models.CodeValidation)

	var n int64
	require.NoError(t, env.db.Model(&models.PasswordReset{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAuthService_ResetLifecycle(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	_, err := env.auth.Register(ctx, validRegister("ada"))
	require.NoError(t, err)
	req := RequestResetInput{Username: "ada", Email: "ada@example.com"}

	first, err := env.auth.RequestPasswordReset(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "24 hours", first.ExpiresIn)
	require.NotEmpty(t, first.Token)

	second, err := env.auth.RequestPasswordReset(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// the second request invalidated the first token
	_, err = env.auth.ResetPassword(ctx, ResetPasswordInput{Token: first.Token, NewPassword: "newpass1"})
	assertAppError(t, err, models.CodeTokenInvalid)
	assert.Equal(t, models.TokenReasonUsed, models.ErrorReason(err))

	user, err := env.auth.ResetPassword(ctx, ResetPasswordInput{Token: second.Token, NewPassword: "newpass1"})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	_, err = env.auth.ResetPassword(ctx, ResetPasswordInput{Token: second.Token, NewPassword: "another1"})
	assertAppError(t, err, models.CodeTokenInvalid)
	assert.Equal(t, models.TokenReasonUsed, models.ErrorReason(err))

	_, err = env.auth.Login(ctx, LoginInput{Username: "ada", Password: "newpass1"})
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, LoginInput{Username: "ada", Password: "secret1"})
	assertAppError(t, err, models.CodeUnauthorized)
}

func TestAuthService_ShortPasswordLeavesTokenUntouched(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	_, err := env.auth.Register(ctx, validRegister("ada"))
	require.NoError(t, err)

	res, err := env.auth.RequestPasswordReset(ctx, RequestResetInput{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = env.auth.ResetPassword(ctx, ResetPasswordInput{Token: res.Token, NewPassword: "12345"})
	assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, "Password must be at least 6 characters long", err.Error())

	var reset models.PasswordReset
	require.NoError(t, env.db.Where("token = ?", uuid.MustParse(res.Token)).First(&reset).Error)
	assert.False(t, reset.Used)

	// the token still works afterwards
	_, err = env.auth.ResetPassword(ctx, ResetPasswordInput{Token: res.Token, NewPassword: "123456"})
	require.NoError(t, err)
}

func TestAuthService_ResetTokenErrors(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "ada")

	_, err := env.auth.ResetPassword(ctx, ResetPasswordInput{Token: "not-a-uuid", NewPassword: "newpass1"})
	assertAppError(t, err, models.CodeTokenInvalid)
	assert.Equal(t, models.TokenReasonInvalid, models.ErrorReason(err))

	_, err = env.auth.ResetPassword(ctx, ResetPasswordInput{Token: uuid.NewString(), NewPassword: "newpass1"})
	assertAppError(t, err, models.CodeTokenInvalid)
	assert.Equal(t, models.TokenReasonInvalid, models.ErrorReason(err))

	_, err = env.auth.ResetPassword(ctx, ResetPasswordInput{NewPassword: "newpass1"})
	assertAppError(t, err, models.CodeValidation)

	expired := &models.PasswordReset{
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-25 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.db.Create(expired).Error)
	_, err = env.auth.ResetPassword(ctx, ResetPasswordInput{Token: expired.Token.String(), NewPassword: "newpass1"})
	assertAppError(t, err, models.CodeTokenInvalid)
	assert.Equal(t, models.TokenReasonExpired, models.ErrorReason(err))
}

func TestAuthService_ResetDeliveryFlags(t *testing.T) {
	ctx := context.Background()
	req := RequestResetInput{Username: "ada", Email: "ada@example.com"}

	t.Run("email only", func(t *testing.T) {
		env := newTestEnv(t, "reset_token_in_response=off,reset_token_email=on")
		testutil.CreateUser(t, env.db, "ada")

		res, err := env.auth.RequestPasswordReset(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, res.Token)
		assert.Equal(t, msgResetEmailed, res.Message)
		require.Len(t, env.mail.sent, 1)
		assert.Equal(t, "ada@example.com", env.mail.sent[0].ToAddress)
		_, err = uuid.Parse(env.mail.sent[0].Token)
		assert.NoError(t, err)
	})

	t.Run("email failure without in-band token", func(t *testing.T) {
		env := newTestEnv(t, "reset_token_in_response=off,reset_token_email=on")
		env.mail.err = errors.New("smtp down")
		testutil.CreateUser(t, env.db, "ada")

		_, err := env.auth.RequestPasswordReset(ctx, req)
		assertAppError(t, err, models.CodeInternal)
	})

	t.Run("email failure with in-band token", func(t *testing.T) {
		env := newTestEnv(t, "reset_token_email=on")
		env.mail.err = errors.New("smtp down")
		testutil.CreateUser(t, env.db, "ada")

		res, err := env.auth.RequestPasswordReset(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, msgResetVerified, res.Message)
	})

	t.Run("default sends no mail", func(t *testing.T) {
		env := newTestEnv(t, "")
		testutil.CreateUser(t, env.db, "ada")

		_, err := env.auth.RequestPasswordReset(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, env.mail.sent)
	})
}

func TestHumanizeTTL(t *testing.T) {
	assert.Equal(t, "24 hours", humanizeTTL(24*time.Hour))
	assert.Equal(t, "1 hour", humanizeTTL(time.Hour))
	assert.Equal(t, "30 minutes", humanizeTTL(30*time.Minute))
}
