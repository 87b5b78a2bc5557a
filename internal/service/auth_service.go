package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workshophub/internal/featureflags"
	"workshophub/internal/mailer"
	"workshophub/internal/middleware"
	"workshophub/internal/models"
	"workshophub/internal/observability"
	"workshophub/internal/repository"
	"workshophub/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgResetMismatch      = "Username and email do not match. Please try again."
	msgResetVerified      = "Username and email verified! You can now reset your password."
	msgResetEmailed       = "Username and email verified! Check your email for the reset token."
)

type AuthService struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	mail     mailer.Mailer
	flags    *featureflags.Manager
	resetTTL time.Duration
	now      func() time.Time
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RequestResetInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ResetPasswordInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetRequestResult is returned after a successful reset request. Token is empty
// when in-band token delivery is switched off.
type ResetRequestResult struct {
	Message   string `json:"message"`
	Token     string `json:"token,omitempty"`
	ExpiresIn string `json:"expires_in"`
}

func NewAuthService(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
	mail mailer.Mailer,
	flags *featureflags.Manager,
	resetTTL time.Duration,
) *AuthService {
	if resetTTL <= 0 {
		resetTTL = models.DefaultResetTTL
	}
	return &AuthService{
		users:    users,
		resets:   resets,
		mail:     mail,
		flags:    flags,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// Register creates the account and its empty profile.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(ctx, in); err != nil {
		observability.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return nil, err
	}
	if err := validation.Password(in.Password); err != nil {
		observability.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		observability.AuthAttempts.WithLabelValues("register", outcomeOf(err)).Inc()
		return nil, err
	}
	observability.AuthAttempts.WithLabelValues("register", "success").Inc()
	return user, nil
}

// Login checks username and password. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("Please provide both username and password")
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.AuthAttempts.WithLabelValues("login", "unauthorized").Inc()
			return nil, models.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		observability.AuthAttempts.WithLabelValues("login", "unauthorized").Inc()
		return nil, models.NewUnauthorizedError(msgInvalidCredentials)
	}
	observability.AuthAttempts.WithLabelValues("login", "success").Inc()
	return user, nil
}

// RequestPasswordReset verifies that username and email belong to the same account,
// invalidates the account's outstanding tokens and issues a fresh one.
func (s *AuthService) RequestPasswordReset(ctx context.Context, in RequestResetInput) (*ResetRequestResult, error) {
	span, ctx := observability.NewSpan(ctx, "auth.request_password_reset")
	defer span.End()

	if in.Username == "" || in.Email == "" {
		return nil, models.NewValidationError("Both username and email are required")
	}

	user, err := s.users.GetByUsernameAndEmail(ctx, in.Username, in.Email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.PasswordResetEvents.WithLabelValues("request", "mismatch").Inc()
			return nil, models.NewValidationError(msgResetMismatch)
		}
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int64("user.id", int64(user.ID)))

	reset, err := s.resets.Issue(ctx, user.ID, s.resetTTL)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.PasswordResetEvents.WithLabelValues("request", "issued").Inc()

	result := &ResetRequestResult{
		Message:   msgResetVerified,
		ExpiresIn: humanizeTTL(s.resetTTL),
	}
	inBand := s.flags.On(featureflags.ResetTokenInResponse)
	if inBand {
		result.Token = reset.Token.String()
	}

	if s.mail != nil && s.flags.On(featureflags.ResetTokenEmail) {
		err := s.mail.SendPasswordReset(ctx, mailer.ResetMessage{
			ToName:    strings.TrimSpace(user.FirstName + " " + user.LastName),
			ToAddress: user.Email,
			Token:     reset.Token.String(),
			ExpiresIn: result.ExpiresIn,
		})
		switch {
		case err != nil && !inBand:
			span.SetError(err)
			return nil, models.NewInternalError(err)
		case err != nil:
			middleware.Logger.WarnContext(ctx, "failed to mail password reset token", "user_id", user.ID, "error", err)
		case !inBand:
			result.Message = msgResetEmailed
		}
	}
	return result, nil
}

// ResetPassword redeems a token and sets a new password. The password rule is checked
// before the token is looked at, so a rejected password never touches token state.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "auth.reset_password")
	defer span.End()

	if in.Token == "" || in.NewPassword == "" {
		return nil, models.NewValidationError("Token and new password are required")
	}
	if err := validation.Password(in.NewPassword); err != nil {
		return nil, err
	}

	token, err := uuid.Parse(strings.TrimSpace(in.Token))
	if err != nil {
		observability.PasswordResetEvents.WithLabelValues("redeem", models.TokenReasonInvalid).Inc()
		return nil, models.NewResetTokenError(models.TokenReasonInvalid)
	}

	// Fail fast on dead tokens without paying for a bcrypt hash. Redeem re-checks
	// under the conditional update.
	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		observability.PasswordResetEvents.WithLabelValues("redeem", redeemOutcome(err)).Inc()
		return nil, err
	}
	if reason := reset.InvalidReason(s.now()); reason != "" {
		observability.PasswordResetEvents.WithLabelValues("redeem", reason).Inc()
		return nil, models.NewResetTokenError(reason)
	}

	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return nil, err
	}
	user, err := s.resets.Redeem(ctx, token, hash, s.now())
	if err != nil {
		observability.PasswordResetEvents.WithLabelValues("redeem", redeemOutcome(err)).Inc()
		span.SetError(err)
		return nil, err
	}
	observability.PasswordResetEvents.WithLabelValues("redeem", "success").Inc()
	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.NewValidationError("Password is too long")
		}
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

// humanizeTTL renders whole hours or days the way users read them, e.g. "24 hours".
func humanizeTTL(d time.Duration) string {
	hours := int(d / time.Hour)
	switch {
	case hours <= 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	case hours == 1:
		return "1 hour"
	default:
		return fmt.Sprintf("%d hours", hours)
	}
}

func redeemOutcome(err error) string {
	if models.IsCode(err, models.CodeTokenInvalid) {
		return models.ErrorReason(err)
	}
	return "error"
}

func outcomeOf(err error) string {
	switch models.ErrorCode(err) {
	case models.CodeConflict:
		return "conflict"
	case models.CodeValidation:
		return "invalid"
	default:
		return "error"
	}
}
