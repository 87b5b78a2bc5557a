package repository

import (
	"context"
	"time"

	"workshophub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PasswordResetRepository defines persistence operations for password-reset tokens.
type PasswordResetRepository interface {
	Issue(ctx context.Context, userID uint, ttl time.Duration) (*models.PasswordReset, error)
	GetByToken(ctx context.Context, token uuid.UUID) (*models.PasswordReset, error)
	Redeem(ctx context.Context, token uuid.UUID, passwordHash string, now time.Time) (*models.User, error)
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository returns a new PasswordResetRepository implementation.
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

// Issue marks every unused token of the user as used and creates a fresh one, atomically.
// The user row is locked first so concurrent requests for one user are serialized and
// at most one live token exists per user afterwards.
func (r *passwordResetRepository) Issue(ctx context.Context, userID uint, ttl time.Duration) (*models.PasswordReset, error) {
	now := time.Now()
	reset := &models.PasswordReset{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&user, userID).Error
		if err != nil {
			return translate(err, "User", userID)
		}

		err = tx.Model(&models.PasswordReset{}).
			Where("user_id = ? AND used = ?", userID, false).
			Update("used", true).Error
		if err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Create(reset).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reset, nil
}

// GetByToken looks up a token; a missing token is TOKEN_INVALID, not NOT_FOUND.
func (r *passwordResetRepository) GetByToken(ctx context.Context, token uuid.UUID) (*models.PasswordReset, error) {
	return findResetToken(r.db.WithContext(ctx), token)
}

func findResetToken(db *gorm.DB, token uuid.UUID) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	if err := db.Where("token = ?", token).First(&reset).Error; err != nil {
		translated := translate(err, "PasswordReset", token)
		if models.IsCode(translated, models.CodeNotFound) {
			return nil, models.NewResetTokenError(models.TokenReasonInvalid)
		}
		return nil, translated
	}
	return &reset, nil
}

// Redeem validates the token, marks it used and replaces the user's password hash in
// one transaction. The used flag is flipped with a conditional update, so of two
// concurrent redemptions exactly one succeeds and the other reports "already used".
func (r *passwordResetRepository) Redeem(ctx context.Context, token uuid.UUID, passwordHash string, now time.Time) (*models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reset, err := findResetToken(tx, token)
		if err != nil {
			return err
		}
		if reason := reset.InvalidReason(now); reason != "" {
			return models.NewResetTokenError(reason)
		}

		res := tx.Model(&models.PasswordReset{}).
			Where("id = ? AND used = ?", reset.ID, false).
			Update("used", true)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewResetTokenError(models.TokenReasonUsed)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).Update("password", passwordHash).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.First(&user, reset.UserID).Error; err != nil {
			return translate(err, "User", reset.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteStale removes tokens that expired before cutoff, and used tokens created before cutoff.
func (r *passwordResetRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (used = ? AND created_at < ?)", cutoff, true, cutoff).
		Delete(&models.PasswordReset{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
