package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultResetTTL is how long a password-reset token stays usable.
const DefaultResetTTL = 24 * time.Hour

// PasswordReset is a single-use, time-boxed credential recovery token.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_password_resets_user_used" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false;index:idx_password_resets_user_used" json:"used"`
}

// BeforeCreate fills in a random token and the default expiry.
func (p *PasswordReset) BeforeCreate(_ *gorm.DB) error {
	if p.Token == uuid.Nil {
		p.Token = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = p.CreatedAt.Add(DefaultResetTTL)
	}
	return nil
}

// IsValid reports whether the token can still be redeemed at now.
func (p *PasswordReset) IsValid(now time.Time) bool {
	return !p.Used && now.Before(p.ExpiresAt)
}

// InvalidReason returns TokenReasonUsed or TokenReasonExpired for an unusable
// token, or "" when the token is valid. Used takes precedence.
func (p *PasswordReset) InvalidReason(now time.Time) string {
	switch {
	case p.Used:
		return TokenReasonUsed
	case !now.Before(p.ExpiresAt):
		return TokenReasonExpired
	}
	return ""
}

// Messages returned for unusable reset tokens.
const (
	MsgResetTokenInvalid = "Invalid reset token"
	MsgResetTokenUsed    = "This reset link has already been used"
	MsgResetTokenExpired = "This reset link has expired"
)

// NewResetTokenError builds the TOKEN_INVALID error for the given reason.
func NewResetTokenError(reason string) *AppError {
	switch reason {
	case TokenReasonUsed:
		return NewTokenInvalidError(TokenReasonUsed, MsgResetTokenUsed)
	case TokenReasonExpired:
		return NewTokenInvalidError(TokenReasonExpired, MsgResetTokenExpired)
	default:
		return NewTokenInvalidError(TokenReasonInvalid, MsgResetTokenInvalid)
	}
}
