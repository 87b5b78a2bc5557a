package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordReset_BeforeCreateDefaults(t *testing.T) {
	p := &PasswordReset{UserID: 1}
	require.NoError(t, p.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, p.Token)
	assert.Equal(t, uuid.Version(4), p.Token.Version())
	assert.Equal(t, DefaultResetTTL, p.ExpiresAt.Sub(p.CreatedAt))
}

func TestPasswordReset_BeforeCreateKeepsExplicitValues(t *testing.T) {
	token := uuid.New()
	expires := time.Now().Add(time.Hour)
	p := &PasswordReset{Token: token, ExpiresAt: expires}
	require.NoError(t, p.BeforeCreate(nil))

	assert.Equal(t, token, p.Token)
	assert.Equal(t, expires, p.ExpiresAt)
}

func TestPasswordReset_Validity(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		reset      PasswordReset
		wantValid  bool
		wantReason string
	}{
		{"fresh", PasswordReset{ExpiresAt: now.Add(time.Hour)}, true, ""},
		{"used", PasswordReset{Used: true, ExpiresAt: now.Add(time.Hour)}, false, TokenReasonUsed},
		{"expired", PasswordReset{ExpiresAt: now.Add(-time.Second)}, false, TokenReasonExpired},
		{"expires exactly now", PasswordReset{ExpiresAt: now}, false, TokenReasonExpired},
		{"used and expired reports used", PasswordReset{Used: true, ExpiresAt: now.Add(-time.Hour)}, false, TokenReasonUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, tt.reset.IsValid(now))
			assert.Equal(t, tt.wantReason, tt.reset.InvalidReason(now))
		})
	}
}
