package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workshophub/internal/middleware"
	"workshophub/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const revokedKeyPrefix = "auth:revoked:%s"

// TokenRevocationStore records session token IDs (jti) that were logged out early.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRevocationStore struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewTokenRevocationStore returns a store backed by the revoked_tokens table. When rdb
// is non-nil revocations are mirrored into Redis with the token's remaining lifetime
// and a Redis hit short-circuits the table lookup.
func NewTokenRevocationStore(db *gorm.DB, rdb *redis.Client) TokenRevocationStore {
	return &tokenRevocationStore{db: db, rdb: rdb}
}

func revokedKey(jti string) string {
	return fmt.Sprintf(revokedKeyPrefix, jti)
}

func (s *tokenRevocationStore) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	row := &models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return models.NewInternalError(err)
	}

	if s.rdb != nil {
		ttl := time.Until(expiresAt)
		if ttl > 0 {
			if err := s.rdb.Set(ctx, revokedKey(jti), userID, ttl).Err(); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to mirror token revocation to redis", slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

// IsRevoked treats a Redis hit as final. On a miss the table decides, and a row found
// there re-warms the key.
func (s *tokenRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb != nil {
		n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
		switch {
		case err != nil:
			middleware.Logger.WarnContext(ctx, "redis revocation lookup failed, using database", slog.String("error", err.Error()))
		case n > 0:
			return true, nil
		}
	}

	var row models.RevokedToken
	err := s.db.WithContext(ctx).Where("jti = ?", jti).Limit(1).Find(&row).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if row.JTI == "" {
		return false, nil
	}

	if s.rdb != nil {
		if ttl := time.Until(row.ExpiresAt); ttl > 0 {
			if err := s.rdb.Set(ctx, revokedKey(jti), row.UserID, ttl).Err(); err != nil {
				middleware.Logger.DebugContext(ctx, "failed to re-mirror token revocation", slog.String("error", err.Error()))
			}
		}
	}
	return true, nil
}

// DeleteExpired drops revocation rows whose token would have expired anyway.
func (s *tokenRevocationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
