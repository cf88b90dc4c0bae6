package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// ReplayScope identifies one publish retry key.
type ReplayScope struct {
	UserID string
	ItemID string
	Key    string
}

// FindReplay returns the record for scope that is still live at now, or
// ErrNotFound.
func FindReplay(ctx context.Context, db *gorm.DB, s ReplayScope, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(s.ItemID) == "" || s.Key == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND key = ? AND expires_at > ?", s.UserID, s.ItemID, s.Key, now).
		First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &rec, nil
}

// SaveReplay records the outcome of a publish for scope, live until
// now+ttl. A second save for the same scope returns ErrDuplicate.
func SaveReplay(ctx context.Context, db *gorm.DB, s ReplayScope, artifactID string, status int, now time.Time, ttl time.Duration) (*domain.Idempotency, error) {
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		UserID:     s.UserID,
		ItemID:     s.ItemID,
		Key:        s.Key,
		ArtifactID: artifactID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredReplays deletes records that expired at or before now so a
// reused key can be saved again.
func PurgeExpiredReplays(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
