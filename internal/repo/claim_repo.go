package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// InsertClaim records artifactID as the holder of (itemID, lockHash). It
// returns ErrDuplicate when the pair is already claimed.
func InsertClaim(ctx context.Context, db *gorm.DB, itemID, lockHash, artifactID string) error {
	now := time.Now().UTC()
	c := &domain.PublishClaim{
		ItemID:     itemID,
		LockHash:   lockHash,
		ArtifactID: artifactID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetClaim returns the current holder of (itemID, lockHash), or ErrNotFound.
func GetClaim(ctx context.Context, db *gorm.DB, itemID, lockHash string) (*domain.PublishClaim, error) {
	var c domain.PublishClaim
	err := db.WithContext(ctx).
		Where("item_id = ? AND lock_hash = ?", itemID, lockHash).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SwapClaim hands (itemID, lockHash) from fromID to toID only if fromID still
// holds it. It reports whether the swap happened.
func SwapClaim(ctx context.Context, db *gorm.DB, itemID, lockHash, fromID, toID string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.PublishClaim{}).
		Where("item_id = ? AND lock_hash = ? AND artifact_id = ?", itemID, lockHash, fromID).
		Updates(map[string]any{
			"artifact_id": toID,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
