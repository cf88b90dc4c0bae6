// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Item model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - When an item is not found, functions return ErrNotFound.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// CreateItem inserts a new unlocked Item with a random UUID.
func CreateItem(ctx context.Context, db *gorm.DB, title, topic string, sourceURL *string) (*domain.Item, error) {
	now := time.Now().UTC()
	it := &domain.Item{
		ID:        uuid.NewString(),
		Title:     title,
		Topic:     topic,
		SourceURL: sourceURL,
		Status:    domain.ItemUnlocked,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, err
	}
	return it, nil
}

// GetItem fetches a single item by ID, or ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, id string) (*domain.Item, error) {
	var it domain.Item
	if err := db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// CountItems returns the total number of items.
func CountItems(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Item{}).Count(&total).Error
	return total, err
}

// ListItemsPage returns a page of items ordered by creation time descending.
func ListItemsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Item, error) {
	var out []domain.Item
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ItemsStats returns the item count and the newest UpdatedAt, which the list
// endpoint folds into its ETag. maxUpdatedAt is nil when there are no items.
func ItemsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if count, err = CountItems(ctx, db); err != nil || count == 0 {
		return count, nil, err
	}
	var latest domain.Item
	if err = db.WithContext(ctx).Select("updated_at").Order("updated_at desc").Take(&latest).Error; err != nil {
		return 0, nil, err
	}
	return count, &latest.UpdatedAt, nil
}

// SetItemLock records a lock and the canonical plan it was computed from and
// moves the item to the locked state.
func SetItemLock(ctx context.Context, db *gorm.DB, id string, lock domain.Lock, planJSON, notes string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"lock_algo":      lock.Algo,
			"lock_hash":      lock.Hash,
			"plan":           planJSON,
			"decision_notes": notes,
			"status":         string(domain.ItemLocked),
			"locked_at":      now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkItemPublished moves an item to the published state.
func MarkItemPublished(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(domain.ItemPublished),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
