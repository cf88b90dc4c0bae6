package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-certified-backend/internal/domain"
)

// CreatePublishedArtifact inserts an artifact metadata record.
func CreatePublishedArtifact(ctx context.Context, db *gorm.DB, rec *domain.PublishedArtifact) error {
	return db.WithContext(ctx).Create(rec).Error
}

// GetPublishedArtifact fetches an artifact record by ID, or ErrNotFound.
func GetPublishedArtifact(ctx context.Context, db *gorm.DB, id string) (*domain.PublishedArtifact, error) {
	var rec domain.PublishedArtifact
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestArtifactForItem returns the most recently created artifact record
// for an item, or ErrNotFound when the item was never published.
func LatestArtifactForItem(ctx context.Context, db *gorm.DB, itemID string) (*domain.PublishedArtifact, error) {
	var rec domain.PublishedArtifact
	err := db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at desc").
		Order("id desc").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListArtifactsForItem returns the publish history of an item, newest first.
func ListArtifactsForItem(ctx context.Context, db *gorm.DB, itemID string) ([]domain.PublishedArtifact, error) {
	var out []domain.PublishedArtifact
	err := db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}
