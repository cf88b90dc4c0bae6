// Package domain defines the persistence models and pipeline value types
// shared by the repository, service, and transport layers.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// ItemStatus is the publish lifecycle state of an item.
type ItemStatus string

const (
	ItemUnlocked  ItemStatus = "unlocked"
	ItemLocked    ItemStatus = "locked"
	ItemPublished ItemStatus = "published"
)

// Item is a unit of content that can be locked to a plan and published.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Title / Topic: operator-facing label and the topic proposers plan for.
//   - SourceURL: optional origin copied into every artifact.
//   - LockAlgo / LockHash: identity of the locked plan; nil while unlocked.
//   - Plan: canonical JSON of the locked plan.
//   - DecisionNotes: checker notes recorded when the lock came from the pipeline.
//   - Status: unlocked, locked, or published.
type Item struct {
	ID            string         `json:"id"                      gorm:"type:char(36);primaryKey"`
	Title         string         `json:"title"                   gorm:"type:varchar(255);not null"`
	Topic         string         `json:"topic"                   gorm:"type:varchar(255);not null"`
	SourceURL     *string        `json:"sourceUrl,omitempty"     gorm:"type:text"`
	LockAlgo      *string        `json:"lockAlgo,omitempty"      gorm:"type:varchar(16)"`
	LockHash      *string        `json:"lockHash,omitempty"      gorm:"type:char(64);index"`
	Plan          string         `json:"-"                       gorm:"type:text"`
	DecisionNotes string         `json:"decisionNotes,omitempty" gorm:"type:text"`
	Status        ItemStatus     `json:"status"                  gorm:"type:varchar(16);not null;default:'unlocked';check:status IN ('unlocked','locked','published')"`
	LockedAt      *time.Time     `json:"lockedAt,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-"                       gorm:"index"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// PublishedArtifact is the metadata record of one certified publish. Rows
// are never updated or deleted; republishing adds a row.
type PublishedArtifact struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	ItemID    string    `json:"itemId"    gorm:"type:char(36);not null;index:idx_item_artifacts,priority:1"`
	LockHash  string    `json:"lockHash"  gorm:"type:char(64);not null"`
	SHA256    string    `json:"sha256"    gorm:"type:char(64);not null"`
	Signature string    `json:"signature" gorm:"type:text;not null"`
	Path      string    `json:"path"      gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index:idx_item_artifacts,priority:2"`
}

// TableName returns the database table name for PublishedArtifact.
func (PublishedArtifact) TableName() string { return "published_artifacts" }

// PublishClaim records which artifact currently represents an
// (item, lock hash) pair. The composite primary key is what keeps two
// concurrent publishers from both certifying the same lock.
type PublishClaim struct {
	ItemID     string    `gorm:"type:char(36);primaryKey"`
	LockHash   string    `gorm:"type:char(64);primaryKey"`
	ArtifactID string    `gorm:"type:char(36);not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the database table name for PublishClaim.
func (PublishClaim) TableName() string { return "publish_claims" }
