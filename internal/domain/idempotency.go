package domain

import "time"

// Idempotency remembers the outcome of a publish made with an
// Idempotency-Key. A retry with the same (caller, item, key) before
// ExpiresAt is answered from ArtifactID and Status without signing again.
type Idempotency struct {
	ID         string    `gorm:"type:text;not null;primaryKey"`
	UserID     string    `gorm:"type:text;not null;uniqueIndex:ux_user_item_key,priority:1"`
	ItemID     string    `gorm:"type:text;not null;uniqueIndex:ux_user_item_key,priority:2"`
	Key        string    `gorm:"type:text;not null;uniqueIndex:ux_user_item_key,priority:3"`
	ArtifactID string    `gorm:"type:text;not null"`
	Status     int       `gorm:"not null"` // HTTP status of the original response
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

func (Idempotency) TableName() string { return "idempotency" }
