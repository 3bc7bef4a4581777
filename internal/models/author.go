package models

import (
	"time"

	"gorm.io/datatypes"
)

// Author represents a blog author profile.
type Author struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name   string `gorm:"type:text;not null"`             // Display name.
	Email  string `gorm:"type:text;not null;uniqueIndex"` // Contact email, unique.
	Avatar string `gorm:"type:text"`                      // Avatar image URL.
	Bio    string `gorm:"type:text"`                      // Short biography.

	Social datatypes.JSON `gorm:"type:jsonb"` // Social profile links keyed by platform.

	Posts []Post `gorm:"foreignKey:AuthorID"` // Posts written by this author.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
