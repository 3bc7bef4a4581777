package models

import "time"

// PostView accumulates public read counts per post and day.
type PostView struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PostID uint64    `gorm:"not null;uniqueIndex:idx_post_views_post_day"`           // Viewed post.
	Day    time.Time `gorm:"type:date;not null;uniqueIndex:idx_post_views_post_day"` // Day bucket (UTC).
	Count  uint64    `gorm:"not null;default:0"`                                     // Views on that day.
}
