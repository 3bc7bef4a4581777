package models

// Tag labels posts; the association to posts is many-to-many via post_tags.
type Tag struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`       // Primary key.
	Name string `gorm:"type:text;not null;uniqueIndex"` // Unique tag name.

	Posts []Post `gorm:"many2many:post_tags"` // Posts carrying this tag.
}
