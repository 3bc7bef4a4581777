package models

import "time"

// Content block types.
const (
	BlockTypeHeading    = "heading"
	BlockTypeSubheading = "subheading"
	BlockTypeText       = "text"
	BlockTypeImage      = "image"
	BlockTypeCode       = "code"
	BlockTypeQuote      = "quote"
)

// ValidBlockType reports whether t is a known content block type.
func ValidBlockType(t string) bool {
	switch t {
	case BlockTypeHeading, BlockTypeSubheading, BlockTypeText, BlockTypeImage, BlockTypeCode, BlockTypeQuote:
		return true
	}
	return false
}

// ContentBlock is one ordered body segment of a post.
type ContentBlock struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Type     string `gorm:"type:text;not null"`        // One of the BlockType constants.
	Content  string `gorm:"type:text;not null"`        // Block body text or URL.
	Alt      string `gorm:"type:text"`                 // Alt text for image blocks.
	Language string `gorm:"type:text"`                 // Language hint for code blocks.
	Position int    `gorm:"not null;default:0;index"`  // Order within the post.

	PostID uint64 `gorm:"not null;index"` // Owning post.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
