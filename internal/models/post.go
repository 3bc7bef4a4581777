package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post status values.
const (
	// PostStatusDraft marks a post that is not publicly visible.
	PostStatusDraft = "draft"
	// PostStatusPublished marks a post visible on the public site.
	PostStatusPublished = "published"
)

// Post represents a blog post with its relations.
type Post struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Slug    string `gorm:"type:text;not null;uniqueIndex"`      // URL slug, unique.
	Title   string `gorm:"type:text;not null"`                  // Post title.
	Summary string `gorm:"type:text;not null"`                  // Short summary shown in listings.
	Image   string `gorm:"type:text;not null"`                  // Cover image URL.
	Status  string `gorm:"type:text;not null;default:draft"`    // draft or published.

	PublishedAt *time.Time `gorm:"index"`     // Set when the post is first published.
	Category    string     `gorm:"type:text"` // Optional category label.
	ReadTime    *int       ``                 // Estimated reading time in minutes.
	Featured    bool       `gorm:"not null;default:false"` // Highlighted on the landing page.

	AuthorID *uint64 `gorm:"index"`                // Optional author reference.
	Author   *Author `gorm:"foreignKey:AuthorID"`  // Author relation.

	Meta datatypes.JSON `gorm:"type:jsonb"` // Open Graph / SEO metadata.

	Tags          []Tag          `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"` // Tag associations.
	ContentBlocks []ContentBlock `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`   // Ordered body blocks.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsPublished reports whether the post is publicly visible.
func (p Post) IsPublished() bool { return p.Status == PostStatusPublished }
