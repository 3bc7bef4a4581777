package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	dbutil "github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/settings"
	"github.com/inkpress/inkpress/internal/stats"
	"gorm.io/gorm"
)

// PostHandler serves published posts to the public site.
type PostHandler struct {
	db    *gorm.DB
	views *stats.Recorder
}

// NewPostHandler constructs a PostHandler.
func NewPostHandler(db *gorm.DB, views *stats.Recorder) *PostHandler {
	return &PostHandler{db: db, views: views}
}

// published scopes a query to publicly visible posts.
func published(q *gorm.DB) *gorm.DB {
	return q.Where("status = ?", models.PostStatusPublished)
}

// List returns published posts, newest first, with optional tag, category
// and search filters. Page size comes from site settings.
func (h *PostHandler) List(c *gin.Context) {
	perPage := settings.PostsPerPage()
	page := 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if n, errParse := strconv.Atoi(raw); errParse == nil && n > 0 {
			page = n
		}
	}

	q := published(h.db.WithContext(c.Request.Context()).Model(&models.Post{})).
		Preload("Author").
		Preload("Tags")

	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		q = q.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", tag)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		q = q.Where("category = ?", category)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "posts.title"), pattern)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list posts failed"})
		return
	}

	var posts []models.Post
	errFind := q.Order("published_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&posts).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list posts failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":    summaries(posts),
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// Featured returns the featured published posts for the landing page.
func (h *PostHandler) Featured(c *gin.Context) {
	var posts []models.Post
	errFind := published(h.db.WithContext(c.Request.Context()).Model(&models.Post{})).
		Preload("Author").
		Preload("Tags").
		Where("featured = ?", true).
		Order("published_at DESC").
		Limit(settings.FeaturedLimit()).
		Find(&posts).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list posts failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": summaries(posts)})
}

// Get returns one published post by slug with its full content, and records
// a view asynchronously.
func (h *PostHandler) Get(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing slug"})
		return
	}

	var post models.Post
	errFind := published(h.db.WithContext(c.Request.Context())).
		Preload("Author").
		Preload("Tags").
		Preload("ContentBlocks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("slug = ?", slug).
		First(&post).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	h.views.RecordAsync(post.ID)

	blocks := make([]gin.H, 0, len(post.ContentBlocks))
	for _, block := range post.ContentBlocks {
		blocks = append(blocks, gin.H{
			"type":     block.Type,
			"content":  block.Content,
			"alt":      block.Alt,
			"language": block.Language,
		})
	}
	out := summary(post)
	out["content_blocks"] = blocks
	c.JSON(http.StatusOK, gin.H{"post": out})
}

// summaries shapes a post list for public responses.
func summaries(posts []models.Post) []gin.H {
	out := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		out = append(out, summary(post))
	}
	return out
}

// summary shapes one post without its content blocks.
func summary(post models.Post) gin.H {
	out := gin.H{
		"slug":         post.Slug,
		"title":        post.Title,
		"summary":      post.Summary,
		"image":        post.Image,
		"category":     post.Category,
		"read_time":    post.ReadTime,
		"featured":     post.Featured,
		"published_at": post.PublishedAt,
	}
	if post.Author != nil {
		out["author"] = gin.H{
			"name":   post.Author.Name,
			"avatar": post.Author.Avatar,
		}
	}
	tags := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, tag.Name)
	}
	out["tags"] = tags
	return out
}
