package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/stats"
	"gorm.io/gorm"
)

// DashboardHandler serves the admin dashboard summary.
type DashboardHandler struct {
	db    *gorm.DB
	views *stats.Recorder
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB, views *stats.Recorder) *DashboardHandler {
	return &DashboardHandler{db: db, views: views}
}

// Summary returns entity counts, recently edited posts and the most viewed
// posts over the last 30 days.
func (h *DashboardHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	counts := gin.H{}
	countQueries := map[string]*gorm.DB{
		"posts":     h.db.WithContext(ctx).Model(&models.Post{}),
		"published": h.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", models.PostStatusPublished),
		"drafts":    h.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", models.PostStatusDraft),
		"authors":   h.db.WithContext(ctx).Model(&models.Author{}),
		"tags":      h.db.WithContext(ctx).Model(&models.Tag{}),
	}
	for name, q := range countQueries {
		var n int64
		if errCount := q.Count(&n).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
			return
		}
		counts[name] = n
	}

	var recent []models.Post
	if errFind := h.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(5).
		Find(&recent).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}
	recentOut := make([]gin.H, 0, len(recent))
	for _, post := range recent {
		recentOut = append(recentOut, gin.H{
			"id":         post.ID,
			"slug":       post.Slug,
			"title":      post.Title,
			"status":     post.Status,
			"updated_at": post.UpdatedAt,
		})
	}

	top, errTop := h.views.TopPosts(ctx, time.Now().UTC().AddDate(0, 0, -30), 5)
	if errTop != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}
	topOut := make([]gin.H, 0, len(top))
	for _, entry := range top {
		var post models.Post
		if errFind := h.db.WithContext(ctx).
			Select("id, slug, title").
			First(&post, entry.PostID).Error; errFind != nil {
			continue
		}
		topOut = append(topOut, gin.H{
			"id":    post.ID,
			"slug":  post.Slug,
			"title": post.Title,
			"views": entry.Views,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"counts":       counts,
		"recent_posts": recentOut,
		"top_posts":    topOut,
	})
}
