package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/settings"
	"gorm.io/gorm"
)

// TagHandler serves tag listings to the public site.
type TagHandler struct {
	db *gorm.DB
}

// NewTagHandler constructs a TagHandler.
func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

// List returns tags that label at least one published post, with counts.
func (h *TagHandler) List(c *gin.Context) {
	type row struct {
		Name  string
		Total int64
	}
	var rows []row
	errFind := h.db.WithContext(c.Request.Context()).Model(&models.Tag{}).
		Select("tags.name, COUNT(posts.id) AS total").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id AND posts.status = ?", models.PostStatusPublished).
		Group("tags.name").
		Order("tags.name ASC").
		Scan(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tags failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{"name": r.Name, "post_count": r.Total})
	}
	c.JSON(http.StatusOK, gin.H{"tags": out})
}

// GetSiteConfig returns the public subset of site settings.
func GetSiteConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"site_name":        settings.SiteName(),
		"site_description": settings.SiteDescription(),
		"posts_per_page":   settings.PostsPerPage(),
	})
}
