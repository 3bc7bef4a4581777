package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"gorm.io/gorm"
)

// AuthorHandler serves author profiles to the public site.
type AuthorHandler struct {
	db *gorm.DB
}

// NewAuthorHandler constructs an AuthorHandler.
func NewAuthorHandler(db *gorm.DB) *AuthorHandler {
	return &AuthorHandler{db: db}
}

// List returns all authors.
func (h *AuthorHandler) List(c *gin.Context) {
	var authors []models.Author
	if errFind := h.db.WithContext(c.Request.Context()).Order("name ASC").Find(&authors).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list authors failed"})
		return
	}

	out := make([]gin.H, 0, len(authors))
	for _, author := range authors {
		out = append(out, publicAuthor(author))
	}
	c.JSON(http.StatusOK, gin.H{"authors": out})
}

// Get returns one author with their published posts.
func (h *AuthorHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var author models.Author
	if errFind := h.db.WithContext(c.Request.Context()).First(&author, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var posts []models.Post
	errPosts := h.db.WithContext(c.Request.Context()).
		Where("author_id = ? AND status = ?", author.ID, models.PostStatusPublished).
		Order("published_at DESC").
		Find(&posts).Error
	if errPosts != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	out := publicAuthor(author)
	out["posts"] = summaries(posts)
	c.JSON(http.StatusOK, gin.H{"author": out})
}

// publicAuthor shapes an author profile without contact details.
func publicAuthor(author models.Author) gin.H {
	out := gin.H{
		"id":     author.ID,
		"name":   author.Name,
		"avatar": author.Avatar,
		"bio":    author.Bio,
	}
	if len(author.Social) > 0 {
		out["social"] = json.RawMessage(author.Social)
	}
	return out
}
