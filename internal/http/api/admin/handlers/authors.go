package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthorHandler manages author endpoints in the admin API.
type AuthorHandler struct {
	db *gorm.DB
}

// NewAuthorHandler constructs an AuthorHandler.
func NewAuthorHandler(db *gorm.DB) *AuthorHandler {
	return &AuthorHandler{db: db}
}

// authorRequest defines the request body for creating or updating an author.
type authorRequest struct {
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Avatar string          `json:"avatar"`
	Bio    string          `json:"bio"`
	Social json.RawMessage `json:"social"`
}

// Create creates an author.
func (h *AuthorHandler) Create(c *gin.Context) {
	var body authorRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if name == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name or email"})
		return
	}

	now := time.Now().UTC()
	author := models.Author{
		Name:      name,
		Email:     email,
		Avatar:    strings.TrimSpace(body.Avatar),
		Bio:       strings.TrimSpace(body.Bio),
		Social:    datatypes.JSON(body.Social),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&author).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "author email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create author failed"})
		return
	}
	c.JSON(http.StatusCreated, authorResponse(author, 0))
}

// List returns all authors with their post counts.
func (h *AuthorHandler) List(c *gin.Context) {
	var authors []models.Author
	if errFind := h.db.WithContext(c.Request.Context()).Order("name ASC").Find(&authors).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list authors failed"})
		return
	}

	counts, errCount := h.postCounts(c)
	if errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list authors failed"})
		return
	}

	out := make([]gin.H, 0, len(authors))
	for _, author := range authors {
		out = append(out, authorResponse(author, counts[author.ID]))
	}
	c.JSON(http.StatusOK, gin.H{"authors": out})
}

// Get returns one author.
func (h *AuthorHandler) Get(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
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

	var count int64
	h.db.WithContext(c.Request.Context()).Model(&models.Post{}).Where("author_id = ?", author.ID).Count(&count)
	c.JSON(http.StatusOK, authorResponse(author, count))
}

// Update replaces an author's fields.
func (h *AuthorHandler) Update(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
		return
	}

	var body authorRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if name == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name or email"})
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

	author.Name = name
	author.Email = email
	author.Avatar = strings.TrimSpace(body.Avatar)
	author.Bio = strings.TrimSpace(body.Bio)
	author.Social = datatypes.JSON(body.Social)
	author.UpdatedAt = time.Now().UTC()
	if errSave := h.db.WithContext(c.Request.Context()).Omit("Posts").Save(&author).Error; errSave != nil {
		if isDuplicateKey(errSave) {
			c.JSON(http.StatusConflict, gin.H{"error": "author email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update author failed"})
		return
	}
	c.JSON(http.StatusOK, authorResponse(author, 0))
}

// Delete removes an author. Deletion is refused while posts still reference
// the author.
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
		return
	}

	var count int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Post{}).
		Where("author_id = ?", id).Count(&count).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "author still has posts"})
		return
	}

	result := h.db.WithContext(c.Request.Context()).Delete(&models.Author{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete author failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// postCounts returns post counts grouped by author id.
func (h *AuthorHandler) postCounts(c *gin.Context) (map[uint64]int64, error) {
	type row struct {
		AuthorID uint64
		Total    int64
	}
	var rows []row
	errFind := h.db.WithContext(c.Request.Context()).Model(&models.Post{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IS NOT NULL").
		Group("author_id").
		Scan(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	counts := make(map[uint64]int64, len(rows))
	for _, r := range rows {
		counts[r.AuthorID] = r.Total
	}
	return counts, nil
}

// authorResponse shapes an author for JSON responses.
func authorResponse(author models.Author, postCount int64) gin.H {
	out := gin.H{
		"id":         author.ID,
		"name":       author.Name,
		"email":      author.Email,
		"avatar":     author.Avatar,
		"bio":        author.Bio,
		"post_count": postCount,
		"created_at": author.CreatedAt,
		"updated_at": author.UpdatedAt,
	}
	if len(author.Social) > 0 {
		out["social"] = json.RawMessage(author.Social)
	}
	return out
}
