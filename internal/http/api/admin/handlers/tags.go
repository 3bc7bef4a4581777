package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"gorm.io/gorm"
)

// TagHandler manages tag endpoints in the admin API.
type TagHandler struct {
	db *gorm.DB
}

// NewTagHandler constructs a TagHandler.
func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

// tagRequest defines the request body for creating or renaming a tag.
type tagRequest struct {
	Name string `json:"name"`
}

// Create creates a tag.
func (h *TagHandler) Create(c *gin.Context) {
	var body tagRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	tag := models.Tag{Name: name}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&tag).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "tag already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create tag failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": tag.ID, "name": tag.Name})
}

// List returns all tags with their post counts.
func (h *TagHandler) List(c *gin.Context) {
	type row struct {
		ID    uint64
		Name  string
		Total int64
	}
	var rows []row
	errFind := h.db.WithContext(c.Request.Context()).Model(&models.Tag{}).
		Select("tags.id, tags.name, COUNT(post_tags.post_id) AS total").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC").
		Scan(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tags failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{"id": r.ID, "name": r.Name, "post_count": r.Total})
	}
	c.JSON(http.StatusOK, gin.H{"tags": out})
}

// Update renames a tag.
func (h *TagHandler) Update(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
		return
	}

	var body tagRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	var tag models.Tag
	if errFind := h.db.WithContext(c.Request.Context()).First(&tag, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&tag).
		Update("name", name).Error; errUpdate != nil {
		if isDuplicateKey(errUpdate) {
			c.JSON(http.StatusConflict, gin.H{"error": "tag already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update tag failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": tag.ID, "name": name})
}

// Delete removes a tag and its post associations.
func (h *TagHandler) Delete(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if errFind := tx.First(&tag, id).Error; errFind != nil {
			return errFind
		}
		if errClear := tx.Model(&tag).Association("Posts").Clear(); errClear != nil {
			return errClear
		}
		return tx.Delete(&tag).Error
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete tag failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
