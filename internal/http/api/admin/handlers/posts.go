package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/util"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PostHandler manages post endpoints in the admin API.
type PostHandler struct {
	db *gorm.DB
}

// NewPostHandler constructs a PostHandler.
func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{db: db}
}

// blockPayload defines one content block in a post request.
type blockPayload struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Alt      string `json:"alt"`
	Language string `json:"language"`
}

// postRequest defines the request body for creating or updating a post.
type postRequest struct {
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Summary       string          `json:"summary"`
	Image         string          `json:"image"`
	Status        string          `json:"status"`
	Category      string          `json:"category"`
	ReadTime      *int            `json:"read_time"`
	Featured      bool            `json:"featured"`
	AuthorID      *uint64         `json:"author_id"`
	Meta          json.RawMessage `json:"meta"`
	TagIDs        []uint64        `json:"tag_ids"`
	ContentBlocks []blockPayload  `json:"content_blocks"`
}

// validate checks required fields and block types.
func (r postRequest) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "missing title"
	}
	if strings.TrimSpace(r.Summary) == "" {
		return "missing summary"
	}
	if strings.TrimSpace(r.Image) == "" {
		return "missing image"
	}
	if r.Status != "" && r.Status != models.PostStatusDraft && r.Status != models.PostStatusPublished {
		return "invalid status"
	}
	for _, block := range r.ContentBlocks {
		if !models.ValidBlockType(block.Type) {
			return "invalid content block type: " + block.Type
		}
		if strings.TrimSpace(block.Content) == "" {
			return "content block body is required"
		}
	}
	return ""
}

// Create creates a post with its content blocks and tag associations.
func (h *PostHandler) Create(c *gin.Context) {
	var body postRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if msg := body.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	status := body.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	slug := strings.TrimSpace(body.Slug)
	if slug == "" {
		slug = util.Slugify(body.Title)
	}
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing slug"})
		return
	}

	tags, errTags := h.loadTags(c, body.TagIDs)
	if errTags != nil {
		return
	}

	now := time.Now().UTC()
	post := models.Post{
		Slug:      slug,
		Title:     strings.TrimSpace(body.Title),
		Summary:   strings.TrimSpace(body.Summary),
		Image:     strings.TrimSpace(body.Image),
		Status:    status,
		Category:  strings.TrimSpace(body.Category),
		ReadTime:  body.ReadTime,
		Featured:  body.Featured,
		AuthorID:  body.AuthorID,
		Meta:      datatypes.JSON(body.Meta),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == models.PostStatusPublished {
		post.PublishedAt = &now
	}
	if post.ReadTime == nil {
		if estimate := estimateReadTime(body.ContentBlocks); estimate > 0 {
			post.ReadTime = &estimate
		}
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Omit("Tags", "ContentBlocks").Create(&post).Error; errCreate != nil {
			return errCreate
		}
		if len(tags) > 0 {
			if errTags := tx.Model(&post).Association("Tags").Replace(tags); errTags != nil {
				return errTags
			}
		}
		return replaceContentBlocks(tx, post.ID, body.ContentBlocks)
	})
	if errTx != nil {
		if isDuplicateKey(errTx) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create post failed"})
		return
	}

	created, errLoad := h.loadPost(c, post.ID)
	if errLoad != nil {
		return
	}
	c.JSON(http.StatusCreated, postResponse(created, true))
}

// List returns posts with optional status, author, tag and search filters.
func (h *PostHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Post{}).
		Preload("Author").
		Preload("Tags")

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if authorID := strings.TrimSpace(c.Query("author_id")); authorID != "" {
		if id, errParse := strconv.ParseUint(authorID, 10, 64); errParse == nil {
			q = q.Where("author_id = ?", id)
		}
	}
	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		q = q.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", tag)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "posts.title"), pattern)
	}

	var posts []models.Post
	if errFind := q.Order("posts.created_at DESC").Find(&posts).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list posts failed"})
		return
	}

	out := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		out = append(out, postResponse(post, false))
	}
	c.JSON(http.StatusOK, gin.H{"posts": out})
}

// Get returns one post with author, tags and ordered content blocks.
func (h *PostHandler) Get(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
		return
	}
	post, errLoad := h.loadPost(c, id)
	if errLoad != nil {
		return
	}
	c.JSON(http.StatusOK, postResponse(post, true))
}

// Update replaces a post's fields, content blocks and tag associations.
func (h *PostHandler) Update(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
		return
	}

	var body postRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if msg := body.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var post models.Post
	if errFind := h.db.WithContext(c.Request.Context()).First(&post, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	tags, errTags := h.loadTags(c, body.TagIDs)
	if errTags != nil {
		return
	}

	status := body.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	slug := strings.TrimSpace(body.Slug)
	if slug == "" {
		slug = util.Slugify(body.Title)
	}

	now := time.Now().UTC()
	post.Slug = slug
	post.Title = strings.TrimSpace(body.Title)
	post.Summary = strings.TrimSpace(body.Summary)
	post.Image = strings.TrimSpace(body.Image)
	post.Category = strings.TrimSpace(body.Category)
	post.ReadTime = body.ReadTime
	post.Featured = body.Featured
	post.AuthorID = body.AuthorID
	post.Meta = datatypes.JSON(body.Meta)
	post.UpdatedAt = now
	if status == models.PostStatusPublished && post.Status != models.PostStatusPublished {
		post.PublishedAt = &now
	}
	post.Status = status

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errSave := tx.Omit("Tags", "ContentBlocks", "Author").Save(&post).Error; errSave != nil {
			return errSave
		}
		if errReplace := tx.Model(&post).Association("Tags").Replace(tags); errReplace != nil {
			return errReplace
		}
		if errBlocks := tx.Where("post_id = ?", post.ID).Delete(&models.ContentBlock{}).Error; errBlocks != nil {
			return errBlocks
		}
		return replaceContentBlocks(tx, post.ID, body.ContentBlocks)
	})
	if errTx != nil {
		if isDuplicateKey(errTx) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update post failed"})
		return
	}

	updated, errLoad := h.loadPost(c, post.ID)
	if errLoad != nil {
		return
	}
	c.JSON(http.StatusOK, postResponse(updated, true))
}

// SetStatus publishes or unpublishes a post.
func (h *PostHandler) SetStatus(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, okID := parseIDParam(c)
		if !okID {
			return
		}

		var post models.Post
		if errFind := h.db.WithContext(c.Request.Context()).First(&post, id).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": status, "updated_at": now}
		if status == models.PostStatusPublished && post.PublishedAt == nil {
			updates["published_at"] = now
		}
		if errUpdate := h.db.WithContext(c.Request.Context()).Model(&post).Updates(updates).Error; errUpdate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update post failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
	}
}

// Delete removes a post and its dependent rows.
func (h *PostHandler) Delete(c *gin.Context) {
	id, okID := parseIDParam(c)
	if !okID {
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if errFind := tx.First(&post, id).Error; errFind != nil {
			return errFind
		}
		if errClear := tx.Model(&post).Association("Tags").Clear(); errClear != nil {
			return errClear
		}
		if errBlocks := tx.Where("post_id = ?", post.ID).Delete(&models.ContentBlock{}).Error; errBlocks != nil {
			return errBlocks
		}
		if errViews := tx.Where("post_id = ?", post.ID).Delete(&models.PostView{}).Error; errViews != nil {
			return errViews
		}
		return tx.Delete(&post).Error
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete post failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// loadPost fetches a post with relations, writing the error response itself.
func (h *PostHandler) loadPost(c *gin.Context, id uint64) (models.Post, error) {
	var post models.Post
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Author").
		Preload("Tags").
		Preload("ContentBlocks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		First(&post, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return models.Post{}, errFind
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Post{}, errFind
	}
	return post, nil
}

// loadTags resolves tag ids, writing the error response itself.
func (h *PostHandler) loadTags(c *gin.Context, ids []uint64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if errFind := h.db.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&tags).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query tags failed"})
		return nil, errFind
	}
	if len(tags) != len(ids) {
		errMissing := errors.New("unknown tag id")
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissing.Error()})
		return nil, errMissing
	}
	return tags, nil
}

// replaceContentBlocks inserts blocks in payload order.
func replaceContentBlocks(tx *gorm.DB, postID uint64, blocks []blockPayload) error {
	for i, block := range blocks {
		row := models.ContentBlock{
			Type:     block.Type,
			Content:  block.Content,
			Alt:      strings.TrimSpace(block.Alt),
			Language: strings.TrimSpace(block.Language),
			Position: i,
			PostID:   postID,
		}
		if errCreate := tx.Create(&row).Error; errCreate != nil {
			return errCreate
		}
	}
	return nil
}

// estimateReadTime derives minutes from textual block content.
func estimateReadTime(blocks []blockPayload) int {
	var text strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case models.BlockTypeText, models.BlockTypeQuote, models.BlockTypeHeading, models.BlockTypeSubheading:
			text.WriteString(block.Content)
			text.WriteByte(' ')
		}
	}
	return util.EstimateReadTime(text.String())
}

// isDuplicateKey detects unique constraint violations across dialects.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// parseIDParam parses the :id route parameter, writing the error response
// itself when it is not a positive integer.
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// postResponse shapes a post for JSON responses.
func postResponse(post models.Post, includeBlocks bool) gin.H {
	out := gin.H{
		"id":           post.ID,
		"slug":         post.Slug,
		"title":        post.Title,
		"summary":      post.Summary,
		"image":        post.Image,
		"status":       post.Status,
		"published_at": post.PublishedAt,
		"category":     post.Category,
		"read_time":    post.ReadTime,
		"featured":     post.Featured,
		"created_at":   post.CreatedAt,
		"updated_at":   post.UpdatedAt,
	}
	if len(post.Meta) > 0 {
		out["meta"] = json.RawMessage(post.Meta)
	}
	if post.Author != nil {
		out["author"] = gin.H{
			"id":     post.Author.ID,
			"name":   post.Author.Name,
			"avatar": post.Author.Avatar,
		}
	}
	tags := make([]gin.H, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, gin.H{"id": tag.ID, "name": tag.Name})
	}
	out["tags"] = tags
	if includeBlocks {
		blocks := make([]gin.H, 0, len(post.ContentBlocks))
		for _, block := range post.ContentBlocks {
			blocks = append(blocks, gin.H{
				"id":       block.ID,
				"type":     block.Type,
				"content":  block.Content,
				"alt":      block.Alt,
				"language": block.Language,
				"position": block.Position,
			})
		}
		out["content_blocks"] = blocks
	}
	return out
}
