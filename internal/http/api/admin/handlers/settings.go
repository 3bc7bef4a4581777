package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingHandler manages site settings in the admin API.
type SettingHandler struct {
	db *gorm.DB
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

// Get returns all stored settings with defaults filled in.
func (h *SettingHandler) Get(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}

	out := gin.H{
		settings.SiteNameKey:        settings.DefaultSiteName,
		settings.SiteDescriptionKey: settings.DefaultSiteDescription,
		settings.PostsPerPageKey:    settings.DefaultPostsPerPage,
		settings.FeaturedLimitKey:   settings.DefaultFeaturedLimit,
	}
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	c.JSON(http.StatusOK, gin.H{"settings": out, "updated_at": settings.UpdatedAt()})
}

// Update upserts the submitted settings and refreshes the in-memory snapshot.
func (h *SettingHandler) Update(c *gin.Context) {
	var body map[string]json.RawMessage
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}

	now := time.Now().UTC()
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for key, value := range body {
			row := models.Setting{Key: key, Value: value, UpdatedAt: now}
			errUpsert := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if errUpsert != nil {
				return errUpsert
			}
		}
		return nil
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save settings failed"})
		return
	}

	if errRefresh := settings.Refresh(c.Request.Context(), h.db); errRefresh != nil {
		log.WithError(errRefresh).Warn("settings snapshot refresh failed")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
