package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/auth"
	httpx "github.com/inkpress/inkpress/internal/http"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/session"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProfileHandler manages the authenticated admin's own account.
type ProfileHandler struct {
	db       *gorm.DB
	auth     *auth.Service
	sessions *session.Manager
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB, authService *auth.Service, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{db: db, auth: authService, sessions: sessions}
}

// updateProfileRequest defines the request body for profile updates.
type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// Update changes the admin's display name.
func (h *ProfileHandler) Update(c *gin.Context) {
	adminID, okID := httpx.AdminIDFromContext(c)
	if !okID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	displayName := strings.TrimSpace(body.DisplayName)
	if displayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing display_name"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.AdminUser{}).
		Where("id = ?", adminID).
		Update("display_name", displayName).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	var admin models.AdminUser
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, adminID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": adminResponse(admin)})
}

// changePasswordRequest defines the request body for password changes.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password and stores a new hash.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	adminID, okID := httpx.AdminIDFromContext(c)
	if !okID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	current := strings.TrimSpace(body.CurrentPassword)
	next := strings.TrimSpace(body.NewPassword)
	if current == "" || next == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_password and new_password are required"})
		return
	}
	if len(next) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	if errChange := h.auth.ChangePassword(c.Request.Context(), adminID, current, next); errChange != nil {
		if errors.Is(errChange, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	// Retire the token used before the change and hand out a fresh session.
	h.sessions.End(c)
	var admin models.AdminUser
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, adminID).Error; errFind == nil {
		if errEstablish := h.sessions.Establish(c, admin); errEstablish != nil {
			log.WithError(errEstablish).Warn("re-establish session after password change failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
