package handlers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	httpx "github.com/inkpress/inkpress/internal/http"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/settings"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// MFAHandler manages the optional TOTP second factor for admin accounts.
type MFAHandler struct {
	db *gorm.DB
}

// NewMFAHandler constructs an MFAHandler.
func NewMFAHandler(db *gorm.DB) *MFAHandler {
	return &MFAHandler{db: db}
}

// pendingSecretTTL bounds how long an unconfirmed TOTP secret stays valid.
const pendingSecretTTL = 10 * time.Minute

// secretEntry stores a TOTP secret with expiry.
type secretEntry struct {
	secret    string
	expiresAt time.Time
}

// secretStore keeps temporary TOTP secrets in memory between prepare and
// confirm.
type secretStore struct {
	mu      sync.Mutex
	entries map[string]secretEntry
}

func newSecretStore() *secretStore {
	return &secretStore{entries: map[string]secretEntry{}}
}

func (s *secretStore) Set(key, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = secretEntry{secret: secret, expiresAt: time.Now().Add(pendingSecretTTL)}
}

func (s *secretStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return entry.secret, true
}

func (s *secretStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// totpPendingSecrets stores pending TOTP secrets for confirmation.
var totpPendingSecrets = newSecretStore()

// Status reports whether TOTP is enabled for the current admin.
func (h *MFAHandler) Status(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"totp_enabled": strings.TrimSpace(admin.TOTPSecret) != ""})
}

// PrepareTOTP generates a new TOTP secret and QR code for enrollment.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      settings.SiteName(),
		AccountName: admin.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate totp secret failed"})
		return
	}

	totpPendingSecrets.Set(fmt.Sprintf("%d", admin.ID), key.Secret())
	qrImage := ""
	if img, errImage := key.Image(220, 220); errImage == nil {
		var buf bytes.Buffer
		if errEncode := png.Encode(&buf, img); errEncode == nil {
			qrImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"secret":      key.Secret(),
		"otpauth_url": key.URL(),
		"qr_image":    qrImage,
	})
}

// totpConfirmRequest defines the request body for confirming TOTP.
type totpConfirmRequest struct {
	Code string `json:"code"`
}

// ConfirmTOTP validates the first code and enables TOTP for the admin.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	var body totpConfirmRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	code := strings.TrimSpace(body.Code)
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	secret, ok := totpPendingSecrets.Get(fmt.Sprintf("%d", admin.ID))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp setup expired"})
		return
	}
	if !totp.Validate(code, secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.AdminUser{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": secret, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	totpPendingSecrets.Delete(fmt.Sprintf("%d", admin.ID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DisableTOTP removes the admin's TOTP secret.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.AdminUser{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": "", "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	totpPendingSecrets.Delete(fmt.Sprintf("%d", admin.ID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// currentAdmin loads the gate-authenticated admin, writing the error response
// itself when that fails.
func (h *MFAHandler) currentAdmin(c *gin.Context) (models.AdminUser, bool) {
	adminID, okID := httpx.AdminIDFromContext(c)
	if !okID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return models.AdminUser{}, false
	}

	var admin models.AdminUser
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, adminID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return models.AdminUser{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.AdminUser{}, false
	}
	return admin, true
}
