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
	"github.com/pquerna/otp/totp"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler handles admin login, logout and first-admin bootstrap.
type AuthHandler struct {
	db       *gorm.DB
	auth     *auth.Service
	sessions *session.Manager
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, authService *auth.Service, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{db: db, auth: authService, sessions: sessions}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// Login authenticates an admin and establishes a session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	email := strings.TrimSpace(body.Email)
	password := strings.TrimSpace(body.Password)
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	admin, errAuth := h.auth.Authenticate(c.Request.Context(), email, password)
	if errAuth != nil {
		if errors.Is(errAuth, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()})
			return
		}
		log.WithError(errAuth).Error("admin login failed against credential store")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure, try again"})
		return
	}

	if strings.TrimSpace(admin.TOTPSecret) != "" {
		code := strings.TrimSpace(body.TOTPCode)
		if code == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "totp code required"})
			return
		}
		if !totp.Validate(code, admin.TOTPSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid totp code"})
			return
		}
	}

	h.respondWithSession(c, http.StatusOK, admin)
}

// Logout clears the session cookie. Safe to call without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.End(c)
	c.JSON(http.StatusOK, gin.H{"ok": true, "redirect": "/admin/login"})
}

// LogoutPage clears the session cookie and redirects to the login page.
func (h *AuthHandler) LogoutPage(c *gin.Context) {
	h.sessions.End(c)
	c.Redirect(http.StatusFound, "/admin/login")
}

// setupRequest defines the request body for first-admin bootstrap.
type setupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Setup creates the first admin account and logs it in. Once any admin
// exists the endpoint answers with a conflict and points at normal login.
func (h *AuthHandler) Setup(c *gin.Context) {
	var body setupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	email := strings.TrimSpace(body.Email)
	password := strings.TrimSpace(body.Password)
	displayName := strings.TrimSpace(body.DisplayName)
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if len(password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	admin, errBootstrap := h.auth.Bootstrap(c.Request.Context(), email, password, displayName)
	if errBootstrap != nil {
		if errors.Is(errBootstrap, auth.ErrAlreadyInitialized) {
			c.JSON(http.StatusConflict, gin.H{"error": "admin account already exists, use login instead"})
			return
		}
		log.WithError(errBootstrap).Error("admin bootstrap failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure, try again"})
		return
	}

	h.respondWithSession(c, http.StatusCreated, admin)
}

// Session returns the authenticated admin for the current session cookie.
func (h *AuthHandler) Session(c *gin.Context) {
	adminID, okID := httpx.AdminIDFromContext(c)
	if !okID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
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

// respondWithSession sets the session cookie and returns the admin info.
func (h *AuthHandler) respondWithSession(c *gin.Context, status int, admin models.AdminUser) {
	if errEstablish := h.sessions.Establish(c, admin); errEstablish != nil {
		log.WithError(errEstablish).Error("establish session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to establish session"})
		return
	}
	c.JSON(status, gin.H{
		"admin":    adminResponse(admin),
		"redirect": "/admin",
	})
}

// adminResponse shapes an admin for JSON responses; the hash never leaves.
func adminResponse(admin models.AdminUser) gin.H {
	return gin.H{
		"id":           admin.ID,
		"email":        admin.Email,
		"display_name": admin.DisplayName,
		"totp_enabled": strings.TrimSpace(admin.TOTPSecret) != "",
		"created_at":   admin.CreatedAt,
	}
}
