// Package admin wires the authenticated administration API under /admin.
package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/auth"
	httpx "github.com/inkpress/inkpress/internal/http"
	"github.com/inkpress/inkpress/internal/http/api/admin/handlers"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/session"
	"github.com/inkpress/inkpress/internal/stats"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the admin API and page-level auth routes.
// The session gate middleware covers the whole /admin subtree; the public
// exceptions (login, setup and their API endpoints) are handled inside it.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, authService *auth.Service, sessions *session.Manager, views *stats.Recorder) {
	if r == nil || db == nil {
		return
	}

	adminGroup := r.Group(httpx.AdminPrefix)
	adminGroup.Use(httpx.SessionGateMiddleware(sessions))

	authHandler := handlers.NewAuthHandler(db, authService, sessions)
	adminGroup.GET("/logout", authHandler.LogoutPage)

	api := adminGroup.Group("/api")
	api.POST("/login", authHandler.Login)
	api.POST("/setup", authHandler.Setup)
	api.POST("/logout", authHandler.Logout)
	api.GET("/session", authHandler.Session)

	profileHandler := handlers.NewProfileHandler(db, authService, sessions)
	api.PUT("/profile", profileHandler.Update)
	api.PUT("/profile/password", profileHandler.ChangePassword)

	mfaHandler := handlers.NewMFAHandler(db)
	api.GET("/mfa/status", mfaHandler.Status)
	api.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	api.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	api.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	postHandler := handlers.NewPostHandler(db)
	api.GET("/posts", postHandler.List)
	api.POST("/posts", postHandler.Create)
	api.GET("/posts/:id", postHandler.Get)
	api.PUT("/posts/:id", postHandler.Update)
	api.DELETE("/posts/:id", postHandler.Delete)
	api.POST("/posts/:id/publish", postHandler.SetStatus(models.PostStatusPublished))
	api.POST("/posts/:id/unpublish", postHandler.SetStatus(models.PostStatusDraft))

	authorHandler := handlers.NewAuthorHandler(db)
	api.GET("/authors", authorHandler.List)
	api.POST("/authors", authorHandler.Create)
	api.GET("/authors/:id", authorHandler.Get)
	api.PUT("/authors/:id", authorHandler.Update)
	api.DELETE("/authors/:id", authorHandler.Delete)

	tagHandler := handlers.NewTagHandler(db)
	api.GET("/tags", tagHandler.List)
	api.POST("/tags", tagHandler.Create)
	api.PUT("/tags/:id", tagHandler.Update)
	api.DELETE("/tags/:id", tagHandler.Delete)

	dashboardHandler := handlers.NewDashboardHandler(db, views)
	api.GET("/dashboard", dashboardHandler.Summary)

	settingHandler := handlers.NewSettingHandler(db)
	api.GET("/settings", settingHandler.Get)
	api.PUT("/settings", settingHandler.Update)
}
