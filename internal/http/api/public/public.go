// Package public wires the unauthenticated read API consumed by the blog
// front end.
package public

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/http/api/public/handlers"
	"github.com/inkpress/inkpress/internal/stats"
	"gorm.io/gorm"
)

// RegisterPublicRoutes registers the read-only public API under /api.
func RegisterPublicRoutes(r *gin.Engine, db *gorm.DB, views *stats.Recorder) {
	if r == nil || db == nil {
		return
	}

	api := r.Group("/api")

	postHandler := handlers.NewPostHandler(db, views)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/featured", postHandler.Featured)
	api.GET("/posts/:slug", postHandler.Get)

	authorHandler := handlers.NewAuthorHandler(db)
	api.GET("/authors", authorHandler.List)
	api.GET("/authors/:id", authorHandler.Get)

	tagHandler := handlers.NewTagHandler(db)
	api.GET("/tags", tagHandler.List)

	api.GET("/config", handlers.GetSiteConfig)
}
