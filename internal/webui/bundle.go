// Package webui embeds the built admin panel assets and serves them as a
// single-page application under /admin.
package webui

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// dist embeds the built admin panel assets.
//
//go:embed dist/*
var dist embed.FS

// Bundle exposes the embedded admin panel for serving.
type Bundle struct {
	AssetsFS  http.FileSystem // Assets subdirectory filesystem.
	IndexHTML []byte          // Raw index HTML shell.
}

// Load reads the embedded admin panel bundle.
func Load() (Bundle, error) {
	assetsFS, errSub := fs.Sub(dist, "dist/assets")
	if errSub != nil {
		return Bundle{}, errSub
	}
	indexHTML, errRead := dist.ReadFile("dist/index.html")
	if errRead != nil {
		return Bundle{}, errRead
	}
	return Bundle{
		AssetsFS:  http.FS(assetsFS),
		IndexHTML: indexHTML,
	}, nil
}

// ServeIndex returns a handler that serves the SPA shell. The client-side
// router takes over from there, so every admin page path gets the same HTML.
func (b Bundle) ServeIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", b.IndexHTML)
	}
}
