// Package http carries the request-level middleware shared by the admin and
// public route trees.
package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/session"
)

// Admin surface paths used by the session gate.
const (
	// AdminPrefix is the root of the administrative surface.
	AdminPrefix = "/admin"
	// LoginPath is the login page, reachable without a session.
	LoginPath = "/admin/login"
	// SetupPath is the one-time bootstrap page, reachable without a session.
	SetupPath = "/admin/setup"
	// AdminAPIPrefix is the root of the admin JSON API.
	AdminAPIPrefix = "/admin/api"
)

// apiPublicPaths are admin API endpoints reachable without a session.
var apiPublicPaths = map[string]struct{}{
	"/admin/api/login":  {},
	"/admin/api/setup":  {},
	"/admin/api/logout": {},
}

// GateDecision is the outcome of classifying one request.
type GateDecision struct {
	Allow      bool   // Let the request through unmodified.
	RedirectTo string // Target for a 302 when Allow is false and Status is 0.
	Status     int    // Non-zero for a JSON error response (API paths).
}

// EvaluateGate classifies an admin-surface path against the session state.
// It only computes the decision; enforcement happens in the middleware.
func EvaluateGate(path string, authenticated bool) GateDecision {
	if !strings.HasPrefix(path, AdminPrefix) {
		return GateDecision{Allow: true}
	}

	if strings.HasPrefix(path, AdminAPIPrefix) {
		if _, public := apiPublicPaths[strings.TrimSuffix(path, "/")]; public {
			return GateDecision{Allow: true}
		}
		if !authenticated {
			return GateDecision{Status: http.StatusUnauthorized}
		}
		return GateDecision{Allow: true}
	}

	isPublicPage := path == LoginPath || path == SetupPath
	switch {
	case isPublicPage && authenticated:
		// Already signed in; keep the login and setup pages out of reach.
		return GateDecision{RedirectTo: AdminPrefix}
	case !isPublicPage && !authenticated:
		return GateDecision{RedirectTo: LoginPath + "?next=" + url.QueryEscape(path)}
	default:
		return GateDecision{Allow: true}
	}
}

// SessionGateMiddleware derives the session state fresh on every request and
// enforces the admin gate before any handler touches protected data. Page
// requests get redirects; API requests get JSON errors.
func SessionGateMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := sessions.Current(c)
		decision := EvaluateGate(c.Request.URL.Path, claims != nil)

		switch {
		case decision.Allow:
			if claims != nil {
				c.Set("adminID", claims.AdminID)
				c.Set("adminEmail", claims.Email)
			}
			c.Next()
		case decision.Status != 0:
			c.AbortWithStatusJSON(decision.Status, gin.H{"error": "authentication required"})
		default:
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
		}
	}
}

// AdminIDFromContext extracts the authenticated admin id set by the gate.
func AdminIDFromContext(c *gin.Context) (uint64, bool) {
	value, ok := c.Get("adminID")
	if !ok {
		return 0, false
	}
	id, okID := value.(uint64)
	return id, okID
}
