// Package session binds JWT session tokens to the admin_session cookie.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/security"
	log "github.com/sirupsen/logrus"
)

// CookieName is the fixed session cookie key.
const CookieName = "admin_session"

// Manager issues, reads and clears admin session cookies. Sessions are
// stateless JWTs; an optional Revoker adds a server-side denylist on top.
type Manager struct {
	secret  string
	ttl     time.Duration
	secure  bool
	revoker Revoker
}

// NewManager constructs a session Manager. secure controls the cookie Secure
// attribute and should be true in production. revoker may be nil, in which
// case logout only clears the client-side cookie.
func NewManager(secret string, ttl time.Duration, secure bool, revoker Revoker) *Manager {
	return &Manager{secret: secret, ttl: ttl, secure: secure, revoker: revoker}
}

// TTL returns the configured session validity window.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Establish issues a session token for the admin and sets the session cookie
// on the response.
func (m *Manager) Establish(c *gin.Context, admin models.AdminUser) error {
	token, errToken := security.GenerateSessionToken(m.secret, admin.ID, admin.Email, m.ttl)
	if errToken != nil {
		return errToken
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

// Current returns the claims of the request's session cookie, or nil when the
// request is anonymous. Verification failures all collapse to "no session";
// the specific failure is only logged, with signature and structure failures
// flagged as potential tampering.
func (m *Manager) Current(c *gin.Context) *security.SessionClaims {
	token, errCookie := c.Cookie(CookieName)
	if errCookie != nil || token == "" {
		return nil
	}

	claims, errParse := security.ParseSessionToken(m.secret, token)
	if errParse != nil {
		switch {
		case errors.Is(errParse, security.ErrTokenExpired):
			log.WithField("path", c.Request.URL.Path).Debug("session token expired")
		default:
			log.WithFields(log.Fields{
				"path":   c.Request.URL.Path,
				"remote": c.ClientIP(),
				"reason": errParse.Error(),
			}).Warn("rejected session token")
		}
		return nil
	}

	if m.revoker != nil {
		revoked, errCheck := m.revoker.IsRevoked(c.Request.Context(), claims.ID)
		if errCheck != nil {
			// The denylist is best-effort hardening; an unreachable store must
			// not lock every admin out.
			log.WithError(errCheck).Warn("session revocation check failed")
		} else if revoked {
			return nil
		}
	}
	return claims
}

// End clears the session cookie and, when a revoker is configured, denies the
// token's jti until its natural expiry.
func (m *Manager) End(c *gin.Context) {
	if m.revoker != nil {
		if token, errCookie := c.Cookie(CookieName); errCookie == nil && token != "" {
			if claims, errParse := security.ParseSessionToken(m.secret, token); errParse == nil {
				until := time.Now().UTC().Add(m.ttl)
				if claims.ExpiresAt != nil {
					until = claims.ExpiresAt.Time
				}
				if errRevoke := m.revoker.Revoke(c.Request.Context(), claims.ID, until); errRevoke != nil {
					log.WithError(errRevoke).Warn("session revocation failed")
				}
			}
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}
