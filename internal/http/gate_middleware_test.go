package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/security"
	"github.com/inkpress/inkpress/internal/session"
)

const testSecret = "test-secret"

// runGateRequest sends a request through the gate with an optional cookie.
func runGateRequest(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	sessions := session.NewManager(testSecret, time.Hour, false, nil)
	router := gin.New()
	router.Use(SessionGateMiddleware(sessions))
	router.GET("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, ttl time.Duration) *http.Cookie {
	t.Helper()
	token, errGenerate := security.GenerateSessionToken(testSecret, 1, "admin@example.com", ttl)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func TestGateRedirectsAnonymousFromProtectedPage(t *testing.T) {
	w := runGateRequest(t, "/admin/posts", nil)

	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", w.Code)
	}
	if location := w.Header().Get("Location"); location != "/admin/login?next=%2Fadmin%2Fposts" {
		t.Fatalf("unexpected redirect target %q", location)
	}
}

func TestGateRedirectsExpiredSessionFromProtectedPage(t *testing.T) {
	w := runGateRequest(t, "/admin/posts", sessionCookie(t, -time.Minute))

	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", w.Code)
	}
}

func TestGateRedirectsAuthenticatedFromLoginPage(t *testing.T) {
	w := runGateRequest(t, "/admin/login", sessionCookie(t, time.Hour))

	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", w.Code)
	}
	if location := w.Header().Get("Location"); location != "/admin" {
		t.Fatalf("unexpected redirect target %q", location)
	}
}

func TestGateAllowsAuthenticatedProtectedPage(t *testing.T) {
	w := runGateRequest(t, "/admin/posts", sessionCookie(t, time.Hour))

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
}

func TestGateAllowsAnonymousLoginPage(t *testing.T) {
	w := runGateRequest(t, "/admin/login", nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
}

func TestGateReturnsJSONUnauthorizedForAPI(t *testing.T) {
	w := runGateRequest(t, "/admin/api/posts", nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestGateAllowsAnonymousAuthAPI(t *testing.T) {
	for _, path := range []string{"/admin/api/login", "/admin/api/setup", "/admin/api/logout"} {
		w := runGateRequest(t, path, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("path %s: expected status 204, got %d", path, w.Code)
		}
	}
}

func TestGateIgnoresNonAdminPaths(t *testing.T) {
	w := runGateRequest(t, "/api/posts", nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
}
