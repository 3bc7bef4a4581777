package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/session"
	"gorm.io/gorm"
)

const testBcryptCost = 4

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:authhandler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.AdminUser{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func newAuthRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := session.NewManager("test-secret", time.Hour, false, nil)
	handler := NewAuthHandler(db, auth.NewService(db, testBcryptCost), sessions)
	router := gin.New()
	router.POST("/admin/api/setup", handler.Setup)
	router.POST("/admin/api/login", handler.Login)
	router.POST("/admin/api/logout", handler.Logout)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, errMarshal := json.Marshal(body)
	if errMarshal != nil {
		t.Fatalf("marshal body: %v", errMarshal)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	return nil
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode error body: %v", errDecode)
	}
	return resp.Error
}

func TestSetupCreatesAdminAndSession(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(t, db)

	w := postJSON(t, router, "/admin/api/setup", gin.H{
		"email":        "admin@example.com",
		"password":     "correct horse",
		"display_name": "Admin",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	cookie := sessionCookie(w)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Fatal("expected HttpOnly session cookie")
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("response leaks password material: %s", w.Body.String())
	}

	var count int64
	db.Model(&models.AdminUser{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 admin row, got %d", count)
	}
}

func TestSetupRefusedOnceAdminExists(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(t, db)

	first := postJSON(t, router, "/admin/api/setup", gin.H{"email": "a@example.com", "password": "first password"})
	if first.Code != http.StatusCreated {
		t.Fatalf("first setup: expected 201, got %d", first.Code)
	}
	second := postJSON(t, router, "/admin/api/setup", gin.H{"email": "b@example.com", "password": "second password"})
	if second.Code != http.StatusConflict {
		t.Fatalf("second setup: expected 409, got %d", second.Code)
	}

	var count int64
	db.Model(&models.AdminUser{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 admin row after refused setup, got %d", count)
	}
}

func TestSetupRejectsShortPassword(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(t, db)

	w := postJSON(t, router, "/admin/api/setup", gin.H{"email": "a@example.com", "password": "short"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(t, db)

	postJSON(t, router, "/admin/api/setup", gin.H{"email": "admin@example.com", "password": "correct horse"})
	w := postJSON(t, router, "/admin/api/login", gin.H{"email": "admin@example.com", "password": "correct horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if sessionCookie(w) == nil {
		t.Fatal("expected session cookie on login")
	}
}

func TestLoginFailureMessageDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(t, db)

	postJSON(t, router, "/admin/api/setup", gin.H{"email": "admin@example.com", "password": "correct horse"})

	wrongPassword := postJSON(t, router, "/admin/api/login", gin.H{"email": "admin@example.com", "password": "wrong"})
	unknownEmail := postJSON(t, router, "/admin/api/login", gin.H{"email": "nobody@example.com", "password": "wrong"})

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", wrongPassword.Code)
	}
	if unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", unknownEmail.Code)
	}
	msgA := errorMessage(t, wrongPassword)
	msgB := errorMessage(t, unknownEmail)
	if msgA != msgB {
		t.Fatalf("failure messages differ: %q vs %q", msgA, msgB)
	}
	if sessionCookie(wrongPassword) != nil {
		t.Fatal("failed login must not set a session cookie")
	}
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(t, db)

	postJSON(t, router, "/admin/api/setup", gin.H{"email": "admin@example.com", "password": "correct horse"})
	w := postJSON(t, router, "/admin/api/login", gin.H{"email": "Admin@Example.COM", "password": "correct horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for case-variant email, got %d", w.Code)
	}
}

func TestLogoutClearsCookieWithoutSession(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(t, db)

	w := postJSON(t, router, "/admin/api/logout", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("expected expired session cookie on logout")
	}
	if cookie.MaxAge >= 0 && cookie.Value != "" {
		t.Fatalf("expected cleared cookie, got value=%q max-age=%d", cookie.Value, cookie.MaxAge)
	}
}
