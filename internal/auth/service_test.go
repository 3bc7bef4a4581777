package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	dbpkg "github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/models"
	"gorm.io/gorm"
)

// testBcryptCost keeps hashing fast in tests.
const testBcryptCost = 4

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(db); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func TestBootstrapThenAuthenticate(t *testing.T) {
	db := setupAuthDB(t)
	service := NewService(db, testBcryptCost)
	ctx := context.Background()

	initialized, errInit := service.Initialized(ctx)
	if errInit != nil {
		t.Fatalf("initialized: %v", errInit)
	}
	if initialized {
		t.Fatalf("expected empty database to be uninitialized")
	}

	admin, errBootstrap := service.Bootstrap(ctx, "admin@example.com", "hunter2", "Site Admin")
	if errBootstrap != nil {
		t.Fatalf("bootstrap: %v", errBootstrap)
	}
	if admin.ID == 0 {
		t.Fatalf("expected assigned admin id")
	}
	if admin.PasswordHash == "hunter2" {
		t.Fatalf("password stored in plaintext")
	}

	got, errAuth := service.Authenticate(ctx, "admin@example.com", "hunter2")
	if errAuth != nil {
		t.Fatalf("authenticate: %v", errAuth)
	}
	if got.ID != admin.ID {
		t.Fatalf("expected admin %d, got %d", admin.ID, got.ID)
	}
}

func TestBootstrapSecondAttemptFails(t *testing.T) {
	db := setupAuthDB(t)
	service := NewService(db, testBcryptCost)
	ctx := context.Background()

	if _, errBootstrap := service.Bootstrap(ctx, "admin@example.com", "hunter2", "Site Admin"); errBootstrap != nil {
		t.Fatalf("bootstrap: %v", errBootstrap)
	}
	if _, errBootstrap := service.Bootstrap(ctx, "second@example.com", "hunter2", "Second Admin"); !errors.Is(errBootstrap, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", errBootstrap)
	}

	var count int64
	if errCount := db.Model(&models.AdminUser{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count admins: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 admin, got %d", count)
	}
}

func TestAuthenticateErrorUniformity(t *testing.T) {
	db := setupAuthDB(t)
	service := NewService(db, testBcryptCost)
	ctx := context.Background()

	if _, errBootstrap := service.Bootstrap(ctx, "admin@example.com", "hunter2", "Site Admin"); errBootstrap != nil {
		t.Fatalf("bootstrap: %v", errBootstrap)
	}

	_, errUnknown := service.Authenticate(ctx, "nobody@example.com", "hunter2")
	_, errWrongPassword := service.Authenticate(ctx, "admin@example.com", "wrong")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPassword)
	}
	if errUnknown.Error() != errWrongPassword.Error() {
		t.Fatalf("expected identical messages, got %q vs %q", errUnknown, errWrongPassword)
	}
}

func TestChangePassword(t *testing.T) {
	db := setupAuthDB(t)
	service := NewService(db, testBcryptCost)
	ctx := context.Background()

	admin, errBootstrap := service.Bootstrap(ctx, "admin@example.com", "hunter2", "Site Admin")
	if errBootstrap != nil {
		t.Fatalf("bootstrap: %v", errBootstrap)
	}

	if errChange := service.ChangePassword(ctx, admin.ID, "wrong", "next-password"); !errors.Is(errChange, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", errChange)
	}
	if errChange := service.ChangePassword(ctx, admin.ID, "hunter2", "next-password"); errChange != nil {
		t.Fatalf("change password: %v", errChange)
	}

	if _, errAuth := service.Authenticate(ctx, "admin@example.com", "hunter2"); !errors.Is(errAuth, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", errAuth)
	}
	if _, errAuth := service.Authenticate(ctx, "admin@example.com", "next-password"); errAuth != nil {
		t.Fatalf("authenticate with new password: %v", errAuth)
	}
}
