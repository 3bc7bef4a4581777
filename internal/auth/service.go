// Package auth verifies admin credentials and guards the first-admin
// bootstrap.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/security"
	"gorm.io/gorm"
)

// Credential and bootstrap errors.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password,
	// so the boundary never reveals which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAlreadyInitialized indicates bootstrap was attempted after an admin
	// account already exists.
	ErrAlreadyInitialized = errors.New("admin account already exists")
)

// Service implements credential verification against the admin_users table.
type Service struct {
	db         *gorm.DB
	bcryptCost int
}

// NewService constructs a Service with the configured bcrypt work factor.
func NewService(db *gorm.DB, bcryptCost int) *Service {
	return &Service{db: db, bcryptCost: bcryptCost}
}

// Authenticate verifies an email/password pair and returns the matching admin.
// Unknown email and wrong password both yield ErrInvalidCredentials; store
// failures are wrapped and propagate distinctly so callers can tell "logged
// out" from "broken".
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.AdminUser, error) {
	var admin models.AdminUser
	errFind := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&admin).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.AdminUser{}, ErrInvalidCredentials
		}
		return models.AdminUser{}, fmt.Errorf("auth: find admin: %w", errFind)
	}
	if !security.CheckPassword(admin.PasswordHash, password) {
		return models.AdminUser{}, ErrInvalidCredentials
	}
	return admin, nil
}

// Initialized reports whether any admin account exists.
func (s *Service) Initialized(ctx context.Context) (bool, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("auth: count admins: %w", errCount)
	}
	return count > 0, nil
}

// Bootstrap creates the first admin account and returns it. It fails with
// ErrAlreadyInitialized when any admin row exists. Two concurrent bootstrap
// attempts race safely: the guard runs inside a transaction and the unique
// email index backs it up, so at most one attempt can succeed.
func (s *Service) Bootstrap(ctx context.Context, email, password, displayName string) (models.AdminUser, error) {
	hash, errHash := security.HashPassword(password, s.bcryptCost)
	if errHash != nil {
		return models.AdminUser{}, fmt.Errorf("auth: hash password: %w", errHash)
	}

	now := time.Now().UTC()
	admin := models.AdminUser{
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.AdminUser{}).Count(&count).Error; errCount != nil {
			return fmt.Errorf("auth: count admins: %w", errCount)
		}
		if count > 0 {
			return ErrAlreadyInitialized
		}
		if errCreate := tx.Create(&admin).Error; errCreate != nil {
			if isUniqueViolation(errCreate) {
				return ErrAlreadyInitialized
			}
			return fmt.Errorf("auth: create admin: %w", errCreate)
		}
		return nil
	})
	if errTx != nil {
		return models.AdminUser{}, errTx
	}
	return admin, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, adminID uint64, current, next string) error {
	var admin models.AdminUser
	if errFind := s.db.WithContext(ctx).First(&admin, adminID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("auth: find admin: %w", errFind)
	}
	if !security.CheckPassword(admin.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, errHash := security.HashPassword(next, s.bcryptCost)
	if errHash != nil {
		return fmt.Errorf("auth: hash password: %w", errHash)
	}
	if errUpdate := s.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("id = ?", adminID).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		return fmt.Errorf("auth: update password: %w", errUpdate)
	}
	return nil
}

// normalizeEmail trims and lowercases an email so lookups are
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation detects unique constraint failures across dialects.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
