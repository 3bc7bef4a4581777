package models

import "time"

// AdminUser represents an administrator account stored in the database.
// The blog has a single administrative role; there is no per-permission model.
type AdminUser struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email        string `gorm:"type:text;not null;uniqueIndex"` // Unique login key.
	PasswordHash string `gorm:"type:text;not null"`             // bcrypt hash, never the plaintext.
	DisplayName  string `gorm:"type:text;not null"`             // Non-authoritative display name.

	TOTPSecret string `gorm:"type:text"` // TOTP secret when MFA is enabled, empty otherwise.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
