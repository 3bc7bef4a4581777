package db

import (
	"fmt"

	"github.com/inkpress/inkpress/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the blog schema.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(
		&models.AdminUser{},
		&models.Author{},
		&models.Tag{},
		&models.Post{},
		&models.ContentBlock{},
		&models.Setting{},
		&models.PostView{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
