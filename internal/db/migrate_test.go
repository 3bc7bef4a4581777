package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestMigrateSQLiteCreatesBlogTables(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{"admin_users", "authors", "tags", "posts", "content_blocks", "post_tags", "settings", "post_views"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestMigrateSQLiteAdminUserColumns(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, column := range []string{"email", "password_hash", "display_name", "totp_secret"} {
		if !conn.Migrator().HasColumn("admin_users", column) {
			t.Fatalf("admin_users missing column %s", column)
		}
	}
}

func TestDetectDialectFromDSN(t *testing.T) {
	cases := []struct {
		dsn     string
		dialect string
	}{
		{"postgres://u:p@localhost/blog", DialectPostgres},
		{"host=localhost user=blog dbname=blog sslmode=disable", DialectPostgres},
		{"data/inkpress.db", DialectSQLite},
		{"file:blog.db?cache=shared", DialectSQLite},
		{"sqlite://blog.db", DialectSQLite},
	}
	for _, tc := range cases {
		dialect, errDetect := detectDialectFromDSN(tc.dsn)
		if errDetect != nil {
			t.Fatalf("detect %q: %v", tc.dsn, errDetect)
		}
		if dialect != tc.dialect {
			t.Fatalf("detect %q: expected %s, got %s", tc.dsn, tc.dialect, dialect)
		}
	}
}
