// Package dbtest opens schema-isolated Postgres databases for integration
// tests. Tests are skipped when TEST_DATABASE_URL is not set.
package dbtest

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/database"
	"gorm.io/gorm"
)

// Open creates a fresh schema, migrates every model into it and returns a
// handle whose search_path points at that schema. The schema is dropped when
// the test finishes.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	admin, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	db, err := database.Open(withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("connect to schema: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = admin.Exec("DROP SCHEMA " + schema + " CASCADE").Error
		if sqlDB, err := admin.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}
