// Package testutil provides an isolated, migrated database for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/lshigami/orientation-event/database"
	"github.com/lshigami/orientation-event/internal/model"
)

// DB opens a private in-memory sqlite database with every table migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given email and flags.
func CreateUser(tb testing.TB, db *gorm.DB, email string, staff bool) *model.User {
	tb.Helper()
	u := &model.User{Email: email, Password: "x", IsStaff: staff}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("failed to create user %s: %v", email, err)
	}
	return u
}
