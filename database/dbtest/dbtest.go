// Package dbtest opens throwaway in-memory databases with the production schema.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/models"
)

var counter atomic.Int64

// Open returns a migrated SQLite database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "=", "_", "?", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, counter.Add(1))

	db, err := database.Open(database.ConnConfig{Type: "sqlite", DSN: dsn, LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with a unique email.
func CreateUser(t testing.TB, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:        id,
		Email:     id.String() + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := database.New(db).UserRepo().Ensure(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
