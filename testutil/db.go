// Package testutil holds helpers shared by the package tests: a migrated
// SQLite database and a deterministic clock.
package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"records-portal-api/config"
	"records-portal-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens a fresh SQLite database in t.TempDir with every table
// migrated. The connection is closed when the test ends.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rms.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), config.GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("database handle: %v", err)
	}
	// SQLite allows one writer; a single connection keeps transactions serialised.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Users maps each role to the id of a seeded active user holding it.
type Users map[string]int

// SeedUsers creates one active user per role. Emails are the lower-cased role
// at rms.test and every password is SeedPassword.
func SeedUsers(t testing.TB, db *gorm.DB) Users {
	t.Helper()

	hash := PasswordHash(t)
	users := Users{}
	for _, role := range models.UserRoles {
		user := models.User{
			FullName: role + " user",
			Email:    strings.ToLower(role) + "@rms.test",
			Password: hash,
			Role:     role,
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("seed user %s: %v", role, err)
		}
		users[role] = user.UserID
	}
	return users
}

// SeedPassword is the plain password of every seeded user.
const SeedPassword = "password123"

// PasswordHash returns a bcrypt hash of SeedPassword at minimum cost.
func PasswordHash(t testing.TB) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}
