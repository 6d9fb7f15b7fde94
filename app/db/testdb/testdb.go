// Package testdb opens throwaway migrated sqlite databases for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/Rakhulsr/go-blog/app/configs"
	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/Rakhulsr/go-blog/app/models/migrations"
	"gorm.io/gorm"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := configs.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := migrations.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// User inserts a user with a throwaway password hash.
func User(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		FullName:     username + " tester",
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func Category(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: name}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func Post(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: "content of " + title, UserID: owner.ID}
	if err := db.Omit("User", "Categories", "Comments").Create(p).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return p
}
