// Package testutil holds shared helpers for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"workshophub/internal/database"
	"workshophub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewSQLiteDB returns an isolated in-memory database with every model migrated.
// The pool is capped at one connection so transactions serialize the same way
// row locks do on Postgres.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateCategory inserts a category with the given slug.
func CreateCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: slug, Slug: slug}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateWorkshop inserts an active workshop in category with the given capacity.
func CreateWorkshop(t *testing.T, db *gorm.DB, categoryID uint, slug string, maxStudents int) *models.Workshop {
	t.Helper()
	w := &models.Workshop{
		Title:       slug,
		Slug:        slug,
		Description: "workshop " + slug,
		CategoryID:  categoryID,
		Difficulty:  models.DifficultyBeginner,
		MaxStudents: maxStudents,
		IsActive:    true,
	}
	require.NoError(t, db.Create(w).Error)
	return w
}
