// Package testutil opens a migrated SQLite database for package tests and
// creates fixture rows.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "secret123"

// NewDB installs a fresh database as database.DB for the duration of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDatabase(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hash),
		FullName: username + " test",
		Phone:    "07700000000",
		Role:     model.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateAdmin(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := CreateUser(t, db, username)
	require.NoError(t, db.Model(user).Update("role", model.RoleAdmin).Error)
	user.Role = model.RoleAdmin
	return user
}

// CreateProperty inserts an active sale apartment in بغداد owned by owner;
// mutate adjusts fields before the insert.
func CreateProperty(t *testing.T, db *gorm.DB, owner *model.User, mutate func(p *model.Property)) *model.Property {
	t.Helper()

	property := &model.Property{
		UserID:       owner.ID,
		Title:        "شقة للبيع",
		Price:        100000000,
		PropertyType: model.PropertyTypeSale,
		Category:     model.CategoryApartment,
		Bedrooms:     3,
		Bathrooms:    2,
		Area:         150,
		Location:     "الكرادة",
		City:         "بغداد",
	}
	if mutate != nil {
		mutate(property)
	}
	property.Normalize()
	require.NoError(t, db.Create(property).Error)
	return property
}
