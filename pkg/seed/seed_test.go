package seed

import (
	"testing"

	"diyari_backend/internal/model"
	"diyari_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdminIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	first, err := SeedAdmin(db, "admin", "admin@diyari.local", "password")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, first.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(first.Password), []byte("password")))

	second, err := SeedAdmin(db, "admin", "admin@diyari.local", "password")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSeedAdminPromotesExistingUser(t *testing.T) {
	db := testutil.NewDB(t)
	existing := testutil.CreateUser(t, db, "boss")

	user, err := SeedAdmin(db, "boss", "boss@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	var stored model.User
	require.NoError(t, db.First(&stored, existing.ID).Error)
	assert.Equal(t, model.RoleAdmin, stored.Role)
}

func TestSeedDemoUser(t *testing.T) {
	db := testutil.NewDB(t)

	user, err := SeedDemoUser(db)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("123456")))
}
