package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("Ali Hassan", "properties", "Photo.JPG")

	assert.True(t, strings.HasPrefix(key, "users/ali-hassan/properties/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotEqual(t, key, ObjectKey("Ali Hassan", "properties", "Photo.JPG"))
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "users/ali/properties/a.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/users/ali/properties/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "users", "ali", "properties", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, s.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "users", "ali", "properties", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, s.Delete(context.Background(), url))
}

func TestLocalStorageDeleteRejectsForeignPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	assert.Error(t, s.Delete(context.Background(), "https://cdn.example.com/x.png"))
	assert.Error(t, s.Delete(context.Background(), "/uploads/../secret"))
}
