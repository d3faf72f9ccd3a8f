package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Storage persists uploaded media and returns the path or URL clients use
// to fetch it back.
type Storage interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

var Default Storage

// ObjectKey builds users/<owner>/<kind>/<nanos>-<uuid><ext>.
func ObjectKey(owner, kind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	uniqueID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.New().String())
	return path.Join("users", slug.Make(owner), kind, uniqueID+ext)
}

// DeleteAll removes every url and reports the first failure.
func DeleteAll(ctx context.Context, s Storage, urls []string) error {
	var firstErr error
	for _, url := range urls {
		if err := s.Delete(ctx, url); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LocalStorage writes under Dir and serves files from PublicPath.
type LocalStorage struct {
	Dir        string
	PublicPath string
}

func NewLocalStorage(dir, publicPath string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload dir: %w", err)
	}
	return &LocalStorage{Dir: dir, PublicPath: strings.TrimRight(publicPath, "/")}, nil
}

func (s *LocalStorage) Save(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	target := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("could not create directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("could not write file: %w", err)
	}

	return s.PublicPath + "/" + key, nil
}

func (s *LocalStorage) Delete(_ context.Context, url string) error {
	key := strings.TrimPrefix(url, s.PublicPath+"/")
	if key == url || strings.Contains(key, "..") {
		return fmt.Errorf("not a local upload: %s", url)
	}
	if err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
