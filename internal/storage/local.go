package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// publicPrefix is where the router serves local uploads from.
const publicPrefix = "/uploads/"

// Local stores blobs under a base directory and addresses them as
// /uploads/<key> locators.
type Local struct {
	baseDir string
}

func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o770); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

func (l *Local) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	rel, err := l.safeRel(key)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o770); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", key, err)
	}
	return publicPrefix + path.Clean(key), nil
}

func (l *Local) Remove(_ context.Context, locator string) error {
	key := strings.TrimPrefix(locator, publicPrefix)
	rel, err := l.safeRel(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.baseDir, rel)); err != nil {
		return fmt.Errorf("storage: remove %s: %w", locator, err)
	}
	return nil
}

// safeRel rejects keys that would escape the base directory.
func (l *Local) safeRel(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.FromSlash(strings.TrimPrefix(clean, "/")), nil
}
