package filerepo

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirectBackend implements Backend against the local filesystem.
type DirectBackend struct{}

// NewDirectBackend creates a filesystem-backed Backend.
func NewDirectBackend() *DirectBackend {
	return &DirectBackend{}
}

func (b *DirectBackend) EnsureDirectory(ctx context.Context, path string) error {
	return os.MkdirAll(path, 0755)
}

func (b *DirectBackend) WriteFile(ctx context.Context, path, content string) error {
	// Binary assets arrive as data URIs; decode the payload after the
	// first comma and write raw bytes.
	if strings.HasPrefix(content, "data:") {
		payload := ""
		if idx := strings.Index(content, ","); idx >= 0 {
			payload = content[idx+1:]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("failed to decode data URI for %s: %w", path, err)
		}
		return os.WriteFile(path, data, 0644)
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func (b *DirectBackend) ReadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

func (b *DirectBackend) PathExists(ctx context.Context, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	return true, nil
}

func (b *DirectBackend) ListDirectories(ctx context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

func (b *DirectBackend) ReadDirectoryRecursive(ctx context.Context, path string) (map[string]string, error) {
	output := make(map[string]string)
	err := filepath.WalkDir(path, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(path, current)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(current)
		if err != nil {
			return err
		}
		output[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return output, nil
}

func (b *DirectBackend) RemoveDirectory(ctx context.Context, path string) error {
	return os.RemoveAll(path)
}
