// Package filerepo provides durable, path-safe storage for plugin file
// trees behind a single interface with two runtime-selected backends:
// direct filesystem access and an HTTP bridge for deployments where the
// admin UI runs without filesystem access of its own.
package filerepo

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a file or plugin directory does not exist.
var ErrNotFound = errors.New("not found")

// Backend abstracts the seven primitive file operations the repository is
// built on. Implementations must treat paths as opaque strings supplied
// by the repository; path safety is enforced one layer up.
type Backend interface {
	// EnsureDirectory creates path and all missing ancestors. Idempotent.
	EnsureDirectory(ctx context.Context, path string) error
	// WriteFile writes content to path, overwriting existing content.
	// Content beginning with "data:" is treated as a base64 data URI and
	// decoded to raw bytes; anything else is written as UTF-8 text.
	WriteFile(ctx context.Context, path, content string) error
	// ReadFile returns the file content, or ErrNotFound if absent.
	ReadFile(ctx context.Context, path string) (string, error)
	// PathExists reports whether path exists. Never errors for a missing path.
	PathExists(ctx context.Context, path string) (bool, error)
	// ListDirectories returns the names of immediate child directories.
	ListDirectories(ctx context.Context, path string) ([]string, error)
	// ReadDirectoryRecursive walks all descendant files and returns a flat
	// map keyed by path relative to path, joined with "/" regardless of
	// the host separator.
	ReadDirectoryRecursive(ctx context.Context, path string) (map[string]string, error)
	// RemoveDirectory removes path recursively. Does not fail if absent.
	RemoveDirectory(ctx context.Context, path string) error
}
