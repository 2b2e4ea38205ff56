package filerepo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"sync"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/models"
)

// WriteResult reports the outcome of writing a plugin file tree.
type WriteResult struct {
	Path         string
	FilesWritten int
	WrittenFiles []string
}

// Repository stores one directory per plugin under a base path. The
// backend is chosen once at construction; there is no per-call
// environment probing.
type Repository struct {
	backend  Backend
	basePath string

	initMu      sync.Mutex
	initialized bool
}

// New creates a Repository over the given backend rooted at basePath.
func New(backend Backend, basePath string) *Repository {
	return &Repository{backend: backend, basePath: basePath}
}

// BasePath returns the root directory of the plugin store.
func (r *Repository) BasePath() string {
	return r.basePath
}

// PluginPath returns the directory a plugin's files live in.
func (r *Repository) PluginPath(pluginID string) string {
	return path.Join(r.basePath, pluginID)
}

// Initialize creates the base directory. Unlike every other method its
// error propagates unchanged: a repository that cannot create its root is
// fatal to whatever operation invoked it. Safe for concurrent use; a
// failed attempt is retried on the next call.
func (r *Repository) Initialize(ctx context.Context) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	if r.initialized {
		return nil
	}
	if err := r.backend.EnsureDirectory(ctx, r.basePath); err != nil {
		return fmt.Errorf("failed to initialize plugin file store: %w", err)
	}
	r.initialized = true
	return nil
}

// WritePluginFiles materializes a plugin file tree under the plugin's
// directory, creating subdirectories as needed. Concurrent writes for the
// same plugin are not mutually excluded; the last writer wins.
func (r *Repository) WritePluginFiles(ctx context.Context, pluginID string, files map[string]string) (*WriteResult, error) {
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}

	pluginPath := r.PluginPath(pluginID)
	if err := r.backend.EnsureDirectory(ctx, pluginPath); err != nil {
		return nil, err
	}

	writtenFiles := make([]string, 0, len(files))
	for filePath, content := range files {
		fullPath := path.Join(pluginPath, filePath)
		if dir := path.Dir(fullPath); dir != pluginPath {
			if err := r.backend.EnsureDirectory(ctx, dir); err != nil {
				return nil, err
			}
		}
		if err := r.backend.WriteFile(ctx, fullPath, content); err != nil {
			return nil, err
		}
		writtenFiles = append(writtenFiles, filePath)
	}

	return &WriteResult{
		Path:         pluginPath,
		FilesWritten: len(writtenFiles),
		WrittenFiles: writtenFiles,
	}, nil
}

// ReadPluginFiles returns the plugin's full file tree plus its parsed
// manifest. The manifest is nil when manifest.json is absent or
// unparseable; the files are returned regardless.
func (r *Repository) ReadPluginFiles(ctx context.Context, pluginID string) (map[string]string, *models.PluginManifest, error) {
	pluginPath := r.PluginPath(pluginID)

	exists, _ := r.backend.PathExists(ctx, pluginPath)
	if !exists {
		return nil, nil, fmt.Errorf("plugin %s %w", pluginID, ErrNotFound)
	}

	files, err := r.backend.ReadDirectoryRecursive(ctx, pluginPath)
	if err != nil {
		return nil, nil, err
	}

	var manifest *models.PluginManifest
	if raw, ok := files["manifest.json"]; ok {
		var m models.PluginManifest
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			log.Printf("Failed to parse manifest for plugin %s: %v", pluginID, err)
		} else {
			manifest = &m
		}
	}

	return files, manifest, nil
}

// ListPluginDirs returns the names of all plugin directories in the store.
func (r *Repository) ListPluginDirs(ctx context.Context) ([]string, error) {
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}
	return r.backend.ListDirectories(ctx, r.basePath)
}

// RemovePlugin deletes a plugin's directory tree. Removing a plugin that
// does not exist is reported as ErrNotFound.
func (r *Repository) RemovePlugin(ctx context.Context, pluginID string) error {
	pluginPath := r.PluginPath(pluginID)

	exists, _ := r.backend.PathExists(ctx, pluginPath)
	if !exists {
		return fmt.Errorf("plugin %s %w", pluginID, ErrNotFound)
	}

	return r.backend.RemoveDirectory(ctx, pluginPath)
}
