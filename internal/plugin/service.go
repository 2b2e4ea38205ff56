package plugin

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/filerepo"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/models"
)

// Service validates plugin file sets and exposes install/get/list/remove
// operations over the file repository. It holds no durable state of its
// own; the repository is the sole source of truth.
type Service struct {
	repo         *filerepo.Repository
	assetBaseURL string
}

// NewService creates a plugin file service over the given repository.
func NewService(repo *filerepo.Repository, assetBaseURL string) *Service {
	return &Service{repo: repo, assetBaseURL: assetBaseURL}
}

var (
	defaultService *Service
	defaultMu      sync.RWMutex
)

// SetDefault sets the process-wide service instance.
func SetDefault(service *Service) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultService = service
}

// Default returns the process-wide service instance.
func Default() *Service {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultService
}

// Repository returns the underlying file repository.
func (s *Service) Repository() *filerepo.Repository {
	return s.repo
}

func installFailure(pluginID, message string) *models.InstallResult {
	return &models.InstallResult{
		Success:      false,
		PluginID:     pluginID,
		WrittenFiles: []string{},
		Error:        message,
	}
}

// InstallPlugin validates and materializes a plugin file set under the
// plugin's directory. Failures are reported as a structured result, never
// as an error; no side effects are applied on a validation failure.
//
// Concurrent installs of the same plugin ID are not mutually excluded;
// the last writer wins at the filesystem level.
func (s *Service) InstallPlugin(ctx context.Context, pluginID string, files map[string]string) (result *models.InstallResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Plugin installation panicked: %v", r)
			result = installFailure(pluginID, recoveredMessage(r))
		}
	}()

	validation := ValidateFiles(files)
	if !validation.Valid {
		return installFailure(pluginID, validation.Error)
	}

	manifest := validation.Manifest
	if manifest == nil {
		return installFailure(pluginID, "Manifest is missing")
	}

	if pluginID != manifest.PluginID {
		return installFailure(pluginID, "Plugin ID does not match manifest pluginId")
	}

	if err := ValidateID(pluginID); err != nil {
		return installFailure(pluginID, err.Error())
	}

	written, err := s.repo.WritePluginFiles(ctx, pluginID, files)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Failed to write files to filesystem"
		}
		return installFailure(pluginID, msg)
	}

	return &models.InstallResult{
		Success:      true,
		PluginID:     pluginID,
		Path:         written.Path,
		FilesWritten: written.FilesWritten,
		WrittenFiles: written.WrittenFiles,
		Manifest:     manifest,
	}
}

// GetInstalledPlugins enumerates all plugins on the file store. Any
// failure degrades to an empty list; this method never errors.
func (s *Service) GetInstalledPlugins(ctx context.Context) []models.InstalledPlugin {
	dirs, err := s.repo.ListPluginDirs(ctx)
	if err != nil {
		log.Printf("Failed to list installed plugins: %v", err)
		return []models.InstalledPlugin{}
	}

	plugins := make([]models.InstalledPlugin, 0, len(dirs))
	for _, pluginID := range dirs {
		if installed := s.GetPlugin(ctx, pluginID); installed != nil {
			plugins = append(plugins, *installed)
		}
	}
	return plugins
}

// GetPlugin reads a single installed plugin. Returns nil on any failure
// or when the directory carries no parseable manifest. The file store
// does not track install time, so both timestamps are read-time values.
func (s *Service) GetPlugin(ctx context.Context, pluginID string) *models.InstalledPlugin {
	_, manifest, err := s.repo.ReadPluginFiles(ctx, pluginID)
	if err != nil || manifest == nil {
		return nil
	}

	now := time.Now()
	return &models.InstalledPlugin{
		PluginID:    pluginID,
		Manifest:    manifest,
		InstalledAt: now,
		LastUpdated: now,
	}
}

// RemovePlugin deletes a plugin's file tree. Returns false on any
// failure, including removal of a plugin that was never installed.
func (s *Service) RemovePlugin(ctx context.Context, pluginID string) bool {
	if err := s.repo.RemovePlugin(ctx, pluginID); err != nil {
		log.Printf("Failed to remove plugin %s: %v", pluginID, err)
		return false
	}
	return true
}

// HealthCheck always reports "healthy": a failure to enumerate plugins is
// reported as zero plugins installed, not as an unhealthy store. This is
// a deliberate choice — the admin UI treats the count as informational
// and surfaces store failures through the operations themselves.
func (s *Service) HealthCheck(ctx context.Context) models.HealthStatus {
	count := len(s.GetInstalledPlugins(ctx))
	return models.HealthStatus{
		Status:  "healthy",
		Message: fmt.Sprintf("Plugin file store healthy. %d plugins installed.", count),
	}
}

// recoveredMessage normalizes a recovered panic value to a message,
// substituting "Unknown error" for anything that is not an error.
func recoveredMessage(r any) string {
	if err, ok := r.(error); ok && err.Error() != "" {
		return err.Error()
	}
	return "Unknown error"
}
