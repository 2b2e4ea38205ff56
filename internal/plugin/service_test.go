package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/filerepo"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/plugin"
)

func newTestService(t *testing.T) *plugin.Service {
	t.Helper()
	repo := filerepo.New(filerepo.NewDirectBackend(), t.TempDir())
	return plugin.NewService(repo, "/src/plugin/available")
}

func TestServiceInstallPlugin(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful install", func(t *testing.T) {
		service := newTestService(t)
		result := service.InstallPlugin(ctx, "test_plugin", validFileSet())
		if !result.Success {
			t.Fatalf("Expected success, got error: %s", result.Error)
		}
		if result.FilesWritten != 2 {
			t.Errorf("Expected 2 files written, got %d", result.FilesWritten)
		}
		if result.Manifest == nil || result.Manifest.PluginID != "test_plugin" {
			t.Errorf("Expected manifest in result, got %+v", result.Manifest)
		}

		installed := service.GetPlugin(ctx, "test_plugin")
		if installed == nil {
			t.Fatal("Expected plugin to be readable after install")
		}
		if installed.Manifest.Version != "1.0.0" {
			t.Errorf("Expected version 1.0.0, got %s", installed.Manifest.Version)
		}
	})

	t.Run("Validation failure writes nothing", func(t *testing.T) {
		service := newTestService(t)
		result := service.InstallPlugin(ctx, "test_plugin", map[string]string{"index.tsx": "code"})
		if result.Success {
			t.Fatal("Expected failure for missing manifest")
		}
		if result.Error != "manifest.json is required" {
			t.Errorf("Expected manifest error, got %q", result.Error)
		}
		if service.GetPlugin(ctx, "test_plugin") != nil {
			t.Error("Expected no plugin on disk after failed validation")
		}
	})

	t.Run("Plugin ID mismatch", func(t *testing.T) {
		service := newTestService(t)
		result := service.InstallPlugin(ctx, "other_plugin", validFileSet())
		if result.Success || result.Error != "Plugin ID does not match manifest pluginId" {
			t.Errorf("Expected pluginId mismatch error, got %q", result.Error)
		}
	})

	t.Run("Invalid plugin ID", func(t *testing.T) {
		service := newTestService(t)
		files := map[string]string{
			"manifest.json": `{"name": "X", "pluginId": "my-plugin", "version": "1.0.0", "description": "d", "author": "a", "main": "index.tsx"}`,
			"index.tsx":     "code",
		}
		result := service.InstallPlugin(ctx, "my-plugin", files)
		if result.Success {
			t.Fatal("Expected failure for hyphenated plugin ID")
		}
	})

	t.Run("Reinstall overwrites", func(t *testing.T) {
		service := newTestService(t)
		if result := service.InstallPlugin(ctx, "test_plugin", validFileSet()); !result.Success {
			t.Fatalf("First install failed: %s", result.Error)
		}

		files := validFileSet()
		files["manifest.json"] = `{"name": "Test Plugin", "pluginId": "test_plugin", "version": "2.0.0", "description": "A test plugin", "author": "Test Author", "main": "index.tsx"}`
		if result := service.InstallPlugin(ctx, "test_plugin", files); !result.Success {
			t.Fatalf("Reinstall failed: %s", result.Error)
		}

		installed := service.GetPlugin(ctx, "test_plugin")
		if installed == nil || installed.Manifest.Version != "2.0.0" {
			t.Errorf("Expected version 2.0.0 after reinstall, got %+v", installed)
		}
	})
}

func TestServiceListAndRemove(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if plugins := service.GetInstalledPlugins(ctx); len(plugins) != 0 {
		t.Errorf("Expected empty store, got %d plugins", len(plugins))
	}

	for _, id := range []string{"alpha_plugin", "beta_plugin"} {
		files := map[string]string{
			"manifest.json": `{"name": "P", "pluginId": "` + id + `", "version": "1.0.0", "description": "d", "author": "a", "main": "index.tsx"}`,
			"index.tsx":     "code",
		}
		if result := service.InstallPlugin(ctx, id, files); !result.Success {
			t.Fatalf("Install of %s failed: %s", id, result.Error)
		}
	}

	plugins := service.GetInstalledPlugins(ctx)
	if len(plugins) != 2 {
		t.Fatalf("Expected 2 plugins, got %d", len(plugins))
	}

	if !service.RemovePlugin(ctx, "alpha_plugin") {
		t.Error("Expected removal of installed plugin to succeed")
	}
	if service.RemovePlugin(ctx, "alpha_plugin") {
		t.Error("Expected second removal to fail")
	}
	if service.RemovePlugin(ctx, "never_installed") {
		t.Error("Expected removal of unknown plugin to fail")
	}

	if remaining := service.GetInstalledPlugins(ctx); len(remaining) != 1 {
		t.Errorf("Expected 1 plugin after removal, got %d", len(remaining))
	}
}

func TestServiceGetPluginUnknown(t *testing.T) {
	service := newTestService(t)
	if p := service.GetPlugin(context.Background(), "missing_plugin"); p != nil {
		t.Errorf("Expected nil for unknown plugin, got %+v", p)
	}
}

// failingBackend errors on every operation.
type failingBackend struct{}

func (failingBackend) EnsureDirectory(ctx context.Context, path string) error {
	return errors.New("disk on fire")
}
func (failingBackend) WriteFile(ctx context.Context, path, content string) error {
	return errors.New("disk on fire")
}
func (failingBackend) ReadFile(ctx context.Context, path string) (string, error) {
	return "", errors.New("disk on fire")
}
func (failingBackend) PathExists(ctx context.Context, path string) (bool, error) {
	return false, nil
}
func (failingBackend) ListDirectories(ctx context.Context, path string) ([]string, error) {
	return nil, errors.New("disk on fire")
}
func (failingBackend) ReadDirectoryRecursive(ctx context.Context, path string) (map[string]string, error) {
	return nil, errors.New("disk on fire")
}
func (failingBackend) RemoveDirectory(ctx context.Context, path string) error {
	return errors.New("disk on fire")
}

// panickingBackend panics with a non-error value on writes.
type panickingBackend struct {
	failingBackend
}

func (panickingBackend) EnsureDirectory(ctx context.Context, path string) error {
	panic("boom")
}

func TestInstallPluginRecoversPanics(t *testing.T) {
	repo := filerepo.New(panickingBackend{}, "/nowhere")
	service := plugin.NewService(repo, "")

	result := service.InstallPlugin(context.Background(), "test_plugin", validFileSet())
	if result.Success {
		t.Fatal("Expected failure")
	}
	// Non-error panic values are normalized.
	if result.Error != "Unknown error" {
		t.Errorf("Expected 'Unknown error', got %q", result.Error)
	}
}

func TestServiceHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Healthy with count", func(t *testing.T) {
		service := newTestService(t)
		if result := service.InstallPlugin(ctx, "test_plugin", validFileSet()); !result.Success {
			t.Fatalf("Install failed: %s", result.Error)
		}

		status := service.HealthCheck(ctx)
		if status.Status != "healthy" {
			t.Errorf("Expected healthy, got %s", status.Status)
		}
		if status.Message != "Plugin file store healthy. 1 plugins installed." {
			t.Errorf("Unexpected message: %q", status.Message)
		}
	})

	t.Run("Healthy even when the store is broken", func(t *testing.T) {
		repo := filerepo.New(failingBackend{}, "/nowhere")
		service := plugin.NewService(repo, "")

		status := service.HealthCheck(ctx)
		if status.Status != "healthy" {
			t.Errorf("Expected healthy status despite backend failure, got %s", status.Status)
		}
		if status.Message != "Plugin file store healthy. 0 plugins installed." {
			t.Errorf("Unexpected message: %q", status.Message)
		}
	})
}

func TestDefaultService(t *testing.T) {
	service := newTestService(t)
	plugin.SetDefault(service)
	t.Cleanup(func() { plugin.SetDefault(nil) })

	if plugin.Default() != service {
		t.Error("Expected Default to return the service set with SetDefault")
	}
}
