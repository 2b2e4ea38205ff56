package filerepo_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/filerepo"
)

func TestDirectBackend(t *testing.T) {
	ctx := context.Background()
	backend := filerepo.NewDirectBackend()
	root := t.TempDir()

	t.Run("EnsureDirectory is idempotent", func(t *testing.T) {
		dir := filepath.Join(root, "a", "b", "c")
		if err := backend.EnsureDirectory(ctx, dir); err != nil {
			t.Fatalf("EnsureDirectory failed: %v", err)
		}
		if err := backend.EnsureDirectory(ctx, dir); err != nil {
			t.Fatalf("Second EnsureDirectory failed: %v", err)
		}
	})

	t.Run("Write and read text", func(t *testing.T) {
		path := filepath.Join(root, "file.txt")
		if err := backend.WriteFile(ctx, path, "hello"); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		content, err := backend.ReadFile(ctx, path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if content != "hello" {
			t.Errorf("Expected 'hello', got %q", content)
		}
	})

	t.Run("Data URI content is decoded", func(t *testing.T) {
		raw := []byte{0x89, 0x50, 0x4e, 0x47}
		uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw)
		path := filepath.Join(root, "img.png")
		if err := backend.WriteFile(ctx, path, uri); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		onDisk, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(onDisk) != string(raw) {
			t.Errorf("Expected decoded bytes on disk, got %v", onDisk)
		}
	})

	t.Run("ReadFile reports missing files", func(t *testing.T) {
		_, err := backend.ReadFile(ctx, filepath.Join(root, "nope.txt"))
		if !errors.Is(err, filerepo.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PathExists never errors", func(t *testing.T) {
		exists, err := backend.PathExists(ctx, filepath.Join(root, "nope"))
		if err != nil || exists {
			t.Errorf("Expected (false, nil), got (%v, %v)", exists, err)
		}
	})

	t.Run("ListDirectories skips files", func(t *testing.T) {
		dir := filepath.Join(root, "list")
		os.MkdirAll(filepath.Join(dir, "sub1"), 0755)
		os.MkdirAll(filepath.Join(dir, "sub2"), 0755)
		os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0644)

		dirs, err := backend.ListDirectories(ctx, dir)
		if err != nil {
			t.Fatalf("ListDirectories failed: %v", err)
		}
		if len(dirs) != 2 {
			t.Errorf("Expected 2 directories, got %v", dirs)
		}
	})

	t.Run("ReadDirectoryRecursive uses slash-joined relative keys", func(t *testing.T) {
		dir := filepath.Join(root, "tree")
		os.MkdirAll(filepath.Join(dir, "nested"), 0755)
		os.WriteFile(filepath.Join(dir, "top.txt"), []byte("a"), 0644)
		os.WriteFile(filepath.Join(dir, "nested", "deep.txt"), []byte("b"), 0644)

		files, err := backend.ReadDirectoryRecursive(ctx, dir)
		if err != nil {
			t.Fatalf("ReadDirectoryRecursive failed: %v", err)
		}
		if files["top.txt"] != "a" || files["nested/deep.txt"] != "b" {
			t.Errorf("Unexpected file map: %v", files)
		}
	})

	t.Run("RemoveDirectory tolerates missing paths", func(t *testing.T) {
		if err := backend.RemoveDirectory(ctx, filepath.Join(root, "never")); err != nil {
			t.Errorf("Expected no error for missing path, got %v", err)
		}
	})
}

func TestRepository(t *testing.T) {
	ctx := context.Background()

	newRepo := func(t *testing.T) *filerepo.Repository {
		return filerepo.New(filerepo.NewDirectBackend(), t.TempDir())
	}

	t.Run("Write and read a plugin tree", func(t *testing.T) {
		repo := newRepo(t)
		files := map[string]string{
			"manifest.json":       `{"pluginId": "demo_plugin"}`,
			"pages/Dashboard.tsx": "code",
		}
		written, err := repo.WritePluginFiles(ctx, "demo_plugin", files)
		if err != nil {
			t.Fatalf("WritePluginFiles failed: %v", err)
		}
		if written.FilesWritten != 2 {
			t.Errorf("Expected 2 files written, got %d", written.FilesWritten)
		}
		if written.Path != repo.PluginPath("demo_plugin") {
			t.Errorf("Expected path %s, got %s", repo.PluginPath("demo_plugin"), written.Path)
		}

		read, manifest, err := repo.ReadPluginFiles(ctx, "demo_plugin")
		if err != nil {
			t.Fatalf("ReadPluginFiles failed: %v", err)
		}
		if manifest == nil || manifest.PluginID != "demo_plugin" {
			t.Errorf("Expected parsed manifest, got %+v", manifest)
		}
		if read["pages/Dashboard.tsx"] != "code" {
			t.Errorf("Unexpected files: %v", read)
		}
	})

	t.Run("Reading an unknown plugin", func(t *testing.T) {
		repo := newRepo(t)
		_, _, err := repo.ReadPluginFiles(ctx, "missing_plugin")
		if !errors.Is(err, filerepo.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Unparseable manifest yields files and nil manifest", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.WritePluginFiles(ctx, "demo_plugin", map[string]string{"manifest.json": "{broken"}); err != nil {
			t.Fatalf("WritePluginFiles failed: %v", err)
		}
		files, manifest, err := repo.ReadPluginFiles(ctx, "demo_plugin")
		if err != nil {
			t.Fatalf("ReadPluginFiles failed: %v", err)
		}
		if manifest != nil {
			t.Errorf("Expected nil manifest, got %+v", manifest)
		}
		if files["manifest.json"] != "{broken" {
			t.Errorf("Expected raw file content, got %v", files)
		}
	})

	t.Run("Concurrent writes share one initialization", func(t *testing.T) {
		repo := newRepo(t)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := fmt.Sprintf("plugin_%d", n)
				_, errs[n] = repo.WritePluginFiles(ctx, id, map[string]string{"manifest.json": "{}"})
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				t.Fatalf("Concurrent WritePluginFiles failed: %v", err)
			}
		}
		dirs, err := repo.ListPluginDirs(ctx)
		if err != nil {
			t.Fatalf("ListPluginDirs failed: %v", err)
		}
		if len(dirs) != 8 {
			t.Errorf("Expected 8 plugin dirs, got %d", len(dirs))
		}
	})

	t.Run("List and remove", func(t *testing.T) {
		repo := newRepo(t)
		for _, id := range []string{"one_plugin", "two_plugin"} {
			if _, err := repo.WritePluginFiles(ctx, id, map[string]string{"manifest.json": "{}"}); err != nil {
				t.Fatalf("WritePluginFiles failed: %v", err)
			}
		}

		dirs, err := repo.ListPluginDirs(ctx)
		if err != nil {
			t.Fatalf("ListPluginDirs failed: %v", err)
		}
		if len(dirs) != 2 {
			t.Errorf("Expected 2 plugin dirs, got %v", dirs)
		}

		if err := repo.RemovePlugin(ctx, "one_plugin"); err != nil {
			t.Fatalf("RemovePlugin failed: %v", err)
		}
		if err := repo.RemovePlugin(ctx, "one_plugin"); !errors.Is(err, filerepo.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on double remove, got %v", err)
		}
	})
}
