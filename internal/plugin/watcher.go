// This file implements a file system watcher for the plugin store
// directory. It uses OS-level file system events to detect out-of-band
// changes (manual plugin drops, deletions) and triggers a registry sync.

package plugin

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherService watches the plugin store directory and invokes the
// onChange callback, debounced, whenever plugin files appear, change or
// disappear.
type WatcherService struct {
	basePath      string
	onChange      func(changedPaths []string)
	watcher       *fsnotify.Watcher
	changedPaths  map[string]bool
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a watcher over the plugin store root.
func NewWatcherService(basePath string, onChange func(changedPaths []string)) *WatcherService {
	return &WatcherService{
		basePath:      basePath,
		onChange:      onChange,
		changedPaths:  make(map[string]bool),
		debounceDelay: 2 * time.Second, // Wait 2 seconds after last change before syncing
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the plugin store directory for changes.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	// Watch the store root and every existing plugin directory.
	err = filepath.WalkDir(w.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	log.Printf("File watcher started for plugin store: %s", w.basePath)

	go w.processEvents()

	return nil
}

// Stop stops the file watcher service.
func (w *WatcherService) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *WatcherService) handleEvent(event fsnotify.Event) {
	// Chmod events fire when files are merely read or browsed.
	if event.Op == fsnotify.Chmod {
		return
	}

	hasRelevantOp := (event.Op&fsnotify.Create == fsnotify.Create) ||
		(event.Op&fsnotify.Write == fsnotify.Write) ||
		(event.Op&fsnotify.Remove == fsnotify.Remove) ||
		(event.Op&fsnotify.Rename == fsnotify.Rename)
	if !hasRelevantOp {
		return
	}

	info, err := os.Stat(event.Name)
	isDir := err == nil && info.IsDir()

	// New plugin directories need their own watch.
	if event.Op&fsnotify.Create == fsnotify.Create && isDir {
		w.watcher.Add(event.Name)
	}

	w.mu.Lock()
	w.changedPaths[event.Name] = true
	w.changedPaths[filepath.Dir(event.Name)] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.flushChanges)
	w.mu.Unlock()
}

func (w *WatcherService) flushChanges() {
	w.mu.Lock()
	if len(w.changedPaths) == 0 {
		w.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.changedPaths))
	for path := range w.changedPaths {
		changed = append(changed, path)
	}
	w.changedPaths = make(map[string]bool)
	w.mu.Unlock()

	log.Printf("Plugin store changed (%d paths), syncing registry", len(changed))
	if w.onChange != nil {
		w.onChange(changed)
	}
}
