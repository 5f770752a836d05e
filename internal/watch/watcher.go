package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event before reloading.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher watches a dataset file and calls a reload callback when it changes.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	reloadFn func() error
	debounce time.Duration
	logger   *slog.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher creates a watcher for filePath. Nothing happens until Start is called.
func NewFileWatcher(filePath string, reloadFn func() error, logger *slog.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", filePath, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Editors often replace the file on save, so watch its directory.
	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &FileWatcher{
		watcher:  watcher,
		filePath: abs,
		reloadFn: reloadFn,
		debounce: DefaultDebounce,
		logger:   logger.With("component", "watch", "path", abs),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching for file changes in the background.
func (fw *FileWatcher) Start() {
	go fw.watch()
}

// Stop stops watching. It is safe to call more than once.
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.done)
		_ = fw.watcher.Close()
	})
}

func (fw *FileWatcher) watch() {
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.filePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(fw.debounce, fw.reload)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", "err", err)

		case <-fw.done:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (fw *FileWatcher) reload() {
	select {
	case <-fw.done:
		return
	default:
	}
	if err := fw.reloadFn(); err != nil {
		fw.logger.Error("dataset reload failed", "err", err)
		return
	}
	fw.logger.Info("dataset reloaded")
}
