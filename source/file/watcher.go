package filesource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// eventChannelBuffer sets the watch event channel capacity. Bursts larger
// than this drop events rather than block the fsnotify loop.
const eventChannelBuffer = 500

// WatchOperation describes what happened to a watched file.
type WatchOperation string

const (
	// WatchOpCreate indicates a file was created.
	WatchOpCreate WatchOperation = "create"
	// WatchOpModify indicates a file's content changed.
	WatchOpModify WatchOperation = "modify"
	// WatchOpDelete indicates a file was removed.
	WatchOpDelete WatchOperation = "delete"
)

// WatchEvent is a debounced, content-deduplicated file change notification.
type WatchEvent struct {
	// Path is relative to the watched drop directory.
	Path string
	// Operation is the change type.
	Operation WatchOperation
	// AbsPath is the absolute path of the changed file.
	AbsPath string
}

// DropWatcher watches a drop directory tree for assessment document files.
// Raw fsnotify events are debounced and hashed so editors and atomic-rename
// writers produce a single event per real content change.
type DropWatcher struct {
	config  Config
	rootDir string
	watcher *fsnotify.Watcher
	events  chan WatchEvent
	logger  *slog.Logger

	// pendingMu guards pending, the debounce accumulation map.
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// hashMu guards hashes, content hashes keyed by relative path.
	hashMu sync.RWMutex
	hashes map[string]string

	droppedEvents atomic.Int64
}

// NewDropWatcher creates a watcher for the given drop directory.
func NewDropWatcher(config Config, rootDir string, logger *slog.Logger) *DropWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &DropWatcher{
		config:  config,
		rootDir: rootDir,
		events:  make(chan WatchEvent, eventChannelBuffer),
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
	}
}

// Start begins watching the drop directory tree. The event loop runs until
// ctx is cancelled or Stop is called.
func (w *DropWatcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.rootDir, 0755); err != nil {
		return fmt.Errorf("create drop directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	w.watcher = watcher

	if err := w.addWatchesRecursive(w.rootDir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("watch drop directory: %w", err)
	}

	go w.processEvents(ctx)

	w.logger.Info("Drop directory watcher started",
		"dir", w.rootDir,
		"patterns", w.config.Patterns,
		"debounce", w.config.GetDebounceDelay())
	return nil
}

// Stop closes the underlying watcher, which ends the event loop.
func (w *DropWatcher) Stop() error {
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// Events returns the channel of debounced watch events. The channel is
// closed when the watcher stops.
func (w *DropWatcher) Events() <-chan WatchEvent {
	return w.events
}

// DroppedEvents reports how many events were discarded because the event
// channel was full.
func (w *DropWatcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

// SetHash records a content hash for a file. The initial scan seeds hashes
// this way so already-published documents are not re-emitted when fsnotify
// replays activity on them.
func (w *DropWatcher) SetHash(relPath, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[relPath] = hash
}

// GetHash returns the recorded content hash for a file.
func (w *DropWatcher) GetHash(relPath string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[relPath]
	return hash, ok
}

// addWatchesRecursive walks dir and registers a watch on every
// subdirectory, skipping hidden directories.
func (w *DropWatcher) addWatchesRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != dir {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}

// processEvents is the watcher event loop. It accumulates raw fsnotify
// events and flushes them on a debounce tick.
func (w *DropWatcher) processEvents(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.config.GetDebounceDelay())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", "error", err)
		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent filters a raw fsnotify event and adds it to the pending
// batch. Directory creation extends the watch tree instead.
func (w *DropWatcher) handleFSEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.handleNewDirectory(event.Name)
			return
		}
	}

	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil || !w.matchesPattern(relPath) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
}

// handleNewDirectory watches a directory that appeared after startup and
// enqueues any matching files already inside it. Directories moved into the
// drop dir arrive fully populated, so their contents never produce their
// own fsnotify events.
func (w *DropWatcher) handleNewDirectory(dir string) {
	if strings.HasPrefix(filepath.Base(dir), ".") {
		return
	}
	if err := w.addWatchesRecursive(dir); err != nil {
		w.logger.Warn("Failed to watch new directory", "dir", dir, "error", err)
		return
	}

	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		relPath, relErr := filepath.Rel(w.rootDir, path)
		if relErr != nil || !w.matchesPattern(relPath) {
			return nil
		}
		w.pendingMu.Lock()
		w.pending[path] |= fsnotify.Create
		w.pendingMu.Unlock()
		return nil
	})
}

// flushPending drains the debounce batch, deduplicates by content hash, and
// emits one watch event per file that really changed.
func (w *DropWatcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for absPath, op := range batch {
		relPath, err := filepath.Rel(w.rootDir, absPath)
		if err != nil {
			continue
		}

		if op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			if _, statErr := os.Stat(absPath); statErr == nil {
				// Rename target still exists (editor swap); fall through
				// and let the content hash decide.
			} else {
				w.forgetHash(relPath)
				w.sendEvent(WatchEvent{Path: relPath, Operation: WatchOpDelete, AbsPath: absPath})
				continue
			}
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			if os.IsNotExist(err) {
				w.forgetHash(relPath)
				w.sendEvent(WatchEvent{Path: relPath, Operation: WatchOpDelete, AbsPath: absPath})
			} else {
				w.logger.Warn("Failed to read changed file", "path", relPath, "error", err)
			}
			continue
		}

		hash := ContentHash(data)
		w.hashMu.Lock()
		previous, known := w.hashes[relPath]
		if known && previous == hash {
			w.hashMu.Unlock()
			continue
		}
		w.hashes[relPath] = hash
		w.hashMu.Unlock()

		operation := WatchOpCreate
		if known {
			operation = WatchOpModify
		}
		w.sendEvent(WatchEvent{Path: relPath, Operation: operation, AbsPath: absPath})
	}
}

func (w *DropWatcher) forgetHash(relPath string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, relPath)
}

// sendEvent delivers an event without blocking the watcher loop.
func (w *DropWatcher) sendEvent(event WatchEvent) {
	select {
	case w.events <- event:
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Watch event channel full, dropping event",
			"path", event.Path,
			"operation", event.Operation,
			"total_dropped", dropped)
	}
}

// matchesPattern reports whether a relative path matches any configured
// pattern. Hidden files and files under hidden directories never match.
func (w *DropWatcher) matchesPattern(relPath string) bool {
	slashPath := filepath.ToSlash(relPath)
	for _, segment := range strings.Split(slashPath, "/") {
		if strings.HasPrefix(segment, ".") {
			return false
		}
	}
	for _, pattern := range w.config.Patterns {
		if ok, err := doublestar.Match(pattern, slashPath); err == nil && ok {
			return true
		}
	}
	return false
}

// ContentHash returns the hex-encoded SHA-256 digest of data. Watch events
// and the initial scan share this to decide whether content really changed.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
