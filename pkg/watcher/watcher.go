package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/resultgraph/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeResultFile ChangeType = iota // A result file was created or written
	ChangeTypeRemoved                      // A result file was removed or renamed
	ChangeTypeQueryFile                    // The query file was written
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeResultFile:
		return "result"
	case ChangeTypeRemoved:
		return "removed"
	case ChangeTypeQueryFile:
		return "query"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchWindow groups raw notifications that arrive together
const batchWindow = 100 * time.Millisecond

// FileWatcher watches a seed directory of result files and, optionally, the
// query file whose PREFIX declarations feed the SPARQL adapter.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	dir       string
	queryFile string
	events    chan ChangeEvent
}

// NewFileWatcher creates a watcher for dir. queryFile may be empty.
func NewFileWatcher(dir, queryFile string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		dir:     filepath.Clean(dir),
		events:  make(chan ChangeEvent, 100),
	}
	if queryFile != "" {
		fw.queryFile = filepath.Clean(queryFile)
	}
	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(fw.dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.dir, err)
	}

	// The query file's directory is watched so editors that replace the file
	// on save keep being tracked.
	if fw.queryFile != "" {
		if qdir := filepath.Dir(fw.queryFile); qdir != fw.dir {
			if err := fw.watcher.Add(qdir); err != nil {
				logging.Warn("failed to watch query file", "path", fw.queryFile, "error", err)
			}
		}
	}

	logging.Info("started watching seed directory", "path", fw.dir)

	go fw.processEvents(ctx)
	return nil
}

// classify maps a raw notification to a change type
func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeType, bool) {
	path := filepath.Clean(event.Name)

	if fw.queryFile != "" && path == fw.queryFile {
		if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
			return ChangeTypeQueryFile, true
		}
		return 0, false
	}

	if filepath.Dir(path) != fw.dir || !strings.EqualFold(filepath.Ext(path), ".json") {
		return 0, false
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return ChangeTypeRemoved, true
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		return ChangeTypeResultFile, true
	}
	return 0, false
}

// processEvents processes file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)

	pending := make(map[ChangeType][]string)
	seen := make(map[string]bool)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		for _, t := range []ChangeType{ChangeTypeRemoved, ChangeTypeQueryFile, ChangeTypeResultFile} {
			if paths := pending[t]; len(paths) > 0 {
				fw.events <- ChangeEvent{Type: t, Paths: paths, Timestamp: time.Now()}
			}
		}
		pending = make(map[ChangeType][]string)
		seen = make(map[string]bool)
	}

	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flush()
				return
			}

			t, relevant := fw.classify(event)
			if !relevant {
				continue
			}
			logging.Trace("file change", "path", event.Name, "op", event.Op.String(), "type", t)

			key := t.String() + ":" + event.Name
			if !seen[key] {
				seen[key] = true
				pending[t] = append(pending[t], event.Name)
			}
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}
