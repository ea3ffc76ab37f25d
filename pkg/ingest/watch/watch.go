// Package watch re-indexes text and markdown files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/papercomputeco/kauni/pkg/ingest"
	"github.com/papercomputeco/kauni/pkg/ingest/worker"
	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/vector"
)

const defaultDebounce = 500 * time.Millisecond

var fileNamespace = uuid.MustParse("6f1c7e0a-3b1d-4c55-9a55-8d0b2f6a4c11")

// Enqueuer accepts indexing jobs.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Config configures a Watcher.
type Config struct {
	Root string

	// Debounce is how long a file must stay quiet before it is re-read.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher watches a directory tree and enqueues changed files for indexing.
type Watcher struct {
	root     string
	debounce time.Duration
	queue    Enqueuer
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// DocumentID derives a stable document ID from a file path, so that
// re-indexing a changed file replaces its previous version.
func DocumentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(fileNamespace, []byte(path)).String()
}

// New creates a Watcher over every directory below cfg.Root.
func New(cfg Config, queue Enqueuer) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:     cfg.Root,
		debounce: cfg.Debounce,
		queue:    queue,
		watcher:  fw,
		logger:   cfg.Logger,
		timers:   make(map[string]*time.Timer),
	}

	if err := w.addTree(cfg.Root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	return w, nil
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	w.logger.Info("watching for document changes", "root", w.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory",
					"path", event.Name,
					"error", err,
				)
			}
		}
		return
	}

	if !ingest.IsTextFile(event.Name) {
		return
	}

	w.schedule(event.Name)
}

// schedule re-reads path once it has been quiet for the debounce interval.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.enqueue(path)
	})
}

func (w *Watcher) enqueue(path string) {
	doc, err := ingest.ReadTextFile(path)
	if err != nil {
		w.logger.Warn("failed to read changed file",
			"path", path,
			"error", err,
		)
		return
	}
	doc.ID = DocumentID(path)

	if !w.queue.Enqueue(worker.Job{Source: path, Docs: []vector.Document{doc}}) {
		w.logger.Warn("dropped changed file", "path", path)
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	_ = w.watcher.Close()
}
