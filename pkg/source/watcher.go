package source

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/runshape/pkg/run"
)

// DefaultDebounce is how long a file must be quiet before it is re-read.
const DefaultDebounce = 100 * time.Millisecond

// Watcher re-reads a snapshot file whenever it changes and publishes the
// result on Updates. The directory is watched rather than the file so that
// editors replacing the file by rename are still seen.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Updates  <-chan run.Query

	file    *File
	updates chan run.Query
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the snapshot at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan run.Query, 4)
	return &Watcher{
		Path:     abs,
		Debounce: DefaultDebounce,
		Updates:  ch,
		file:     NewFile(abs),
		updates:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Fetch reads the file once.
func (w *Watcher) Fetch(ctx context.Context) run.Query {
	return w.file.Fetch(ctx)
}

// Start begins watching. Updates stop when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop closes the watcher and the Updates channel. Callers must keep
// draining Updates, or cancel the context passed to Start, until Stop returns.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.updates)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	var pending time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < debounce {
				continue
			}
			pending = time.Time{}
			select {
			case w.updates <- w.file.Fetch(ctx):
			case <-ctx.Done():
				return
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
