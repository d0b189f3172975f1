// Package watch re-analyzes data files as they change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler receives the path of a data file that changed.
type Handler func(path string)

// Watcher raises one Handler call per settled change to a data file in
// a directory. Editors and spreadsheet apps fire several events per
// save, so changes are deduped by (modtime, size) per path.
type Watcher struct {
	dir  string
	fsw  *fsnotify.Watcher
	mu   sync.Mutex
	seen map[string]fingerprint
}

type fingerprint struct {
	mod  time.Time
	size int64
}

// New prepares a watcher on dir. Call Run to start delivering events.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, fsw: fsw, seen: make(map[string]fingerprint)}, nil
}

// IsDataFile reports whether the watcher reacts to a path.
func IsDataFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}

// Run delivers handler calls until ctx is done or the underlying
// watcher fails. The handler runs on the watch goroutine.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !IsDataFile(event.Name) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}
			if w.changed(event.Name, info) {
				handler(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) changed(path string, info os.FileInfo) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	fp := fingerprint{mod: info.ModTime(), size: info.Size()}
	if prev, ok := w.seen[path]; ok && prev == fp {
		return false
	}
	w.seen[path] = fp
	return true
}
