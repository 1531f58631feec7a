package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher follows external edits to the preference file.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts following the preference file. The directory is watched
// rather than the file so atomic replacements are seen. Changes made
// through the store itself are not reported again.
func (s *Store) Watch() (*Watcher, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating preferences dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{fs: fw, done: make(chan struct{})}
	go s.watchLoop(w)
	return w, nil
}

func (s *Store) watchLoop(w *Watcher) {
	defer close(w.done)
	target := filepath.Clean(s.path)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.reload(); err != nil {
				s.logger.Warn("reloading preferences failed", "error", err)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			s.logger.Warn("preferences watcher error", "error", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
