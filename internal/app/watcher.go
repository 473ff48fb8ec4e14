package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// Watcher reports writes to a set of files in one directory. Bursts of
// writes are debounced and pending changes coalesce into one signal.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]struct{}
	changes chan struct{}
	stop    chan struct{}
	done    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches dir for writes to the named files.
func NewWatcher(dir string, files ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		if closeErr := fw.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		files:   make(map[string]struct{}, len(files)),
		changes: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, f := range files {
		w.files[filepath.Base(f)] = struct{}{}
	}
	go w.loop()
	return w, nil
}

// Changes delivers a value after one of the watched files changed.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if _, watched := w.files[filepath.Base(event.Name)]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error", "error", err)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceInterval, w.signal)
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.stop)
	<-w.done
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
