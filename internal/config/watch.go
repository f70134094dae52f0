package config

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls config file modification times and calls onChange for each file
// that appeared, changed or disappeared since the previous scan.
type FileWatcher struct {
	Paths    []string
	Interval time.Duration

	onChange func(string)
	stopCh   chan struct{}
	stopOnce sync.Once
	seen     map[string]time.Time // zero time for a missing file
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Paths:    paths,
		Interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		seen:     make(map[string]time.Time),
	}
}

// Start primes the modification times and begins polling in a goroutine.
func (w *FileWatcher) Start() {
	w.scan(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *FileWatcher) scan(prime bool) {
	for _, p := range w.Paths {
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		last, ok := w.seen[p]
		w.seen[p] = mt
		if prime || !ok || mt.Equal(last) {
			continue
		}
		if w.onChange != nil {
			w.onChange(p)
		}
	}
}
