package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher hot-reloads the configuration file and notifies subscribers.
// Reload failures keep the previous config in place.
type Watcher struct {
	path      string
	mu        sync.RWMutex
	current   *Config
	callbacks []func(*Config)
	fs        *fsnotify.Watcher
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// NewWatcher starts watching the directory containing path. Watching the
// directory instead of the file survives editors that replace the file on save.
func NewWatcher(path string, initial *Config) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = fs.Add(filepath.Dir(path)); err != nil {
		_ = fs.Close()
		return nil, err
	}
	w := &Watcher{
		path:    path,
		current: initial,
		fs:      fs,
		stopCh:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// OnReload registers a callback invoked with each successfully reloaded config.
func (w *Watcher) OnReload(fn func(*Config)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, fn)
	w.mu.Unlock()
}

// Current returns the most recently loaded config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop ends the watch loop and releases the fsnotify watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fs.Close()
	})
}

func (w *Watcher) loop() {
	// Debounce rapid write/rename bursts from editors.
	var timer *time.Timer
	const debounce = 500 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, w.reload)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		log.WithError(err).Error("config reload failed, keeping previous config")
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	log.WithField("path", w.path).Info("configuration reloaded")
	for _, fn := range callbacks {
		fn(cfg)
	}
}
