package registry

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"response-guard/internal/common/logger"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a registry document whenever it changes on disk. The
// parent directory is watched so editors that replace the file are noticed.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*ContractRegistry, error)
	logger   logger.Logger
	debounce time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Watch starts watching path. onChange runs on the watcher goroutine after
// each burst of changes settles.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*ContractRegistry, error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		watcher:  fw,
		onChange: onChange,
		logger:   log.WithFields(map[string]interface{}{"registry": abs}),
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.run(ctx)

	w.logger.Info("watching contract registry", nil)
	return w, nil
}

// Stop ends the watch and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		if err := w.watcher.Close(); err != nil {
			w.logger.WithError(err).Warn("error closing registry watcher", nil)
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("registry watcher error", nil)

		case <-fire:
			fire = nil
			reg, err := LoadRegistry(w.path)
			if err != nil {
				w.logger.WithError(err).Warn("registry reload failed", nil)
			}
			w.onChange(reg, err)
		}
	}
}
