package loader

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/rcliao/rivebrain/internal/model"
)

// BuildFunc produces a fresh brain from the watched directory.
type BuildFunc func() (*model.Brain, error)

// ReloadFunc receives the result of every rebuild.
type ReloadFunc func(brain *model.Brain, err error)

// Watcher rebuilds a brain whenever documents in a directory change.
// Each rebuild starts from an empty brain; nothing is shared between
// rebuilds.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	build    BuildFunc
	onReload ReloadFunc
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	reloads  int
}

// NewWatcher watches dir. debounce coalesces bursts of events from editors
// that write a file in several steps.
func NewWatcher(dir string, debounce time.Duration, build BuildFunc, onReload ReloadFunc, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		debounce: debounce,
		build:    build,
		onReload: onReload,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start runs the event loop in a goroutine. It returns immediately.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	go w.loop(ctx)
}

// Stop ends the event loop and releases the fsnotify watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.watcher.Close()
}

// Reloads reports how many rebuilds have run.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) loop(ctx context.Context) {
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
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("Document changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
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
			w.log.Warn("Watch error", zap.String("dir", w.dir), zap.Error(err))
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	brain, err := w.build()
	if err != nil {
		w.log.Warn("Reload failed", zap.String("dir", w.dir), zap.Error(err))
	} else {
		w.log.Info("Reloaded", zap.String("dir", w.dir), zap.Int("topics", len(brain.Topics)))
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	if w.onReload != nil {
		w.onReload(brain, err)
	}
}

func relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
