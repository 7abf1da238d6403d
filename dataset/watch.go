package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("loader closed")

// Watch evicts the cached table for path whenever the file is written,
// removed or renamed. The parent directory is watched so that editors which
// replace the file still trigger eviction. The first call starts the event
// loop, which runs until ctx is cancelled or Close is called.
func (l *Loader) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve dataset path %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if l.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		l.watcher = w
		l.stopCh = make(chan struct{})
		l.doneCh = make(chan struct{})
		go l.run(ctx, w)
	}
	if !l.dirs[dir] {
		if err := l.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		l.dirs[dir] = true
	}
	l.files[abs] = true
	l.logger.Info("watching dataset", zap.String("path", abs))
	return nil
}

// Close stops the watcher. The cache stays usable.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	w := l.watcher
	l.mu.Unlock()

	if w == nil {
		return nil
	}
	close(l.stopCh)
	<-l.doneCh
	return w.Close()
}

func (l *Loader) run(ctx context.Context, w *fsnotify.Watcher) {
	defer close(l.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			l.handleEvent(event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.logger.Warn("dataset watcher error", zap.Error(err))
		}
	}
}

func (l *Loader) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	name := filepath.Clean(event.Name)

	l.mu.RLock()
	watched := l.files[name]
	l.mu.RUnlock()
	if !watched {
		return
	}

	l.logger.Debug("dataset changed", zap.String("path", name), zap.String("op", event.Op.String()))
	l.Invalidate(name)
}
