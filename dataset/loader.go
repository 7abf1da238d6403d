package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader memoizes loaded tables by absolute path. An entry is reused while
// the file's modification time is unchanged; concurrent misses for the same
// path share one load.
type Loader struct {
	cols   Columns
	logger *zap.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	tables map[string]*Table

	// watcher state, see watch.go
	watcher *fsnotify.Watcher
	dirs    map[string]bool
	files   map[string]bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	closed  bool
}

// NewLoader creates a Loader. A nil logger is replaced by a no-op logger.
func NewLoader(cols Columns, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		cols:   cols.withDefaults(),
		logger: logger,
		tables: make(map[string]*Table),
		dirs:   make(map[string]bool),
		files:  make(map[string]bool),
	}
}

// Get returns the table for path, loading it on a miss or when the file
// changed since the cached load.
func (l *Loader) Get(ctx context.Context, path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat dataset %s: %w", abs, err)
	}

	l.mu.RLock()
	cached := l.tables[abs]
	l.mu.RUnlock()
	if cached != nil && cached.ModTime.Equal(info.ModTime()) {
		return cached, nil
	}

	ch := l.group.DoChan(abs, func() (interface{}, error) {
		start := time.Now()
		t, err := Load(abs, l.cols)
		if err != nil {
			l.logger.Error("dataset load failed", zap.String("path", abs), zap.Error(err))
			return nil, err
		}
		l.mu.Lock()
		l.tables[abs] = t
		l.mu.Unlock()
		l.logger.Info("dataset loaded",
			zap.String("path", abs),
			zap.Int("rows", t.Len()),
			zap.Int("columns", len(t.Schema.Columns)),
			zap.Strings("dimensions", t.Schema.DimensionKeys()),
			zap.Strings("measures", t.Schema.MeasureKeys()),
			zap.Strings("years", t.Years[1:]),
			zap.Duration("took", time.Since(start)),
		)
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// Invalidate drops the cached entry for path.
func (l *Loader) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	l.mu.Lock()
	_, ok := l.tables[abs]
	delete(l.tables, abs)
	l.mu.Unlock()
	if ok {
		l.logger.Debug("dataset cache invalidated", zap.String("path", abs))
	}
}

func (l *Loader) cached(abs string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.tables[abs]
	return ok
}
