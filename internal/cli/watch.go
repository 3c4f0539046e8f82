package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// fileWatcher reports changes to a fixed set of files. It watches their
// parent directories so files replaced by rename-on-save stay tracked.
type fileWatcher struct {
	w      *fsnotify.Watcher
	files  map[string]string // absolute path -> path as given
	logger *log.Logger
}

func newFileWatcher(paths []string, logger *log.Logger) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	fw := &fileWatcher{w: w, files: make(map[string]string, len(paths)), logger: logger}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		fw.files[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return fw, nil
}

// run calls fn once per changed file until ctx is done. Calls are serialized.
func (fw *fileWatcher) run(ctx context.Context, fn func(path string)) error {
	defer fw.w.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    = make(chan struct{}, 1)
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			path, tracked := fw.files[filepath.Clean(ev.Name)]
			if !tracked || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.logger.Debug("file changed", "path", path, "op", ev.Op.String())
			mu.Lock()
			pending[path] = true
			if timer == nil {
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(watchDebounce)
			}
			mu.Unlock()

		case <-fire:
			mu.Lock()
			changed := pending
			pending = make(map[string]bool)
			mu.Unlock()
			for path := range changed {
				fn(path)
			}

		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", "error", err)
		}
	}
}
