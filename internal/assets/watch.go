package assets

import (
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports files that changed on disk. Events are collected on a
// background goroutine; Changed is polled from the render loop so that any
// GPU work triggered by a change stays on the context thread.
type Watcher struct {
	fsw     *fsnotify.Watcher
	lg      *log.Logger
	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher watches the given files or directories (non-recursively).
func NewWatcher(lg *log.Logger, paths ...string) (*Watcher, error) {
	if lg == nil {
		lg = log.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsw:     fsw,
		lg:      lg,
		changes: make(chan string, 64),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			select {
			case w.changes <- filepath.Clean(ev.Name):
			default:
				w.lg.Warn("dropping file change, queue full", "path", ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.lg.Warn("file watcher error", "err", err)
		}
	}
}

// Changed drains pending change notifications without blocking. Each path
// appears at most once.
func (w *Watcher) Changed() []string {
	var out []string
	seen := make(map[string]bool)
	for {
		select {
		case p := <-w.changes:
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		default:
			return out
		}
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
