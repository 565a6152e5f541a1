package source

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the write bursts editors produce on save.
const debounceDelay = 50 * time.Millisecond

// watcher reloads a FileStore when its backing file changes.
type watcher struct {
	fsw    *fsnotify.Watcher
	done   chan struct{}
	closed sync.Once
}

// Watch starts watching the backing file. onReload is invoked (possibly from
// the watcher goroutine) after each successful reload; it may be nil.
// Watching the parent directory instead of the file itself survives the
// rename-over-save pattern most editors use.
func (f *FileStore) Watch(onReload func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(f.path)); err != nil {
		fsw.Close()
		return err
	}

	w := &watcher{fsw: fsw, done: make(chan struct{})}
	f.watcher = w
	go w.run(f, onReload)
	return nil
}

func (w *watcher) run(f *FileStore, onReload func()) {
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			if err := f.reload(); err != nil {
				// The file may be mid-rewrite; the next event retries.
				continue
			}
			if onReload != nil {
				onReload()
			}

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *watcher) close() error {
	var err error
	w.closed.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}
