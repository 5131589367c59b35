package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watcher monitors a single file for external changes. It watches the parent
// directory rather than the file itself, because editors that write via
// rename (and the store's own atomic saves) replace the inode and a direct
// file watch would go stale after the first swap.
//
// Write events are debounced: a burst of writes restarts the timer, and the
// change callback only fires once the file has been quiet for the configured
// interval. Remove and rename events for the watched file fire the remove
// callback immediately.
type watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()
	onRemove func()
	log      zerolog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// newWatcher installs a directory watch for path's parent and starts the
// event loop. The parent directory may not exist yet when the store has not
// saved for the first time, so the add is retried briefly.
func newWatcher(path string, debounce time.Duration, log zerolog.Logger, onChange, onRemove func()) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	add := func() error {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		return fsw.Add(dir)
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(add, policy); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &watcher{
		fsw:      fsw,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		onRemove: onRemove,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer close(w.doneCh)

	// The timer starts stopped; it is armed by the first write event.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-w.stopCh:
			return

		case <-timer.C:
			armed = false
			w.onChange()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if armed {
					if !timer.Stop() {
						<-timer.C
					}
					armed = false
				}
				w.onRemove()
			case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
				if armed && !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
				armed = true
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("file watcher error")
		}
	}
}

// stop shuts the event loop down and waits for it to exit, so no callback can
// run after stop returns.
func (w *watcher) stop() error {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	<-w.doneCh
	return w.fsw.Close()
}
