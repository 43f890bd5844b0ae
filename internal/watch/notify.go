package watch

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// notifyBackend observes inputs through fsnotify. The parent directories are
// watched (more reliable than watching files directly: a rename-replace
// drops a direct file watch) and events are filtered down to the exact input
// set.
type notifyBackend struct {
	fsw     *fsnotify.Watcher
	watched map[string]struct{}
	events  chan string
	errs    chan error
	stop    chan struct{}
	done    chan struct{}
}

func newNotifyBackend(paths []string) (*notifyBackend, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	watched := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, path := range paths {
		watched[filepath.Clean(path)] = struct{}{}
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	n := &notifyBackend{
		fsw:     fsw,
		watched: watched,
		events:  make(chan string, len(paths)),
		errs:    make(chan error, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go n.loop()
	return n, nil
}

func (n *notifyBackend) loop() {
	defer close(n.done)
	for {
		select {
		case <-n.stop:
			return
		case ev, ok := <-n.fsw.Events:
			if !ok {
				return
			}
			path := filepath.Clean(ev.Name)
			if _, ok := n.watched[path]; !ok {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			select {
			case n.events <- path:
			default:
			}
		case err, ok := <-n.fsw.Errors:
			if !ok {
				return
			}
			select {
			case n.errs <- err:
			default:
			}
		}
	}
}

func (n *notifyBackend) Name() string          { return "fsnotify" }
func (n *notifyBackend) Events() <-chan string { return n.events }
func (n *notifyBackend) Errors() <-chan error  { return n.errs }

func (n *notifyBackend) Close() error {
	close(n.stop)
	err := n.fsw.Close()
	<-n.done
	return err
}
