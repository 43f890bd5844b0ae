package watch

import (
	"os"
	"time"
)

// fileState is the per-input fingerprint the poller compares between ticks.
// Size is included because an atomic-rename replace can land within the same
// mtime granularity.
type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

// pollBackend observes the exact input files by stat polling. Polling is the
// default backend: editors that replace files via atomic rename are invisible
// to inode-based native watchers, while a stat on the path always sees the
// current file.
type pollBackend struct {
	paths    []string
	interval time.Duration
	states   map[string]fileState
	events   chan string
	errs     chan error
	stop     chan struct{}
	done     chan struct{}
}

func newPollBackend(paths []string, interval time.Duration) *pollBackend {
	p := &pollBackend{
		paths:    paths,
		interval: interval,
		states:   make(map[string]fileState, len(paths)),
		events:   make(chan string, len(paths)),
		errs:     make(chan error, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, path := range paths {
		p.states[path] = stat(path)
	}
	go p.loop()
	return p
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}

func (p *pollBackend) loop() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for _, path := range p.paths {
				current := stat(path)
				previous := p.states[path]
				if current != previous {
					p.states[path] = current
					select {
					case p.events <- path:
					default:
						// Event channel full; the pending change is
						// already represented.
					}
				}
			}
		}
	}
}

func (p *pollBackend) Name() string          { return "poll" }
func (p *pollBackend) Events() <-chan string { return p.events }
func (p *pollBackend) Errors() <-chan error  { return p.errs }

func (p *pollBackend) Close() error {
	close(p.stop)
	<-p.done
	return nil
}
