// Package watch re-triggers compilation when observed input files change.
//
// The controller binds to the resolved input files only — imports pulled in
// by the engine are not separately watched. Change notifications are
// debounced, and a single-slot worker guarantees that triggers arriving while
// a compile is running coalesce into exactly one follow-up compile instead of
// piling up concurrent passes.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/stylebuild/internal/compile"
	sberrors "git.home.luguber.info/inful/stylebuild/internal/errors"
	"git.home.luguber.info/inful/stylebuild/internal/logfields"
	"git.home.luguber.info/inful/stylebuild/internal/metrics"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultDebounce     = 150 * time.Millisecond
)

// backend is a source of change notifications for the watched input set.
type backend interface {
	Name() string
	Events() <-chan string
	Errors() <-chan error
	Close() error
}

// Config parameterizes a Controller.
type Config struct {
	Orchestrator *compile.Orchestrator

	// PollInterval is the stat-poll period of the default backend.
	PollInterval time.Duration
	// Debounce is the quiet period after the last change before a compile
	// fires, coalescing rapid successive editor writes.
	Debounce time.Duration
	// Native selects the fsnotify backend instead of polling.
	Native bool
	// RebuildEvery, when positive, schedules unconditional full rebuilds.
	RebuildEvery time.Duration

	Recorder metrics.Recorder
}

// request is one coalesced unit of work for the compile worker.
type request struct {
	changed string
	trigger metrics.TriggerLabel
}

// Controller is the live watch handle. Create with New, drive with Run,
// release with Close.
type Controller struct {
	cfg       Config
	backend   backend
	scheduler *scheduler
	requests  chan request
	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a Controller over the orchestrator's input set. The backend
// starts observing immediately; Run delivers the notifications.
func New(cfg Config) (*Controller, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.NoopRecorder{}
	}

	inputs := cfg.Orchestrator.FileSet().Inputs
	var b backend
	if cfg.Native {
		nb, err := newNotifyBackend(inputs)
		if err != nil {
			return nil, sberrors.WatchFailed(err)
		}
		b = nb
	} else {
		b = newPollBackend(inputs, cfg.PollInterval)
	}

	c := &Controller{
		cfg:      cfg,
		backend:  b,
		requests: make(chan request, 1),
		stop:     make(chan struct{}),
	}

	if cfg.RebuildEvery > 0 {
		sched, err := newScheduler(cfg.RebuildEvery, func() {
			c.enqueue(request{trigger: metrics.TriggerScheduled})
		})
		if err != nil {
			_ = b.Close()
			return nil, sberrors.WatchFailed(err)
		}
		c.scheduler = sched
	}

	return c, nil
}

// Run performs one immediate compile, then processes change notifications
// until ctx is cancelled or Close is called. Compile failures are logged and
// non-fatal; the watcher stays alive for the next trigger.
func (c *Controller) Run(ctx context.Context) error {
	fs := c.cfg.Orchestrator.FileSet()
	c.cfg.Recorder.SetWatchedFiles(len(fs.Inputs))

	// Initial compile. The error is already reported by the orchestrator;
	// watch mode keeps going so a fix to the source triggers a recompile.
	_ = c.cfg.Orchestrator.Compile(ctx, "", metrics.TriggerInitial)

	for _, path := range fs.Inputs {
		slog.Info("watching", logfields.Path(path))
	}
	slog.Info("watcher running",
		logfields.Backend(c.backend.Name()),
		logfields.Files(len(fs.Inputs)),
		logfields.Output(fs.Output))

	if c.scheduler != nil {
		c.scheduler.start()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.worker(ctx)
	}()

	c.eventLoop(ctx)
	wg.Wait()
	return nil
}

// eventLoop debounces backend events into coalesced worker requests.
func (c *Controller) eventLoop(ctx context.Context) {
	var mu sync.Mutex
	var timer *time.Timer
	var lastChanged string

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
			return
		case <-c.stop:
			return
		case path, ok := <-c.backend.Events():
			if !ok {
				return
			}
			mu.Lock()
			lastChanged = path
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(c.cfg.Debounce, func() {
				mu.Lock()
				changed := lastChanged
				mu.Unlock()
				c.enqueue(request{changed: changed, trigger: metrics.TriggerChange})
			})
			mu.Unlock()
		case err, ok := <-c.backend.Errors():
			if !ok {
				return
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// enqueue offers a request to the single-slot queue. A request already
// pending absorbs the new one; the follow-up compile covers the full input
// set anyway.
func (c *Controller) enqueue(req request) {
	select {
	case c.requests <- req:
	default:
	}
}

// worker drains the request slot, running one compile at a time. The slot
// has capacity one: a trigger arriving mid-compile parks there as the single
// follow-up pass, and anything beyond it is absorbed by enqueue.
func (c *Controller) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case req, ok := <-c.requests:
			if !ok {
				return
			}
			_ = c.cfg.Orchestrator.Compile(ctx, req.changed, req.trigger)
		}
	}
}

// Close stops observation and releases watch resources. After Close no
// further change notifications fire.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		if c.scheduler != nil {
			if serr := c.scheduler.stopAll(); serr != nil {
				slog.Warn("scheduler shutdown", logfields.Error(serr))
			}
		}
		err = c.backend.Close()
	})
	return err
}
