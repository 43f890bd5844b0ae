// Package compile orchestrates one build pass: read every input in order,
// parse each with its own origin, merge the units into a single root, run the
// engine, and write the artifact(s). An orchestrator owns its FileSet and
// options for its whole lifetime; at most one compile is in flight at a time.
package compile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/stylebuild/internal/engine"
	sberrors "git.home.luguber.info/inful/stylebuild/internal/errors"
	"git.home.luguber.info/inful/stylebuild/internal/history"
	"git.home.luguber.info/inful/stylebuild/internal/logfields"
	"git.home.luguber.info/inful/stylebuild/internal/metrics"
	"git.home.luguber.info/inful/stylebuild/internal/resolve"
)

// Orchestrator merges the resolved inputs and produces the compiled artifact.
type Orchestrator struct {
	fileSet  resolve.FileSet
	eng      engine.Engine
	opts     engine.Options
	recorder metrics.Recorder
	store    *history.Store

	// mu guarantees at most one compile pass in flight per orchestrator.
	// Callers wanting coalescing instead of queuing layer it on top (see the
	// watch worker).
	mu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithHistory injects a compile history store. Append failures are logged,
// never fatal.
func WithHistory(s *history.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// New creates an Orchestrator bound to fileSet. The options are fixed for
// the orchestrator's lifetime; nothing per-compile is mutated on them.
func New(fileSet resolve.FileSet, eng engine.Engine, opts engine.Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		fileSet:  fileSet,
		eng:      eng,
		opts:     opts,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// FileSet returns the immutable input set this orchestrator compiles.
func (o *Orchestrator) FileSet() resolve.FileSet {
	return o.fileSet
}

// Compile runs one full pass over the input set. changed is the watch-change
// marker used for reporting only; the full set is always recompiled. Errors
// abort the pass with no artifact written and are safe to ignore in watch
// mode (the orchestrator stays usable).
func (o *Orchestrator) Compile(ctx context.Context, changed string, trigger metrics.TriggerLabel) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	compileID := uuid.NewString()
	start := time.Now()

	written, err := o.run(ctx)
	duration := time.Since(start)
	o.recorder.ObserveCompileDuration(duration)

	rec := history.Record{
		ID:         compileID,
		StartedAt:  start,
		DurationMS: duration.Milliseconds(),
		Trigger:    string(trigger),
		Changed:    changed,
		Files:      len(o.fileSet.Inputs),
		Output:     o.fileSet.Output,
		Bytes:      written,
	}

	if err != nil {
		o.recorder.IncCompileOutcome(metrics.OutcomeFailed, trigger)
		rec.Status = "failed"
		rec.Error = err.Error()
		o.appendHistory(ctx, rec)
		slog.Error("compilation failed",
			logfields.CompileID(compileID),
			logfields.Error(err))
		return err
	}

	o.recorder.IncCompileOutcome(metrics.OutcomeSuccess, trigger)
	rec.Status = "success"
	o.appendHistory(ctx, rec)

	if changed != "" {
		slog.Info("recompiled",
			logfields.Changed(changed),
			logfields.CompileID(compileID),
			logfields.Output(o.fileSet.Output),
			logfields.DurationMS(float64(duration.Milliseconds())))
	} else {
		slog.Info("compiled",
			logfields.Files(len(o.fileSet.Inputs)),
			slog.Any("inputs", o.fileSet.Inputs),
			logfields.CompileID(compileID),
			logfields.Output(o.fileSet.Output),
			logfields.DurationMS(float64(duration.Milliseconds())))
	}
	return nil
}

// run executes the read → parse → merge → process → write pipeline and
// returns the number of artifact bytes written.
func (o *Orchestrator) run(ctx context.Context) (int64, error) {
	var root *engine.Stylesheet

	// Reads are sequential in input order: deterministic merge order is
	// worth more than parallel I/O here.
	for _, path := range o.fileSet.Inputs {
		src, err := os.ReadFile(path)
		if err != nil {
			return 0, sberrors.FileReadFailed(path, err)
		}
		unit, err := o.eng.Parse(ctx, src, path)
		if err != nil {
			return 0, sberrors.ParseFailed(path, err)
		}
		if root == nil {
			root = unit
		} else {
			root.Append(unit)
		}
	}

	result, err := o.eng.Process(ctx, root, o.opts)
	if err != nil {
		return 0, sberrors.ProcessFailed(err)
	}

	outDir := filepath.Dir(o.fileSet.Output)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, sberrors.WriteFailed(outDir, err)
	}

	// Whole-file overwrites. A crash mid-write can leave a truncated
	// artifact; acceptable for a build tool that regenerates on demand.
	if err := os.WriteFile(o.fileSet.Output, result.CSS, 0o644); err != nil {
		return 0, sberrors.WriteFailed(o.fileSet.Output, err)
	}
	written := int64(len(result.CSS))

	if result.Map != nil {
		mapPath := o.opts.Sourcemap.File
		if err := os.MkdirAll(filepath.Dir(mapPath), 0o755); err != nil {
			return written, sberrors.WriteFailed(mapPath, err)
		}
		if err := os.WriteFile(mapPath, result.Map, 0o644); err != nil {
			return written, sberrors.WriteFailed(mapPath, err)
		}
		written += int64(len(result.Map))
	}
	return written, nil
}

func (o *Orchestrator) appendHistory(ctx context.Context, rec history.Record) {
	if o.store == nil {
		return
	}
	if err := o.store.Append(ctx, rec); err != nil {
		herr := sberrors.HistoryError("append", err)
		slog.Warn(herr.Message, logfields.Error(err))
	}
}
