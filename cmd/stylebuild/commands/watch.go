package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/stylebuild/internal/config"
	"git.home.luguber.info/inful/stylebuild/internal/logfields"
	"git.home.luguber.info/inful/stylebuild/internal/metrics"
	"git.home.luguber.info/inful/stylebuild/internal/watch"
)

// WatchCmd implements the 'watch' command: an immediate compile followed by
// continuous observation of the resolved input files.
type WatchCmd struct {
	Patterns  []string `arg:"" optional:"" name:"pattern" help:"Input glob patterns, file paths, or directories."`
	Out       string   `short:"o" help:"Output artifact path (default app.min.css)."`
	Minify    bool     `short:"m" help:"Minify the compiled output."`
	Sourcemap string   `enum:",inline,external" default:"" help:"Sourcemap mode: inline or external."`

	PollInterval time.Duration `default:"500ms" help:"Stat-poll period for the default backend."`
	Debounce     time.Duration `default:"150ms" help:"Quiet period before a change triggers a compile."`
	Native       bool          `help:"Use native filesystem events (fsnotify) instead of polling."`
	RebuildEvery time.Duration `help:"Schedule unconditional full rebuilds at this interval."`
	MetricsAddr  string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address while watching."`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load(root.Config).Merge(config.Overrides{
		In:        w.Patterns,
		Out:       w.Out,
		Minify:    w.Minify,
		Sourcemap: w.Sourcemap,
	})

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		registry := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
		go func() {
			slog.Info("metrics listening", slog.String("addr", w.MetricsAddr))
			if err := http.ListenAndServe(w.MetricsAddr, metrics.HTTPHandler(registry)); err != nil {
				slog.Warn("metrics server stopped", logfields.Error(err))
			}
		}()
	}

	orch, store, err := newOrchestrator(cfg, recorder)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	rebuildEvery := w.RebuildEvery
	if rebuildEvery == 0 {
		if interval, err := cfg.RebuildInterval(); err != nil {
			slog.Warn("ignoring rebuild_every", logfields.Error(err))
		} else {
			rebuildEvery = interval
		}
	}

	controller, err := watch.New(watch.Config{
		Orchestrator: orch,
		PollInterval: w.PollInterval,
		Debounce:     w.Debounce,
		Native:       w.Native,
		RebuildEvery: rebuildEvery,
		Recorder:     recorder,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := controller.Close(); cerr != nil {
			slog.Warn("watcher close", logfields.Error(cerr))
		}
	}()

	return controller.Run(ctx)
}
