package commands

import (
	"context"

	"git.home.luguber.info/inful/stylebuild/internal/config"
	"git.home.luguber.info/inful/stylebuild/internal/metrics"
)

// BuildCmd implements the 'build' command: one compile pass, then exit.
type BuildCmd struct {
	Patterns  []string `arg:"" optional:"" name:"pattern" help:"Input glob patterns, file paths, or directories."`
	Out       string   `short:"o" help:"Output artifact path (default app.min.css)."`
	Minify    bool     `short:"m" help:"Minify the compiled output."`
	Sourcemap string   `enum:",inline,external" default:"" help:"Sourcemap mode: inline or external."`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg := config.Load(root.Config).Merge(config.Overrides{
		In:        b.Patterns,
		Out:       b.Out,
		Minify:    b.Minify,
		Sourcemap: b.Sourcemap,
	})

	orch, store, err := newOrchestrator(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	return orch.Compile(context.Background(), "", metrics.TriggerManual)
}
