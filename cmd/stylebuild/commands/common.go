package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/stylebuild/internal/compile"
	"git.home.luguber.info/inful/stylebuild/internal/config"
	"git.home.luguber.info/inful/stylebuild/internal/engine"
	"git.home.luguber.info/inful/stylebuild/internal/history"
	"git.home.luguber.info/inful/stylebuild/internal/logfields"
	"git.home.luguber.info/inful/stylebuild/internal/metrics"
	"git.home.luguber.info/inful/stylebuild/internal/resolve"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:".stylebuildrc"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Compile the input stylesheets once"`
	Watch   WatchCmd   `cmd:"" help:"Compile, then recompile on input file changes"`
	Files   FilesCmd   `cmd:"" help:"Print the resolved input file set without compiling"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	History HistoryCmd `cmd:"" help:"Show recent compiles from the history store"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// defaultHistoryPath is used when history is enabled but no path configured.
const defaultHistoryPath = ".stylebuild-history.db"

// newOrchestrator resolves the merged config into a FileSet and constructs
// the orchestrator. The returned store is non-nil only when history is
// enabled; the caller owns closing it.
func newOrchestrator(cfg *config.Config, rec metrics.Recorder) (*compile.Orchestrator, *history.Store, error) {
	fileSet, err := resolve.Resolve(cfg.In, cfg.Out)
	if err != nil {
		return nil, nil, err
	}

	opts := []compile.Option{compile.WithRecorder(rec)}
	var store *history.Store
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			path = defaultHistoryPath
		}
		store, err = history.Open(path)
		if err != nil {
			// History is best-effort; compiles proceed without it.
			slog.Warn("history store unavailable", logfields.Path(path), logfields.Error(err))
			store = nil
		} else {
			opts = append(opts, compile.WithHistory(store))
		}
	}

	return compile.New(fileSet, engine.NewCSS(), cfg.EngineOptions(), opts...), store, nil
}
