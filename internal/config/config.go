// Package config loads and merges the effective build options from defaults,
// an optional config file, and CLI-supplied values.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/stylebuild/internal/engine"
	sberrors "git.home.luguber.info/inful/stylebuild/internal/errors"
	"git.home.luguber.info/inful/stylebuild/internal/logfields"
)

const (
	// DefaultPath is the conventional dotfile location (JSON).
	DefaultPath = ".stylebuildrc"
	// DefaultOutput is used when neither config nor CLI name an output.
	DefaultOutput = "app.min.css"
	// SourcemapInline is the sourcemaps.to sentinel selecting an embedded map.
	SourcemapInline = "inline"
)

// Config is the file-backed part of the effective options. Values present in
// the file override CLI-supplied inputs and output.
type Config struct {
	In         StringList        `json:"in,omitempty" yaml:"in,omitempty"`
	Out        string            `json:"out,omitempty" yaml:"out,omitempty"`
	Sourcemaps *SourcemapsConfig `json:"sourcemaps,omitempty" yaml:"sourcemaps,omitempty"`
	Minify     bool              `json:"minify,omitempty" yaml:"minify,omitempty"`
	History    HistoryConfig     `json:"history,omitempty" yaml:"history,omitempty"`

	// RebuildEvery optionally schedules unconditional full rebuilds in watch
	// mode (Go duration string, e.g. "5m"). Empty disables the schedule.
	RebuildEvery string `json:"rebuild_every,omitempty" yaml:"rebuild_every,omitempty"`
}

// SourcemapsConfig enables sourcemap generation. To is either "inline" or the
// external map path; empty selects "<out>.map".
type SourcemapsConfig struct {
	To string `json:"to,omitempty" yaml:"to,omitempty"`
}

// HistoryConfig controls the SQLite compile history store.
type HistoryConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// StringList unmarshals from either a single string or a sequence, so config
// files may write `"in": "src/*.css"` as well as a list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// Default returns the configuration used when no config file applies.
func Default() *Config {
	return &Config{}
}

// Load reads the config file at path. A missing file yields defaults with no
// error. An unreadable or unparsable file also yields defaults, but surfaces
// a non-fatal warning rather than total silence. A `.env` file next to the
// invocation is loaded best-effort first so ${VAR} expansion in the config
// can see it.
func Load(path string) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug(".env not loaded", logfields.Error(err))
	}

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			warn := sberrors.ConfigUnreadable(path, err)
			slog.Warn(warn.Message, logfields.Path(path), logfields.Error(err))
		}
		return Default()
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	if err := unmarshal(path, expanded, cfg); err != nil {
		warn := sberrors.ConfigUnreadable(path, err)
		slog.Warn(warn.Message, logfields.Path(path), logfields.Error(err))
		return Default()
	}
	return cfg
}

// unmarshal picks the decoder by extension: .yaml/.yml are YAML, everything
// else (including the default dotfile) is JSON.
func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// Overrides are the CLI-supplied values merged against the file config.
type Overrides struct {
	In        []string
	Out       string
	Minify    bool
	Sourcemap string // "", "inline" or "external"
}

// Merge resolves the effective inputs and output. Per the invocation
// contract, config-file values win over CLI values when present; CLI fills
// the gaps, and the output falls back to DefaultOutput.
func (c *Config) Merge(o Overrides) *Config {
	out := *c
	if len(out.In) == 0 {
		out.In = StringList(o.In)
	}
	if out.Out == "" {
		out.Out = o.Out
	}
	if out.Out == "" {
		out.Out = DefaultOutput
	}
	if o.Minify {
		out.Minify = true
	}
	if out.Sourcemaps == nil && o.Sourcemap != "" {
		switch o.Sourcemap {
		case SourcemapInline:
			out.Sourcemaps = &SourcemapsConfig{To: SourcemapInline}
		default:
			out.Sourcemaps = &SourcemapsConfig{}
		}
	}
	return &out
}

// EngineOptions translates the merged config into processing options. The
// options are immutable for the orchestrator's lifetime; nothing per-compile
// lives here.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.Options{Minify: c.Minify}
	if c.Sourcemaps == nil {
		return opts
	}
	opts.Sourcemap.Enabled = true
	switch c.Sourcemaps.To {
	case SourcemapInline:
		opts.Sourcemap.Inline = true
		opts.Sourcemap.File = c.Out + ".map"
	case "":
		opts.Sourcemap.File = c.Out + ".map"
	default:
		opts.Sourcemap.File = c.Sourcemaps.To
	}
	return opts
}

// RebuildInterval parses RebuildEvery. Zero means no scheduled rebuilds.
func (c *Config) RebuildInterval() (time.Duration, error) {
	if c.RebuildEvery == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RebuildEvery)
	if err != nil {
		return 0, fmt.Errorf("invalid rebuild_every %q: %w", c.RebuildEvery, err)
	}
	return d, nil
}
