package config

import (
	"fmt"
	"os"
)

const exampleConfig = `{
  "in": ["styles/**/*.css"],
  "out": "dist/app.min.css",
  "minify": true,
  "sourcemaps": { "to": "inline" },
  "history": { "enabled": false, "path": ".stylebuild-history.db" }
}
`

// Init writes an example config file. Refuses to overwrite unless force is
// set.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
