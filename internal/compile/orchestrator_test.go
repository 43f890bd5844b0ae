package compile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stylebuild/internal/engine"
	sberrors "git.home.luguber.info/inful/stylebuild/internal/errors"
	"git.home.luguber.info/inful/stylebuild/internal/metrics"
	"git.home.luguber.info/inful/stylebuild/internal/resolve"
)

func writeInputs(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestCompileMergesInInputOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.css")
	b := filepath.Join(dir, "b.css")
	require.NoError(t, os.WriteFile(a, []byte("a { color: red; }"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b { color: blue; }"), 0o644))
	out := filepath.Join(dir, "out.css")

	fs := resolve.FileSet{Inputs: []string{a, b}, Output: out}
	o := New(fs, engine.NewCSS(), engine.Options{})
	require.NoError(t, o.Compile(context.Background(), "", metrics.TriggerManual))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a { color: red; }\n\nb { color: blue; }\n", string(got))

	// Reversed input order yields correspondingly reordered output.
	reversed := New(resolve.FileSet{Inputs: []string{b, a}, Output: out}, engine.NewCSS(), engine.Options{})
	require.NoError(t, reversed.Compile(context.Background(), "", metrics.TriggerManual))
	got, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "b { color: blue; }\n\na { color: red; }\n", string(got))
}

func TestCompileIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[string]string{"a.css": "a { color: red; }"})
	out := filepath.Join(dir, "out.css")

	fs := resolve.FileSet{Inputs: []string{filepath.Join(dir, "a.css")}, Output: out}
	o := New(fs, engine.NewCSS(), engine.Options{})

	require.NoError(t, o.Compile(context.Background(), "", metrics.TriggerManual))
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	require.NoError(t, o.Compile(context.Background(), "", metrics.TriggerManual))
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompileReadFailureLeavesArtifactUntouched(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(a, []byte("a { color: red; }"), 0o644))
	out := filepath.Join(dir, "out.css")
	require.NoError(t, os.WriteFile(out, []byte("previous artifact"), 0o644))

	missing := filepath.Join(dir, "vanished.css")
	fs := resolve.FileSet{Inputs: []string{a, missing}, Output: out}
	o := New(fs, engine.NewCSS(), engine.Options{})

	err := o.Compile(context.Background(), "", metrics.TriggerManual)
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryRead))

	// The failed pass must not have clobbered the existing artifact.
	got, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "previous artifact", string(got))

	// Once the input reappears the same orchestrator recovers.
	require.NoError(t, os.WriteFile(missing, []byte("b { color: blue; }"), 0o644))
	require.NoError(t, o.Compile(context.Background(), missing, metrics.TriggerChange))
	got, readErr = os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "a { color: red; }\n\nb { color: blue; }\n", string(got))
}

func TestCompileParseFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.css")
	require.NoError(t, os.WriteFile(bad, []byte("a { never closed"), 0o644))
	out := filepath.Join(dir, "out.css")

	fs := resolve.FileSet{Inputs: []string{bad}, Output: out}
	o := New(fs, engine.NewCSS(), engine.Options{})

	err := o.Compile(context.Background(), "", metrics.TriggerManual)
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryParse))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompileExternalSourcemapWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(a, []byte("a { color: red; }"), 0o644))
	out := filepath.Join(dir, "dist", "out.css")
	mapPath := out + ".map"

	opts := engine.Options{Sourcemap: engine.SourcemapOptions{Enabled: true, File: mapPath}}
	o := New(resolve.FileSet{Inputs: []string{a}, Output: out}, engine.NewCSS(), opts)
	require.NoError(t, o.Compile(context.Background(), "", metrics.TriggerManual))

	css, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(css), "sourceMappingURL=out.css.map")

	mapData, err := os.ReadFile(mapPath)
	require.NoError(t, err)
	assert.Contains(t, string(mapData), `"version":3`)
}

func TestCompileInlineSourcemapWritesSingleFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(a, []byte("a { color: red; }"), 0o644))
	out := filepath.Join(dir, "out.css")

	opts := engine.Options{Sourcemap: engine.SourcemapOptions{Enabled: true, Inline: true, File: out + ".map"}}
	o := New(resolve.FileSet{Inputs: []string{a}, Output: out}, engine.NewCSS(), opts)
	require.NoError(t, o.Compile(context.Background(), "", metrics.TriggerManual))

	css, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(css), "sourceMappingURL=data:application/json;base64,")

	_, statErr := os.Stat(out + ".map")
	assert.True(t, os.IsNotExist(statErr))
}
