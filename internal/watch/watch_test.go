package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stylebuild/internal/compile"
	"git.home.luguber.info/inful/stylebuild/internal/engine"
	"git.home.luguber.info/inful/stylebuild/internal/metrics"
	"git.home.luguber.info/inful/stylebuild/internal/resolve"
)

func waitForEvent(t *testing.T, events <-chan string, want string) {
	t.Helper()
	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for %s", want)
	}
}

func TestPollBackendDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(path, []byte("a { color: red; }"), 0o644))

	p := newPollBackend([]string{path}, 10*time.Millisecond)
	defer p.Close()

	// Different length so the change is visible even within the filesystem's
	// mtime granularity.
	require.NoError(t, os.WriteFile(path, []byte("a { color: rebeccapurple; }"), 0o644))
	waitForEvent(t, p.Events(), path)
}

func TestPollBackendDetectsRemoveAndRecreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(path, []byte("a { color: red; }"), 0o644))

	p := newPollBackend([]string{path}, 10*time.Millisecond)
	defer p.Close()

	require.NoError(t, os.Remove(path))
	waitForEvent(t, p.Events(), path)

	require.NoError(t, os.WriteFile(path, []byte("a { color: blue; }"), 0o644))
	waitForEvent(t, p.Events(), path)
}

func TestPollBackendDetectsAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(path, []byte("a { color: red; }"), 0o644))

	p := newPollBackend([]string{path}, 10*time.Millisecond)
	defer p.Close()

	// Editor-style save: write a sibling, then rename over the watched path.
	tmp := filepath.Join(dir, ".a.css.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("a { color: rebeccapurple; }"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	waitForEvent(t, p.Events(), path)
}

func TestEnqueueCoalesces(t *testing.T) {
	c := &Controller{requests: make(chan request, 1)}

	c.enqueue(request{changed: "a.css", trigger: metrics.TriggerChange})
	// A second trigger while one is pending must not block and must be
	// absorbed by the pending slot.
	done := make(chan struct{})
	go func() {
		c.enqueue(request{changed: "b.css", trigger: metrics.TriggerChange})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full slot")
	}

	req := <-c.requests
	assert.Equal(t, "a.css", req.changed)
	assert.Empty(t, c.requests)
}

func TestControllerRecompilesOnChange(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(input, []byte("a { color: red; }"), 0o644))
	out := filepath.Join(dir, "out.css")

	fs := resolve.FileSet{Inputs: []string{input}, Output: out}
	orch := compile.New(fs, engine.NewCSS(), engine.Options{})

	c, err := New(Config{
		Orchestrator: orch,
		PollInterval: 10 * time.Millisecond,
		Debounce:     20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = c.Run(ctx)
	}()

	// Initial compile.
	require.Eventually(t, func() bool {
		data, readErr := os.ReadFile(out)
		return readErr == nil && string(data) == "a { color: red; }\n"
	}, 2*time.Second, 10*time.Millisecond)

	// A change to the input triggers a recompile of the full set.
	require.NoError(t, os.WriteFile(input, []byte("a { color: rebeccapurple; }"), 0o644))
	require.Eventually(t, func() bool {
		data, readErr := os.ReadFile(out)
		return readErr == nil && string(data) == "a { color: rebeccapurple; }\n"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	cancel()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestControllerSurvivesBrokenInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(input, []byte("a { color: red; }"), 0o644))
	out := filepath.Join(dir, "out.css")

	fs := resolve.FileSet{Inputs: []string{input}, Output: out}
	orch := compile.New(fs, engine.NewCSS(), engine.Options{})

	c, err := New(Config{
		Orchestrator: orch,
		PollInterval: 10 * time.Millisecond,
		Debounce:     20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()
	defer c.Close()

	require.Eventually(t, func() bool {
		_, statErr := os.Stat(out)
		return statErr == nil
	}, 2*time.Second, 10*time.Millisecond)
	good, err := os.ReadFile(out)
	require.NoError(t, err)

	// A save that breaks the syntax fails the compile but must leave the
	// previous artifact in place and the watcher alive.
	require.NoError(t, os.WriteFile(input, []byte("a { color: red;"), 0o644))
	time.Sleep(300 * time.Millisecond)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, good, data)

	// Fixing the file recovers without a restart.
	require.NoError(t, os.WriteFile(input, []byte("a { color: blue; }"), 0o644))
	require.Eventually(t, func() bool {
		data, readErr := os.ReadFile(out)
		return readErr == nil && string(data) == "a { color: blue; }\n"
	}, 2*time.Second, 10*time.Millisecond)
}
