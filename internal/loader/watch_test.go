package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rcliao/rivebrain/internal/model"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.rs": "+ hi\n- hello\n"})

	type result struct {
		brain *model.Brain
		err   error
	}
	results := make(chan result, 8)

	build := func() (*model.Brain, error) { return Build(BuildParams{Path: dir}) }
	w, err := NewWatcher(dir, 20*time.Millisecond, build, func(b *model.Brain, err error) {
		results <- result{b, err}
	}, nil)
	require.NoError(t, err)

	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.rs"), []byte("+ bye\n- later\n"), 0o644))

	select {
	case r := <-results:
		require.NoError(t, r.err)
		triggers := r.brain.Topic(model.DefaultTopic).Triggers
		assert.Contains(t, triggers, "hi")
		assert.Contains(t, triggers, "bye")
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing a document")
	}
	assert.GreaterOrEqual(t, w.Reloads(), 1)
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	reloaded := make(chan struct{}, 1)
	w, err := NewWatcher(dir, 10*time.Millisecond, func() (*model.Brain, error) {
		return model.NewBrain(), nil
	}, func(*model.Brain, error) { reloaded <- struct{}{} }, nil)
	require.NoError(t, err)

	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".swp"), []byte("x"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("hidden file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	w, err := NewWatcher(t.TempDir(), time.Millisecond, func() (*model.Brain, error) {
		return model.NewBrain(), nil
	}, nil, nil)
	require.NoError(t, err)

	w.Start(ctx)
	cancel()
	w.Stop()
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), time.Millisecond, nil, nil, nil)
	assert.Error(t, err)
}
