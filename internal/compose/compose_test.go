package compose

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
	"github.com/agentx-labs/ctxloader/internal/loader"
	"github.com/agentx-labs/ctxloader/internal/registry"
)

// recorder is a loader that notes each call and appends "loader" to the trace
// kept in the context.
type recorder struct {
	calls atomic.Int32
}

func (r *recorder) load(_ context.Context, c appctx.Context) (appctx.Context, error) {
	r.calls.Add(1)
	return appendTrace(c, "loader"), nil
}

func appendTrace(c appctx.Context, step string) appctx.Context {
	trace, _ := appctx.Lookup[[]string](c, "trace")
	next := append(append([]string{}, trace...), step)
	return c.With("trace", next)
}

func traceHook(step string) Hook {
	return func(_ context.Context, c appctx.Context) (appctx.Context, error) {
		return appendTrace(c, step), nil
	}
}

func failingHook(err error) Hook {
	return func(context.Context, appctx.Context) (appctx.Context, error) {
		return appctx.Context{}, err
	}
}

func trace(t *testing.T, c appctx.Context) []string {
	t.Helper()
	tr, _ := appctx.Lookup[[]string](c, "trace")
	return tr
}

func TestWithPlugins_Order(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	wrapped := WithPlugins(
		Plugin{Name: "a", Before: traceHook("a.before"), After: traceHook("a.after")},
		Plugin{Name: "b", Before: traceHook("b.before")},
		Plugin{Name: "c", After: traceHook("c.after")},
	)(rec.load)

	out, err := wrapped(context.Background(), appctx.Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.before", "b.before", "loader", "a.after", "c.after"}, trace(t, out))
}

func TestWithPlugins_BeforeFailureSkipsLoaderAndAfter(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	rec := &recorder{}
	afterRan := false

	wrapped := WithPlugins(
		Plugin{Name: "ok", Before: traceHook("ok.before")},
		Plugin{Name: "bad", Before: failingHook(boom)},
		Plugin{Name: "late", After: func(_ context.Context, c appctx.Context) (appctx.Context, error) {
			afterRan = true
			return c, nil
		}},
	)(rec.load)

	base := appctx.New(map[string]any{"k": "v"})
	out, err := wrapped(context.Background(), base)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `plugin "bad" before hook`)
	assert.Zero(t, rec.calls.Load())
	assert.False(t, afterRan)
	assert.Equal(t, base, out)
}

func TestWithPlugins_LoaderFailureSkipsAfter(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	afterRan := false
	failing := func(context.Context, appctx.Context) (appctx.Context, error) {
		return appctx.Context{}, boom
	}

	wrapped := WithPlugins(Plugin{After: func(_ context.Context, c appctx.Context) (appctx.Context, error) {
		afterRan = true
		return c, nil
	}})(failing)

	_, err := wrapped(context.Background(), appctx.Context{})
	require.ErrorIs(t, err, boom)
	assert.False(t, afterRan)
}

func TestWithPlugins_AfterFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	rec := &recorder{}
	wrapped := WithPlugins(Plugin{After: failingHook(boom)})(rec.load)

	_, err := wrapped(context.Background(), appctx.Context{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestWithMiddleware_ThreadsContext(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	wrapped := WithMiddleware(traceHook("m1"), traceHook("m2"))(rec.load)

	out, err := wrapped(context.Background(), appctx.Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "loader"}, trace(t, out))
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestWithMiddleware_FailFast(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	rec := &recorder{}
	thirdRan := false

	wrapped := WithMiddleware(
		traceHook("m1"),
		failingHook(boom),
		func(_ context.Context, c appctx.Context) (appctx.Context, error) {
			thirdRan = true
			return c, nil
		},
	)(rec.load)

	_, err := wrapped(context.Background(), appctx.Context{})
	require.ErrorIs(t, err, boom)
	assert.False(t, thirdRan)
	assert.Zero(t, rec.calls.Load())
}

func TestWithValidation_AllApprove(t *testing.T) {
	t.Parallel()

	var seen atomic.Int32
	ok := func(_ context.Context, c appctx.Context) error {
		if c.Has("config") {
			seen.Add(1)
		}
		return nil
	}

	rec := &recorder{}
	wrapped := WithValidation(ok, ok, ok)(rec.load)

	_, err := wrapped(context.Background(), appctx.New(map[string]any{"config": true}))
	require.NoError(t, err)
	assert.Equal(t, int32(3), seen.Load())
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestWithValidation_RejectionSkipsLoader(t *testing.T) {
	t.Parallel()

	denied := errors.New("missing config")
	rec := &recorder{}
	wrapped := WithValidation(
		func(context.Context, appctx.Context) error { return nil },
		func(context.Context, appctx.Context) error { return denied },
	)(rec.load)

	_, err := wrapped(context.Background(), appctx.Context{})
	require.ErrorIs(t, err, denied)
	assert.Zero(t, rec.calls.Load())
}

func TestWithValidation_FirstFailureDoesNotWaitForSlowValidators(t *testing.T) {
	t.Parallel()

	denied := errors.New("denied")
	release := make(chan struct{})
	defer close(release)

	slow := func(context.Context, appctx.Context) error {
		<-release
		return nil
	}
	fast := func(context.Context, appctx.Context) error { return denied }

	rec := &recorder{}
	wrapped := WithValidation(slow, fast)(rec.load)

	done := make(chan error, 1)
	go func() {
		_, err := wrapped(context.Background(), appctx.Context{})
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, denied)
	case <-time.After(2 * time.Second):
		t.Fatal("WithValidation waited for the slow validator")
	}
	assert.Zero(t, rec.calls.Load())
}

func TestWithValidation_CancelsRemainingValidators(t *testing.T) {
	t.Parallel()

	denied := errors.New("denied")
	cancelled := make(chan struct{})

	watcher := func(ctx context.Context, _ appctx.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}
	fast := func(context.Context, appctx.Context) error { return denied }

	rec := &recorder{}
	_, err := WithValidation(watcher, fast)(rec.load)(context.Background(), appctx.Context{})
	require.ErrorIs(t, err, denied)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("remaining validator was not cancelled")
	}
}

func TestWithValidation_None(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	_, err := WithValidation()(rec.load)(context.Background(), appctx.Context{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestChain_StacksAroundEngine(t *testing.T) {
	t.Parallel()

	engine := loader.NewAsync("actions", loader.Options[registry.Flat]{
		Import: func(context.Context, []artifact.Handle, appctx.Context) (any, error) {
			return []any{map[string]any{"name": "ping"}}, nil
		},
		Build: registry.ByName,
	})

	var validated atomic.Bool
	wrapped := Apply(engine,
		WithPlugins(Plugin{Name: "audit", After: traceHook("audit")}),
		WithMiddleware(traceHook("seed")),
		WithValidation(func(context.Context, appctx.Context) error {
			validated.Store(true)
			return nil
		}),
	)

	out, err := wrapped(context.Background(), appctx.Context{})
	require.NoError(t, err)
	assert.True(t, validated.Load())
	assert.Equal(t, []string{"seed", "audit"}, trace(t, out))

	reg, ok := appctx.Lookup[registry.Flat](out, "actions")
	require.True(t, ok)
	assert.Contains(t, reg, "ping")
}
