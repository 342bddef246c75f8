package loader

import (
	"context"

	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
	"github.com/agentx-labs/ctxloader/internal/validate"
)

type engine[R any] struct {
	name string
	opts Options[R]
	log  *zap.Logger
}

func newEngine[R any](name string, opts Options[R]) *engine[R] {
	if opts.Build == nil {
		panic(ErrNoBuilder)
	}
	if opts.Validate == nil {
		opts.Validate = validate.IsValidArtifact
	}
	if opts.ContextKey == "" {
		opts.ContextKey = name
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &engine[R]{
		name: name,
		opts: opts,
		log:  log.With(zap.String("loader", name)),
	}
}

// NewAsync returns a context-aware loader. Discovery and import receive ctx;
// validation and build never block.
func NewAsync[R any](name string, opts Options[R]) Func {
	return newEngine(name, opts).run
}

// New returns a synchronous loader running the same pipeline as NewAsync
// with a background context.
func New[R any](name string, opts Options[R]) Sync {
	e := newEngine(name, opts)
	return func(c appctx.Context) (appctx.Context, error) {
		return e.run(context.Background(), c)
	}
}

// Lift adapts a synchronous loader to the Func shape.
func Lift(s Sync) Func {
	return func(_ context.Context, c appctx.Context) (appctx.Context, error) {
		return s(c)
	}
}

// Start runs f on its own goroutine and delivers exactly one Result. The
// channel is buffered, so abandoning it does not leak the goroutine.
func Start(ctx context.Context, f Func, c appctx.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		next, err := f(ctx, c)
		ch <- Result{Context: next, Err: err}
	}()
	return ch
}

func (e *engine[R]) run(ctx context.Context, c appctx.Context) (appctx.Context, error) {
	var handles []artifact.Handle
	if e.opts.FindFiles != nil {
		found, err := e.opts.FindFiles(ctx, e.opts.Patterns, c)
		if err != nil {
			return c, &StageError{Loader: e.name, Stage: StageDiscover, Err: err}
		}
		handles = found
	}
	if handles == nil {
		handles = []artifact.Handle{}
	}

	var raw any
	if e.opts.Import != nil {
		imported, err := e.opts.Import(ctx, handles, c)
		if err != nil {
			return c, &StageError{Loader: e.name, Stage: StageImport, Err: err}
		}
		raw = imported
	}

	res := validate.ValidateDetailed(artifact.AsList(raw), e.opts.Validate)
	if n := len(res.Invalid); n > 0 {
		e.log.Debug("dropped invalid artifacts", zap.Int("dropped", n))
	}

	reg, err := e.opts.Build(res.Valid, c)
	if err != nil {
		return c, &StageError{Loader: e.name, Stage: StageBuild, Err: err}
	}

	e.log.Debug("registry built",
		zap.String("key", e.opts.ContextKey),
		zap.Int("handles", len(handles)),
		zap.Int("artifacts", len(res.Valid)),
	)
	return c.With(e.opts.ContextKey, reg), nil
}
