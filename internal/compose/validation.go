package compose

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/loader"
)

// WithValidation runs every validator concurrently against the incoming
// context. The first rejection is returned as soon as it happens, without
// waiting for the remaining validators, whose ctx is cancelled; the loader
// runs only if all of them approve.
func WithValidation(validators ...Validator) Wrapper {
	return func(next loader.Func) loader.Func {
		return func(ctx context.Context, c appctx.Context) (appctx.Context, error) {
			if err := firstFailure(ctx, c, validators); err != nil {
				return c, err
			}
			return next(ctx, c)
		}
	}
}

func firstFailure(ctx context.Context, c appctx.Context, validators []Validator) error {
	if len(validators) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	var (
		once  sync.Once
		first error
	)
	for _, v := range validators {
		g.Go(func() error {
			err := v(gctx, c)
			if err != nil {
				once.Do(func() { first = err })
			}
			return err
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
		// gctx ends on the first validator error or when ctx does.
		once.Do(func() {})
		if first != nil {
			return first
		}
		return ctx.Err()
	}
}
