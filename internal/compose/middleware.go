package compose

import (
	"context"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/loader"
)

// WithMiddleware threads the context through each function in order and then
// invokes the loader once with the result. The first error stops the call
// and the loader does not run.
func WithMiddleware(fns ...Hook) Wrapper {
	return func(next loader.Func) loader.Func {
		return func(ctx context.Context, c appctx.Context) (appctx.Context, error) {
			cur := c
			for _, fn := range fns {
				out, err := fn(ctx, cur)
				if err != nil {
					return c, err
				}
				cur = out
			}
			return next(ctx, cur)
		}
	}
}
