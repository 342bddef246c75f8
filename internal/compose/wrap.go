package compose

import (
	"context"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/loader"
)

// Hook transforms the context around a loader call.
type Hook func(ctx context.Context, c appctx.Context) (appctx.Context, error)

// Validator approves or rejects a context. It must not modify it.
type Validator func(ctx context.Context, c appctx.Context) error

// Wrapper decorates a loader.
type Wrapper func(loader.Func) loader.Func

// Plugin contributes hooks that run before and after a loader. Either hook
// may be nil.
type Plugin struct {
	Name   string
	Before Hook
	After  Hook
}

// Chain applies wrappers so that the first one is outermost:
// Chain(a, b)(l) == a(b(l)).
func Chain(wrappers ...Wrapper) Wrapper {
	return func(next loader.Func) loader.Func {
		for i := len(wrappers) - 1; i >= 0; i-- {
			next = wrappers[i](next)
		}
		return next
	}
}

// Apply is Chain(wrappers...)(l).
func Apply(l loader.Func, wrappers ...Wrapper) loader.Func {
	return Chain(wrappers...)(l)
}
