package compose

import (
	"context"
	"fmt"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/loader"
)

// WithPlugins runs every plugin's Before hook in order, then the loader, then
// every After hook in order. The first error stops the call: a Before failure
// skips the loader and all After hooks, and a loader failure skips the After
// hooks.
func WithPlugins(plugins ...Plugin) Wrapper {
	return func(next loader.Func) loader.Func {
		return func(ctx context.Context, c appctx.Context) (appctx.Context, error) {
			cur := c
			for _, p := range plugins {
				if p.Before == nil {
					continue
				}
				out, err := p.Before(ctx, cur)
				if err != nil {
					return c, pluginErr(p, "before", err)
				}
				cur = out
			}

			cur, err := next(ctx, cur)
			if err != nil {
				return c, err
			}

			for _, p := range plugins {
				if p.After == nil {
					continue
				}
				out, err := p.After(ctx, cur)
				if err != nil {
					return c, pluginErr(p, "after", err)
				}
				cur = out
			}
			return cur, nil
		}
	}
}

func pluginErr(p Plugin, phase string, err error) error {
	if p.Name == "" {
		return fmt.Errorf("plugin %s hook: %w", phase, err)
	}
	return fmt.Errorf("plugin %q %s hook: %w", p.Name, phase, err)
}
