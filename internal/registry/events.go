package registry

import (
	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
	"github.com/agentx-labs/ctxloader/internal/validate"
)

// Multimap is the registry produced by Events.
type Multimap = map[string][]any

// Events appends every artifact's handler under its name in discovery order.
// Several handlers for one event are the normal case; artifacts whose handler
// is not a function are dropped.
func Events(artifacts []any, _ appctx.Context) (Multimap, error) {
	reg := make(Multimap)
	for _, v := range artifacts {
		a, name, ok := named(v)
		if !ok {
			continue
		}
		h := a[artifact.KeyHandler]
		if !validate.IsCallable(h) {
			continue
		}
		reg[name] = append(reg[name], h)
	}
	return reg, nil
}
