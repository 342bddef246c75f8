package registry

import (
	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
	"github.com/agentx-labs/ctxloader/internal/validate"
)

// NamespacedRegistry is the registry produced by Namespaced.
type NamespacedRegistry = map[string]map[string]any

// Namespaced groups artifact methods by namespace and name. An artifact
// counts only if namespace and name are strings and method is a function.
// The last artifact for a (namespace, name) pair wins.
func Namespaced(artifacts []any, _ appctx.Context) (NamespacedRegistry, error) {
	reg := make(NamespacedRegistry)
	for _, v := range artifacts {
		a, name, ok := named(v)
		if !ok {
			continue
		}
		ns, ok := a.String(artifact.KeyNamespace)
		if !ok {
			continue
		}
		method := a[artifact.KeyMethod]
		if !validate.IsCallable(method) {
			continue
		}
		group, ok := reg[ns]
		if !ok {
			group = make(map[string]any)
			reg[ns] = group
		}
		group[name] = method
	}
	return reg, nil
}
