package registry

import (
	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
)

// Flat is the registry produced by ByName.
type Flat = map[string]artifact.Artifact

// ByName keys every valid artifact by its name. Later artifacts replace
// earlier ones with the same name.
func ByName(artifacts []any, _ appctx.Context) (Flat, error) {
	return byName(artifacts, nil), nil
}

// ByNameLogged is ByName with a warning for every replaced name.
func ByNameLogged(logger *zap.Logger) func([]any, appctx.Context) (Flat, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(artifacts []any, _ appctx.Context) (Flat, error) {
		return byName(artifacts, logger), nil
	}
}

func byName(artifacts []any, logger *zap.Logger) Flat {
	reg := make(Flat, len(artifacts))
	for _, v := range artifacts {
		a, name, ok := named(v)
		if !ok {
			continue
		}
		if _, exists := reg[name]; exists && logger != nil {
			logger.Warn("duplicate artifact name, keeping the last one", zap.String("name", name))
		}
		reg[name] = a
	}
	return reg
}

// named returns v as an Artifact along with its name, if v is a record with a
// string name.
func named(v any) (artifact.Artifact, string, bool) {
	rec, ok := artifact.AsRecord(v)
	if !ok {
		return nil, "", false
	}
	name, ok := rec[artifact.KeyName].(string)
	if !ok {
		return nil, "", false
	}
	return artifact.Artifact(rec), name, true
}
