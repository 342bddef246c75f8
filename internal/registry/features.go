package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
	"github.com/agentx-labs/ctxloader/internal/feature"
)

// Features decodes every record as a feature manifest and deep-merges them.
// The result always carries all four sub-registries.
func Features(artifacts []any, c appctx.Context) (feature.Set, error) {
	return FeaturesLogged(nil)(artifacts, c)
}

// FeaturesLogged is Features with duplicate keys across manifests logged as
// warnings.
func FeaturesLogged(logger *zap.Logger) func([]any, appctx.Context) (feature.Set, error) {
	return FeaturesReported(logger, nil)
}

// FeaturesReported is FeaturesLogged that also hands every successful
// build's duplicate keys to report. A nil report is ignored.
func FeaturesReported(logger *zap.Logger, report func([]feature.Duplicate)) func([]any, appctx.Context) (feature.Set, error) {
	return func(artifacts []any, _ appctx.Context) (feature.Set, error) {
		manifests := make([]feature.Manifest, 0, len(artifacts))
		for i, v := range artifacts {
			if _, ok := artifact.AsRecord(v); !ok {
				continue
			}
			m, err := feature.Decode(v)
			if err != nil {
				return feature.NewSet(), fmt.Errorf("feature manifest %d: %w", i, err)
			}
			manifests = append(manifests, m)
		}
		set, dups, err := feature.MergeReport(manifests, logger)
		if err == nil && report != nil {
			report(dups)
		}
		return set, err
	}
}
