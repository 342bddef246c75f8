package feature

import (
	"fmt"
	"sort"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/artifact"
)

// Decode converts an imported record into a Manifest. Missing sub-registries
// stay nil; a sub-registry that is not a record is an error.
func Decode(record any) (Manifest, error) {
	var m Manifest
	rec, ok := artifact.AsRecord(record)
	if !ok {
		return m, fmt.Errorf("feature manifest is not a record (%T)", record)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &m,
		TagName: "mapstructure",
	})
	if err != nil {
		return m, fmt.Errorf("creating manifest decoder: %w", err)
	}
	if err := dec.Decode(rec); err != nil {
		return m, fmt.Errorf("decoding feature manifest: %w", err)
	}
	return m, nil
}

// Merge deep-merges every manifest into one Set. Later manifests win at the
// leaves; nested records are combined. Inputs are never modified.
func Merge(manifests []Manifest) (Set, error) {
	out := NewSet()
	for _, name := range Registries {
		dst := map[string]any{}
		for i, m := range manifests {
			src := m.Registry(name)
			if len(src) == 0 {
				continue
			}
			if err := mergo.Merge(&dst, deepCopy(src), mergo.WithOverride); err != nil {
				return NewSet(), fmt.Errorf("merging %s from %s: %w", name, m.Origin(i), err)
			}
		}
		out.set(name, dst)
	}
	return out, nil
}

// FindDuplicates reports top-level keys that more than one manifest
// contributes to the same sub-registry. It does not affect merging.
func FindDuplicates(manifests []Manifest) []Duplicate {
	var dups []Duplicate
	for _, name := range Registries {
		owners := make(map[string][]string)
		for i, m := range manifests {
			for key := range m.Registry(name) {
				owners[key] = append(owners[key], m.Origin(i))
			}
		}

		keys := make([]string, 0, len(owners))
		for key, features := range owners {
			if len(features) > 1 {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)

		for _, key := range keys {
			dups = append(dups, Duplicate{
				Registry: name,
				Key:      key,
				Features: owners[key],
			})
		}
	}
	return dups
}

// MergeReport merges the manifests and logs each duplicate key as a warning.
// A nil logger discards the warnings.
func MergeReport(manifests []Manifest, logger *zap.Logger) (Set, []Duplicate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	set, err := Merge(manifests)
	if err != nil {
		return set, nil, err
	}

	dups := FindDuplicates(manifests)
	for _, d := range dups {
		logger.Warn("duplicate feature key",
			zap.String("registry", d.Registry),
			zap.String("key", d.Key),
			zap.Strings("features", d.Features),
		)
	}
	return set, dups, nil
}

// deepCopy copies nested records and lists so merging never writes into a
// manifest's own maps.
func deepCopy(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopy(t)
	case artifact.Artifact:
		return deepCopy(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
