package artifact

import (
	"reflect"
	"sort"
)

// ExportKind tags the shape a module handle exported.
type ExportKind int

const (
	// ExportNone is an empty export (nil).
	ExportNone ExportKind = iota
	// ExportSingle is one artifact, or a value that will be judged as one.
	ExportSingle
	// ExportList is a list of artifacts.
	ExportList
	// ExportNamespaced is the legacy object-by-namespace map:
	// namespace -> name -> payload.
	ExportNamespaced
)

func (k ExportKind) String() string {
	switch k {
	case ExportNone:
		return "none"
	case ExportSingle:
		return "single"
	case ExportList:
		return "list"
	case ExportNamespaced:
		return "namespaced"
	default:
		return "unknown"
	}
}

// Export is the tagged union of everything an import can yield.
type Export struct {
	Kind  ExportKind
	Value any
}

// Classify inspects v once and tags its export shape.
//
// A record with a "name" key is a single artifact. A record without one whose
// values are all records is the legacy namespaced form. Lists are lists.
// Everything else is treated as a single (probably invalid) artifact and left
// for validation to reject.
func Classify(v any) Export {
	if v == nil {
		return Export{Kind: ExportNone}
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		return Export{Kind: ExportList, Value: v}
	}
	rec, ok := AsRecord(v)
	if !ok {
		return Export{Kind: ExportSingle, Value: v}
	}
	if _, named := rec[KeyName]; named || len(rec) == 0 {
		return Export{Kind: ExportSingle, Value: v}
	}
	for _, child := range rec {
		if _, ok := AsRecord(child); !ok {
			return Export{Kind: ExportSingle, Value: v}
		}
	}
	return Export{Kind: ExportNamespaced, Value: rec}
}

// Artifacts flattens the export into the canonical list shape. Namespaced
// exports are expanded in sorted namespace and name order so repeated runs
// produce identical lists.
func (e Export) Artifacts() []any {
	switch e.Kind {
	case ExportNone:
		return []any{}
	case ExportList:
		return AsList(e.Value)
	case ExportNamespaced:
		rec, _ := AsRecord(e.Value)
		return flattenNamespaced(rec)
	default:
		return []any{e.Value}
	}
}

// Normalize is Classify(v).Artifacts().
func Normalize(v any) []any {
	return Classify(v).Artifacts()
}

func flattenNamespaced(byNamespace map[string]any) []any {
	var out []any
	for _, ns := range sortedKeys(byNamespace) {
		group, _ := AsRecord(byNamespace[ns])

		// A namespace entry may itself be one named artifact.
		if name, ok := group[KeyName].(string); ok {
			a := Artifact(group).Clone()
			a[KeyName] = name
			if _, set := a[KeyNamespace]; !set {
				a[KeyNamespace] = ns
			}
			out = append(out, a)
			continue
		}

		for _, name := range sortedKeys(group) {
			payload := group[name]
			if rec, ok := AsRecord(payload); ok {
				a := Artifact(rec).Clone()
				if _, set := a[KeyName]; !set {
					a[KeyName] = name
				}
				if _, set := a[KeyNamespace]; !set {
					a[KeyNamespace] = ns
				}
				out = append(out, a)
				continue
			}
			out = append(out, Artifact{
				KeyNamespace: ns,
				KeyName:      name,
				KeyMethod:    payload,
			})
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
