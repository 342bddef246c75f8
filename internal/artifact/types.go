package artifact

import (
	"reflect"
)

// Well-known artifact keys read by the registry builders.
const (
	KeyName      = "name"
	KeyNamespace = "namespace"
	KeyMethod    = "method"
	KeyHandler   = "handler"
	KeyMeta      = "meta"
	KeyOptions   = "options"
)

// Artifact is a single named configuration unit. Payload fields are free-form;
// meta and options are carried through untouched.
type Artifact map[string]any

// Name returns the artifact's name, or "" when it is missing or not a string.
func (a Artifact) Name() string {
	s, _ := a.String(KeyName)
	return s
}

// String returns the string stored under key.
func (a Artifact) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Clone returns a shallow copy of the artifact.
func (a Artifact) Clone() Artifact {
	if a == nil {
		return nil
	}
	out := make(Artifact, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Handle is an opaque reference produced by discovery and resolved by the
// import stage.
type Handle struct {
	Path   string // location the importer resolves, e.g. "actions/users.yaml"
	Source string // name of the source root it was found in
}

func (h Handle) String() string { return h.Path }

// AsRecord reports whether v is a plain string-keyed record and returns it as
// a map[string]any. Nil maps are not records.
func AsRecord(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case Artifact:
		return map[string]any(t), t != nil
	case map[string]any:
		return t, t != nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// AsList coerces v to a list: nil becomes an empty list, slices are copied
// element-wise and any other value becomes a singleton.
func AsList(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case []Artifact:
		out := make([]any, len(t))
		for i, a := range t {
			out[i] = a
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	if rv.IsNil() {
		return []any{}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
