package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/agentx-labs/ctxloader/internal/handlers"
)

// Output formats for commands that print registries.
const (
	outputYAML = "yaml"
	outputJSON = "json"
)

// printable converts a registry into plain maps, slices and scalars. Functions
// are replaced by their handler description; struct fields use their yaml
// tag names.
func printable(v any, tbl *handlers.Table) any {
	if v == nil {
		return nil
	}
	return printableValue(reflect.ValueOf(v), tbl)
}

func printableValue(rv reflect.Value, tbl *handlers.Table) any {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return printableValue(rv.Elem(), tbl)
	case reflect.Func:
		if rv.IsNil() {
			return nil
		}
		return "func " + tbl.Describe(rv.Interface())
	case reflect.Map:
		if rv.IsNil() {
			return map[string]any{}
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = printableValue(iter.Value(), tbl)
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = printableValue(rv.Index(i), tbl)
		}
		return out
	case reflect.Struct:
		out := make(map[string]any)
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag, _, _ := strings.Cut(f.Tag.Get("yaml"), ","); tag != "" {
				if tag == "-" {
					continue
				}
				name = tag
			}
			out[name] = printableValue(rv.Field(i), tbl)
		}
		return out
	case reflect.Chan, reflect.UnsafePointer:
		return rv.Type().String()
	default:
		return rv.Interface()
	}
}

// writeOutput encodes v to w as YAML or JSON.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case outputYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputYAML, outputJSON)
	}
}

// sortedKeys returns m's keys in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
