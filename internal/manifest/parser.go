package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// ParseFile reads an artifact file and returns its documents.
func ParseFile(fs afero.Fs, path string) ([]any, error) {
	data, err := readFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes every document in data. The path's extension selects the
// format; JSON is decoded with the YAML decoder since it is a subset. Empty
// documents are dropped.
func Parse(path string, data []byte) ([]any, error) {
	if !isArtifactFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	var docs []any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if doc == nil {
			continue
		}
		docs = append(docs, normalizeYAML(doc))
	}
	return docs, nil
}

// isArtifactFile reports whether the file name has a supported extension.
func isArtifactFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// normalizeYAML converts YAML-decoded values to JSON-compatible types so
// string-keyed records are always map[string]any.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	default:
		return val
	}
}

func readFile(fs afero.Fs, path string) ([]byte, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
