package config

import (
	"errors"
	"path/filepath"
)

// Kind selects the registry builder a loader uses.
type Kind string

const (
	KindFlat         Kind = "flat"
	KindNamespaced   Kind = "namespaced"
	KindHierarchical Kind = "hierarchical"
	KindEvents       Kind = "events"
	KindFeatures     Kind = "features"
)

// Kinds lists every supported loader kind.
var Kinds = []Kind{KindFlat, KindNamespaced, KindHierarchical, KindEvents, KindFeatures}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

var (
	// ErrUnknownKind is returned for a loader whose kind has no builder.
	ErrUnknownKind = errors.New("unknown loader kind")

	// ErrUnsupportedVersion is returned when the config format version is
	// not 1.x.
	ErrUnsupportedVersion = errors.New("unsupported config version")
)

// Config is the parsed ctxloader.yaml.
type Config struct {
	Version         string         `mapstructure:"version" yaml:"version"`
	Root            string         `mapstructure:"root" yaml:"root"`
	Sources         []SourceConfig `mapstructure:"sources" yaml:"sources,omitempty"`
	Log             LogConfig      `mapstructure:"log" yaml:"log"`
	ContinueOnError bool           `mapstructure:"continue_on_error" yaml:"continue_on_error"`
	Loaders         []LoaderConfig `mapstructure:"loaders" yaml:"loaders"`

	// Dir is the directory the config file was read from. Relative paths
	// resolve against it.
	Dir string `mapstructure:"-" yaml:"-"`
}

// SourceConfig is an extra discovery root. Earlier sources shadow later
// ones on identical relative paths.
type SourceConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// LoaderConfig describes one loader.
type LoaderConfig struct {
	Name           string   `mapstructure:"name" yaml:"name"`
	Kind           Kind     `mapstructure:"kind" yaml:"kind"`
	Patterns       []string `mapstructure:"patterns" yaml:"patterns"`
	ContextKey     string   `mapstructure:"context_key" yaml:"context_key,omitempty"`
	WarnDuplicates bool     `mapstructure:"warn_duplicates" yaml:"warn_duplicates,omitempty"`
	SkipOnError    bool     `mapstructure:"skip_on_error" yaml:"skip_on_error,omitempty"`
}

// Key returns the context key the loader writes under.
func (l LoaderConfig) Key() string {
	if l.ContextKey != "" {
		return l.ContextKey
	}
	return l.Name
}

// ResolvePath makes p absolute relative to the config file's directory.
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// SearchRoots returns the discovery roots in search order. The root
// directory always comes first, named "local".
func (c *Config) SearchRoots() []SourceConfig {
	roots := []SourceConfig{{Name: "local", Path: c.ResolvePath(c.Root)}}
	for _, s := range c.Sources {
		roots = append(roots, SourceConfig{Name: s.Name, Path: c.ResolvePath(s.Path)})
	}
	return roots
}

// Loader returns the loader config with the given name.
func (c *Config) Loader(name string) (LoaderConfig, bool) {
	for _, l := range c.Loaders {
		if l.Name == name {
			return l, true
		}
	}
	return LoaderConfig{}, false
}
