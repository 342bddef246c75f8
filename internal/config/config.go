package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/agentx-labs/ctxloader/internal/branding"
	"github.com/agentx-labs/ctxloader/internal/logging"
)

const (
	fileType = "yaml"

	// CurrentVersion is written into new config files.
	CurrentVersion = "1.0.0"

	// SupportedVersions is the semver constraint a config file version must meet.
	SupportedVersions = "^1"
)

// newViper returns a viper instance bound to path and the environment.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("version", CurrentVersion)
	v.SetDefault("root", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("continue_on_error", false)
	return v
}

// DefaultPath returns $CTXLOADER_CONFIG when set, otherwise the config file in
// the working directory.
func DefaultPath() string {
	if p := os.Getenv(branding.EnvVar("config")); p != "" {
		return p
	}
	return branding.ConfigFile()
}

// Load reads the config file at path. Environment variables override scalar
// keys, e.g. CTXLOADER_LOG_LEVEL=debug.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.Dir = filepath.Dir(abs)
	return &cfg, nil
}

// Validate reports every problem with the config at once.
func (c *Config) Validate() error {
	var errs error

	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	ver, err := semver.NewVersion(c.Version)
	switch {
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, c.Version, err))
	case !constraint.Check(ver):
		errs = multierr.Append(errs, fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, c.Version, SupportedVersions))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = multierr.Append(errs, err)
	}
	switch c.Log.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	for i, s := range c.Sources {
		if s.Name == "" || s.Path == "" {
			errs = multierr.Append(errs, fmt.Errorf("sources[%d]: name and path are required", i))
		}
	}

	names := make(map[string]bool)
	keys := make(map[string]string)
	for i, l := range c.Loaders {
		if l.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("loaders[%d]: name is required", i))
			continue
		}
		if names[l.Name] {
			errs = multierr.Append(errs, fmt.Errorf("loaders[%d]: duplicate loader name %q", i, l.Name))
		}
		names[l.Name] = true

		if !l.Kind.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("loader %q: %w %q", l.Name, ErrUnknownKind, l.Kind))
		}
		if prev, taken := keys[l.Key()]; taken {
			errs = multierr.Append(errs, fmt.Errorf("loader %q: context key %q already written by loader %q", l.Name, l.Key(), prev))
		}
		keys[l.Key()] = l.Name
	}
	return errs
}

// Get returns the value stored under key in the config file at path, with
// environment overrides applied.
func Get(path, key string) (any, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return v.Get(key), nil
}

// Set writes a key-value pair into the config file at path, creating the
// file if needed.
func Set(path, key, value string) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	v.Set(key, value)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory %s: %w", dir, err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
