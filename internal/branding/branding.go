// Package branding provides compile-time identity values for the CLI.
//
// Edit branding.yaml in this package to rename the binary; //go:embed bakes
// it into the build.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	ConfigFile  string `yaml:"config_file"`
	EnvPrefix   string `yaml:"env_prefix"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:     "ctxloader",
			DisplayName: "ctxloader",
			Description: "Assemble an application context from artifact files",
			ConfigFile:  "ctxloader.yaml",
			EnvPrefix:   "CTXLOADER",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "ctxloader").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// ConfigFile returns the default config file name, looked up in the working
// directory.
func ConfigFile() string { load(); return defaults.ConfigFile }

// EnvPrefix returns the environment variable prefix (e.g., "CTXLOADER").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("root") → "CTXLOADER_ROOT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
