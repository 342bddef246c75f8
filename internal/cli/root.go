package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/branding"
	"github.com/agentx-labs/ctxloader/internal/config"
	"github.com/agentx-labs/ctxloader/internal/handlers"
	"github.com/agentx-labs/ctxloader/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

// handlerTable holds the functions artifact files may reference. Programs
// embedding the CLI register theirs through Handlers before Execute.
var handlerTable = handlers.New()

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` discovers artifact files, normalizes and validates them, and folds
them into typed registries that together form an application context.
Loaders are listed in ` + branding.ConfigFile() + ` and run in order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json); overrides the config file")
}

// Handlers returns the table the load and features commands resolve
// function references against.
func Handlers() *handlers.Table {
	return handlerTable
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// loadConfig reads and validates the config file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", configPath, err)
	}
	return cfg, nil
}

// newLogger builds the command logger. Flags win over the config file.
func newLogger(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	level, format := logLevel, logFormat
	if cfg != nil {
		if level == "" {
			level = cfg.Log.Level
		}
		if format == "" {
			format = cfg.Log.Format
		}
	}
	return logging.New(level, format, w)
}
