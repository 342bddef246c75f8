package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/bootstrap"
	"github.com/agentx-labs/ctxloader/internal/config"
	"github.com/agentx-labs/ctxloader/internal/handlers"
)

var (
	loadOnly            []string
	loadOutput          string
	loadReport          bool
	loadAllowUnresolved bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run the configured loaders and print the resulting context",
	Long: `Run every loader listed in the config file, in order, and print the
application context they build. Function references that are not registered
fail the load unless --allow-unresolved is set, in which case they are
printed as unregistered placeholders.`,
	Example: `  ctxloader load
  ctxloader load --only actions --only events -o json
  ctxloader load --report`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts := loadOptions{
			only:            loadOnly,
			output:          loadOutput,
			report:          loadReport,
			allowUnresolved: loadAllowUnresolved,
		}
		return runLoad(cmd.Context(), cfg, afero.NewOsFs(), handlerTable, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	loadCmd.Flags().StringSliceVar(&loadOnly, "only", nil, "Print only these context keys")
	loadCmd.Flags().StringVarP(&loadOutput, "output", "o", outputYAML, "Output format (yaml, json)")
	loadCmd.Flags().BoolVar(&loadReport, "report", false, "Print the per-loader report instead of the context")
	loadCmd.Flags().BoolVar(&loadAllowUnresolved, "allow-unresolved", false, "Replace unregistered handler references with placeholders")
	rootCmd.AddCommand(loadCmd)
}

type loadOptions struct {
	only            []string
	output          string
	report          bool
	allowUnresolved bool
}

func runLoad(ctx context.Context, cfg *config.Config, fs afero.Fs, tbl *handlers.Table, opts loadOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	deps := bootstrap.Deps{
		Fs:       fs,
		Handlers: tbl,
		Logger:   logger,
	}
	if opts.allowUnresolved {
		deps.OnUnresolved = func(_, name string) (any, error) {
			return handlers.Stub(name), nil
		}
	}

	c, report, err := bootstrap.Run(ctx, cfg, deps)
	if err != nil {
		return fmt.Errorf("loading context: %w", err)
	}

	if opts.report {
		return writeOutput(stdout, opts.output, printable(report, tbl))
	}
	return writeOutput(stdout, opts.output, contextView(c, opts.only, tbl))
}

// contextView selects the requested keys, or all of them, in printable form.
// Unknown keys are printed as null so typos are visible.
func contextView(c appctx.Context, only []string, tbl *handlers.Table) map[string]any {
	keys := only
	if len(keys) == 0 {
		keys = c.Keys()
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v, _ := c.Get(k)
		out[k] = printable(v, tbl)
	}
	return out
}
