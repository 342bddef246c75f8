package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/bootstrap"
	"github.com/agentx-labs/ctxloader/internal/config"
	"github.com/agentx-labs/ctxloader/internal/feature"
	"github.com/agentx-labs/ctxloader/internal/handlers"
)

var featuresJSON bool

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Merge feature manifests and report duplicate keys",
	Long: `Run only the loaders of kind "features", list the keys each merged
sub-registry ends up with, and report keys contributed by more than one
feature. Duplicates are informational; the last manifest wins.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runFeatures(cmd.Context(), cfg, afero.NewOsFs(), handlerTable, featuresJSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	featuresCmd.Flags().BoolVar(&featuresJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(featuresCmd)
}

// featureSummary is the JSON shape of the features command.
type featureSummary struct {
	Loader     string              `json:"loader"`
	Keys       map[string][]string `json:"keys"`
	Duplicates []feature.Duplicate `json:"duplicates"`
}

func runFeatures(ctx context.Context, cfg *config.Config, fs afero.Fs, tbl *handlers.Table, asJSON bool, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	only := *cfg
	only.Loaders = nil
	for _, l := range cfg.Loaders {
		if l.Kind == config.KindFeatures {
			only.Loaders = append(only.Loaders, l)
		}
	}
	if len(only.Loaders) == 0 {
		fmt.Fprintln(stdout, "No feature loaders configured.")
		return nil
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Function references are irrelevant to merging; keep them as stubs.
	c, report, err := bootstrap.Run(ctx, &only, bootstrap.Deps{
		Fs:       fs,
		Handlers: tbl,
		Logger:   logger,
		OnUnresolved: func(_, name string) (any, error) {
			return handlers.Stub(name), nil
		},
	})
	if err != nil {
		return fmt.Errorf("merging features: %w", err)
	}

	summaries := make([]featureSummary, 0, len(only.Loaders))
	for _, l := range only.Loaders {
		set, _ := appctx.Lookup[feature.Set](c, l.Key())
		s := featureSummary{Loader: l.Name, Keys: make(map[string][]string)}
		for _, name := range feature.Registries {
			s.Keys[name] = sortedKeys(set.Registry(name))
		}
		summaries = append(summaries, s)
	}
	if len(summaries) > 0 {
		summaries[len(summaries)-1].Duplicates = report.Duplicates
	}

	if asJSON {
		return writeOutput(stdout, outputJSON, summaries)
	}
	return printFeatureTable(stdout, summaries, report.Duplicates)
}

func printFeatureTable(w io.Writer, summaries []featureSummary, dups []feature.Duplicate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOADER\tREGISTRY\tKEYS")
	for _, s := range summaries {
		for _, name := range feature.Registries {
			keys := s.Keys[name]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Loader, name, joinOrDash(keys))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(dups) == 0 {
		fmt.Fprintln(w, "\nNo duplicate keys.")
		return nil
	}

	fmt.Fprintf(w, "\n%d duplicate key(s):\n", len(dups))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REGISTRY\tKEY\tFEATURES")
	for _, d := range dups {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Registry, d.Key, strings.Join(d.Features, " -> "))
	}
	return tw.Flush()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
