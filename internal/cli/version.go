package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/ctxloader/internal/branding"
	"github.com/agentx-labs/ctxloader/internal/config"
)

var (
	versionShort  bool
	versionOutput string
)

type versionInfo struct {
	Version       string `json:"version" yaml:"version"`
	Commit        string `json:"commit" yaml:"commit"`
	Date          string `json:"date" yaml:"date"`
	ConfigVersion string `json:"config_version" yaml:"config_version"`
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "", "Structured output format (yaml, json)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and the supported config format",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch {
		case versionShort:
			fmt.Fprintln(out, buildVersion)
			return nil
		case versionOutput != "":
			return writeOutput(out, versionOutput, versionInfo{
				Version:       buildVersion,
				Commit:        buildCommit,
				Date:          buildDate,
				ConfigVersion: config.SupportedVersions,
			})
		}
		fmt.Fprintf(out, "%s %s (commit %s, built %s)\n", branding.CLIName(), buildVersion, buildCommit, buildDate)
		fmt.Fprintf(out, "config format %s\n", config.SupportedVersions)
		return nil
	},
}
