package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentx-labs/ctxloader/internal/manifest"
)

var validateFeatures bool

// errInvalidFiles is returned when at least one file has schema issues.
var errInvalidFiles = errors.New("artifact files failed validation")

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check artifact files against the artifact schema",
	Long: `Parse each file, normalize its export shape and validate every record
against the embedded JSON schema. Use --features for feature manifests.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := manifest.SchemaArtifact
		if validateFeatures {
			kind = manifest.SchemaFeature
		}
		return runValidate(afero.NewOsFs(), kind, args, cmd.OutOrStdout())
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateFeatures, "features", false, "Validate feature manifests instead of artifacts")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(fs afero.Fs, kind manifest.Schema, files []string, w io.Writer) error {
	invalid := 0
	for _, file := range files {
		result, err := manifest.ValidateFile(fs, kind, file)
		if err != nil {
			fmt.Fprintf(w, "FAIL %s\n  %v\n", file, err)
			invalid++
			continue
		}
		if result.Valid {
			fmt.Fprintf(w, "ok   %s\n", file)
			continue
		}
		invalid++
		fmt.Fprintf(w, "FAIL %s\n", file)
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  %s\n", issue)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidFiles, invalid, len(files))
	}
	return nil
}
