package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/ctxloader/internal/config"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write config file settings",
	Long:  `Read and write scalar settings in the config file named by --config, e.g. log.level.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(configPath, key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(configPath, args[0])
		if err != nil {
			return err
		}
		switch v := value.(type) {
		case nil:
			fmt.Fprintln(cmd.OutOrStdout())
		case string, bool, int, float64:
			fmt.Fprintln(cmd.OutOrStdout(), v)
		default:
			return writeOutput(cmd.OutOrStdout(), outputYAML, v)
		}
		return nil
	},
}
