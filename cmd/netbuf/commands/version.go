package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/netbuf/cmd/netbuf/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("format") {
			return output(cmd, build.Get())
		}
		fmt.Fprintln(cmd.OutOrStdout(), build.String())
		if verbose {
			if cfg, err := getConfig(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  config: %s\n", cfg.Path())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
