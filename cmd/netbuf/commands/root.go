package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/netbuf/pkg/cli"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	formatOutput string

	// Loaded by PersistentPreRunE.
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "netbuf",
	Short: "Buffered network messaging toolkit",
	Long: `netbuf - tools around a growable network byte buffer.

It runs line or length-prefixed message servers, sends messages, encodes
and decodes msgpack frames, records traffic and draws buffer layouts.

Configuration is read from the OS config directory:
  macOS:   ~/Library/Application Support/netbuf/config.yaml
  Linux:   ~/.config/netbuf/config.yaml
  Windows: %AppData%/netbuf/config.yaml

Examples:
  # Serve line-delimited messages and capture the traffic
  netbuf serve --addr 127.0.0.1:9000 --capture ./captures

  # Talk to it
  netbuf send 127.0.0.1:9000 hello world

  # Encode YAML documents into length-prefixed msgpack frames
  netbuf frames encode -f messages.yaml -o messages.bin
  netbuf frames decode -f messages.bin --jq '.id'`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			return err
		}
		globalConfig = cfg
		return cli.SetupLogging(os.Stderr, cfg.Log.Level, verbose)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <user config dir>/netbuf/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "yaml", "output format: yaml, json or raw")
}

// getConfig returns the configuration loaded for the running command.
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return globalConfig, nil
}

// output prints result in the --format chosen on the command line.
func output(cmd *cobra.Command, result any) error {
	format, err := cli.ParseFormat(formatOutput)
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		Writer: cmd.OutOrStdout(),
	})
}
