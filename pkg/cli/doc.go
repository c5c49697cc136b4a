// Package cli provides the configuration, output and terminal rendering
// shared by the netbuf command.
//
// This package includes:
//   - Configuration loading and saving (YAML, see [Config])
//   - Output formatting (YAML, JSON, raw)
//   - Multi-document YAML input for frame encoding
//   - slog setup
//   - A lipgloss diagram of a buffer's regions ([RenderLayout])
//
// The configuration lives in <user config dir>/netbuf/config.yaml unless a
// path is given explicitly.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig(configPath)
//	if err != nil {
//	    return err
//	}
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
