package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/netbuf/pkg/buffer"
	"github.com/haivivi/netbuf/pkg/capture"
	"github.com/haivivi/netbuf/pkg/cli"
	"github.com/haivivi/netbuf/pkg/encoding"
	"github.com/haivivi/netbuf/pkg/kv"
	"github.com/haivivi/netbuf/pkg/storage"
)

var (
	captureDir       string
	captureDirection string
	captureHex       bool
	captureArchive   string
	captureForce     bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Inspect traffic recorded by serve --capture",
	Long: `List, show, replay and drop captured sessions.

The store defaults to the capture.dir configuration, then to the user
cache directory (<cache>/netbuf/captures).

Examples:
  netbuf capture list --dir ./captures
  netbuf capture show 6f1c... --format json
  netbuf capture replay 6f1c... --direction in > session.bin
  netbuf capture drop 6f1c...
  netbuf capture export 6f1c... --archive s3://captures/netbuf
  netbuf capture import 6f1c... --archive ./archive`,
}

var captureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCaptureStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := capture.Sessions(cmd.Context(), store)
		if err != nil {
			return err
		}
		type summary struct {
			Session string `json:"session" yaml:"session"`
			Records int    `json:"records" yaml:"records"`
			Bytes   int    `json:"bytes" yaml:"bytes"`
		}
		result := []summary{}
		for _, s := range sessions {
			records, err := capture.List(cmd.Context(), store, s)
			if err != nil {
				return err
			}
			sum := summary{Session: s, Records: len(records)}
			for _, rec := range records {
				sum.Bytes += len(rec.Payload)
			}
			result = append(result, sum)
		}
		return output(cmd, result)
	},
}

// recordView is how a captured record is printed.
type recordView struct {
	Seq  uint64           `json:"seq" yaml:"seq"`
	Time time.Time        `json:"time" yaml:"time"`
	Dir  string           `json:"dir" yaml:"dir"`
	Size int              `json:"size" yaml:"size"`
	Text string           `json:"text,omitempty" yaml:"text,omitempty"`
	Hex  encoding.HexData `json:"hex,omitempty" yaml:"hex,omitempty"`
}

var captureShowCmd = &cobra.Command{
	Use:   "show SESSION",
	Short: "Print the records of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCaptureStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := capture.List(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%w: %s", capture.ErrNoSession, args[0])
		}
		views := make([]recordView, 0, len(records))
		for _, rec := range records {
			v := recordView{
				Seq:  rec.Seq,
				Time: rec.Time,
				Dir:  rec.Dir.String(),
				Size: len(rec.Payload),
			}
			if s, ok := encoding.Text(rec.Payload); ok && !captureHex {
				v.Text = s
			} else {
				v.Hex = rec.Payload
			}
			views = append(views, v)
		}
		return output(cmd, views)
	},
}

var captureReplayCmd = &cobra.Command{
	Use:   "replay SESSION",
	Short: "Write the payloads of one direction back to back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := capture.ParseDirection(captureDirection)
		if err != nil {
			return err
		}
		store, err := openCaptureStore()
		if err != nil {
			return err
		}
		defer store.Close()

		b := buffer.New()
		n, err := capture.Replay(cmd.Context(), store, args[0], dir, b)
		if err != nil {
			return err
		}
		if captureHex {
			fmt.Fprintln(cmd.OutOrStdout(), encoding.HexData(b.Peek()).String())
		} else if _, err := b.WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "replayed %d records\n", n)
		}
		return nil
	},
}

var captureDropCmd = &cobra.Command{
	Use:   "drop SESSION",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCaptureStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := capture.Delete(cmd.Context(), store, args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "dropped session %s", args[0])
		return nil
	},
}

var captureExportCmd = &cobra.Command{
	Use:   "export SESSION",
	Short: "Write a session to a directory or S3 bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := openArchive()
		if err != nil {
			return err
		}
		store, err := openCaptureStore()
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := capture.Export(cmd.Context(), store, args[0], files, captureForce)
		if err != nil {
			return err
		}
		return output(cmd, res)
	},
}

var captureImportCmd = &cobra.Command{
	Use:   "import SESSION",
	Short: "Load an exported session into the capture store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := openArchive()
		if err != nil {
			return err
		}
		store, err := openCaptureStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := capture.Import(cmd.Context(), files, args[0], store)
		if err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "imported %d records into session %s", n, args[0])
		return nil
	},
}

func init() {
	captureCmd.PersistentFlags().StringVar(&captureDir, "dir", "", "capture store directory")
	captureCmd.PersistentFlags().BoolVar(&captureHex, "hex", false, "print payloads as hex")
	captureReplayCmd.Flags().StringVar(&captureDirection, "direction", "in", "in or out")
	for _, c := range []*cobra.Command{captureExportCmd, captureImportCmd} {
		c.Flags().StringVar(&captureArchive, "archive", "", "directory, file:///path or s3://bucket/prefix (default capture.archive)")
	}
	captureExportCmd.Flags().BoolVar(&captureForce, "force", false, "overwrite an existing export")

	captureCmd.AddCommand(captureListCmd)
	captureCmd.AddCommand(captureShowCmd)
	captureCmd.AddCommand(captureReplayCmd)
	captureCmd.AddCommand(captureDropCmd)
	captureCmd.AddCommand(captureExportCmd)
	captureCmd.AddCommand(captureImportCmd)
	rootCmd.AddCommand(captureCmd)
}

func openCaptureStore() (*kv.Badger, error) {
	dir := captureDir
	if dir == "" {
		cfg, err := getConfig()
		if err != nil {
			return nil, err
		}
		dir = cfg.Capture.Dir
	}
	if dir == "" {
		paths, err := cli.NewPaths()
		if err != nil {
			return nil, err
		}
		if err := paths.EnsureCaptureDir(); err != nil {
			return nil, err
		}
		dir = paths.CaptureDir()
	}
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("open capture store: %w", err)
	}
	return store, nil
}

func openArchive() (storage.FileStore, error) {
	target := captureArchive
	if target == "" {
		cfg, err := getConfig()
		if err != nil {
			return nil, err
		}
		target = cfg.Capture.Archive
	}
	if target == "" {
		return nil, fmt.Errorf("no archive given (use --archive or capture.archive)")
	}
	return storage.Open(target)
}
