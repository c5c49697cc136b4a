package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/netbuf/pkg/buffer"
	"github.com/haivivi/netbuf/pkg/cli"
)

var (
	inspectFile     string
	inspectText     string
	inspectPrepend  int
	inspectInitial  int
	inspectRetrieve int
	inspectShrink   int
	inspectWidth    int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Draw the layout of a buffer",
	Long: `Load bytes into a buffer, optionally consume or shrink it, and draw the
prependable, readable and writable regions.

Examples:
  netbuf inspect --text "hello, world" --retrieve 7
  netbuf inspect -f capture.bin --shrink 0
  echo hi | netbuf inspect -f - --prepend 16`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectPrepend < 0 || inspectInitial < 0 {
			return fmt.Errorf("--prepend and --initial must not be negative")
		}
		b := buffer.NewWithPrepend(inspectPrepend, inspectInitial)
		b.AppendString(inspectText)

		if inspectFile != "" {
			var r io.Reader = os.Stdin
			if inspectFile != "-" {
				f, err := os.Open(inspectFile)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				defer f.Close()
				r = f
			}
			if _, err := b.ReadFrom(r); err != nil {
				return err
			}
		}

		if inspectRetrieve > 0 {
			if inspectRetrieve > b.ReadableBytes() {
				return fmt.Errorf("--retrieve %d exceeds %d readable bytes", inspectRetrieve, b.ReadableBytes())
			}
			b.Retrieve(inspectRetrieve)
		}
		if cmd.Flags().Changed("shrink") {
			if inspectShrink < 0 {
				return fmt.Errorf("--shrink must not be negative")
			}
			b.Shrink(inspectShrink)
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderLayout(b, inspectWidth))
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "append the contents of a file (- for stdin)")
	inspectCmd.Flags().StringVar(&inspectText, "text", "", "append text")
	inspectCmd.Flags().IntVar(&inspectPrepend, "prepend", buffer.DefaultPrepend, "prepend margin")
	inspectCmd.Flags().IntVar(&inspectInitial, "initial", buffer.DefaultInitialSize, "initial writable size")
	inspectCmd.Flags().IntVar(&inspectRetrieve, "retrieve", 0, "consume N readable bytes")
	inspectCmd.Flags().IntVar(&inspectShrink, "shrink", 0, "shrink keeping N spare writable bytes")
	inspectCmd.Flags().IntVar(&inspectWidth, "width", 80, "frame width")
	rootCmd.AddCommand(inspectCmd)
}
