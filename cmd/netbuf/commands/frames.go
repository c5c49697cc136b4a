package commands

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/haivivi/netbuf/pkg/buffer"
	"github.com/haivivi/netbuf/pkg/cli"
	"github.com/haivivi/netbuf/pkg/frame"
)

var (
	framesInput  string
	framesOutput string
	framesJQ     string
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "Encode and decode msgpack frames",
	Long: `Convert between YAML documents and a stream of length-prefixed msgpack
frames. The header width and size limit come from the server section of
the configuration.

Examples:
  netbuf frames encode -f messages.yaml -o messages.bin
  cat messages.yaml | netbuf frames encode -f - > messages.bin
  netbuf frames decode -f messages.bin --format json
  netbuf frames decode -f messages.bin --jq 'select(.kind == "ping") | .id'`,
}

var framesEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode YAML documents as frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		docs, err := cli.LoadDocuments(framesInput)
		if err != nil {
			return err
		}

		codec := frame.MsgpackCodec{Length: cfg.LengthCodec()}
		b := buffer.New()
		for i, doc := range docs {
			if err := codec.AppendTo(b, doc); err != nil {
				return fmt.Errorf("document %d: %w", i+1, err)
			}
		}

		var w io.Writer = cmd.OutOrStdout()
		if framesOutput != "" && framesOutput != "-" {
			f, err := os.Create(framesOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		n := b.ReadableBytes()
		if _, err := b.WriteTo(w); err != nil {
			return err
		}
		if w != cmd.OutOrStdout() {
			cli.PrintSuccess(cmd.ErrOrStderr(), "encoded %d frames (%s) to %s", len(docs), cli.FormatBytesInt(n), framesOutput)
		}
		return nil
	},
}

var framesDecodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode frames into YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		values, err := decodeFrames(framesInput, frame.MsgpackCodec{Length: cfg.LengthCodec()})
		if err != nil {
			return err
		}
		if framesJQ != "" {
			values, err = runJQ(framesJQ, values)
			if err != nil {
				return err
			}
		}
		return output(cmd, values)
	},
}

func init() {
	framesEncodeCmd.Flags().StringVarP(&framesInput, "file", "f", "-", "YAML input file (- for stdin)")
	framesEncodeCmd.Flags().StringVarP(&framesOutput, "output", "o", "", "output file (default stdout)")

	framesDecodeCmd.Flags().StringVarP(&framesInput, "file", "f", "-", "frame file (- for stdin)")
	framesDecodeCmd.Flags().StringVar(&framesJQ, "jq", "", "jq expression applied to every frame")

	framesCmd.AddCommand(framesEncodeCmd)
	framesCmd.AddCommand(framesDecodeCmd)
	rootCmd.AddCommand(framesCmd)
}

// decodeFrames reads every frame of path. Bytes left after the last
// complete frame are reported as truncation.
func decodeFrames(path string, codec frame.MsgpackCodec) ([]any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		defer f.Close()
		r = f
	}

	b := buffer.New()
	if _, err := b.ReadFrom(r); err != nil {
		return nil, err
	}

	values := []any{}
	for b.ReadableBytes() > 0 {
		var v any
		err := codec.Decode(b, &v)
		if errors.Is(err, frame.ErrIncomplete) {
			return nil, fmt.Errorf("frame %d truncated: %d trailing bytes", len(values)+1, b.ReadableBytes())
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(values)+1, err)
		}
		values = append(values, normalize(v))
	}
	return values, nil
}

// runJQ evaluates expr against every value and collects the results.
func runJQ(expr string, values []any) ([]any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	results := []any{}
	for _, v := range values {
		iter := query.Run(v)
		for {
			out, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := out.(error); ok {
				return nil, fmt.Errorf("jq: %w", err)
			}
			results = append(results, out)
		}
	}
	return results, nil
}

// normalize converts msgpack-decoded values into the types jq operates on:
// int, float64, *big.Int, string, bool, nil, []any and map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		if x > uint64(^uint(0)>>1) {
			return new(big.Int).SetUint64(x)
		}
		return int(x)
	case uint:
		if x > ^uint(0)>>1 {
			return new(big.Int).SetUint64(uint64(x))
		}
		return int(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	default:
		return v
	}
}
