package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/netbuf/pkg/bufconn"
	"github.com/haivivi/netbuf/pkg/encoding"
	"github.com/haivivi/netbuf/pkg/frame"
	"github.com/haivivi/netbuf/pkg/server"
)

var (
	sendMode    string
	sendTimeout time.Duration
	sendNoWait  bool
)

var sendCmd = &cobra.Command{
	Use:   "send ADDR [messages...]",
	Short: "Send messages and print the replies",
	Long: `Connect to ADDR, send every message with the configured framing and
print one reply per message.

ADDR is host:port for TCP, or a tcp://, tls://, ws:// or wss:// URL.
Replies that are not printable text are shown as hex.

Examples:
  netbuf send 127.0.0.1:9000 hello world
  netbuf send ws://127.0.0.1:8080/ --mode frame ping
  netbuf send 127.0.0.1:9000 --no-wait bye`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendMode, "mode", "", "line or frame (default from config)")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 5*time.Second, "time to wait for replies")
	sendCmd.Flags().BoolVar(&sendNoWait, "no-wait", false, "do not wait for replies")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	modeName := cfg.Server.Mode
	if sendMode != "" {
		modeName = sendMode
	}
	mode, err := server.ParseMode(modeName)
	if err != nil {
		return err
	}
	framer, err := server.NewFramer(mode, cfg.LineCodec(), cfg.LengthCodec())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
	defer cancel()

	conn, err := bufconn.Dial(ctx, args[0], cfg.BufferOptions())
	if err != nil {
		return err
	}
	defer conn.Close()

	messages := args[1:]
	for _, msg := range messages {
		if err := framer.Encode(conn.Out, []byte(msg)); err != nil {
			return err
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	if sendNoWait || len(messages) == 0 {
		return nil
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	replies, err := readReplies(conn, framer, len(messages))
	for _, reply := range replies {
		printReply(cmd.OutOrStdout(), reply)
	}
	if err != nil {
		return fmt.Errorf("received %d of %d replies: %w", len(replies), len(messages), err)
	}
	return nil
}

// readReplies decodes messages from conn until want of them arrived.
func readReplies(conn *bufconn.Conn, framer server.Framer, want int) ([][]byte, error) {
	var (
		replies [][]byte
		readErr error
	)
	for len(replies) < want {
		msg, err := framer.Decode(conn.In)
		if err == nil {
			replies = append(replies, msg)
			continue
		}
		if !errors.Is(err, frame.ErrIncomplete) {
			return replies, err
		}
		// Fill may return bytes together with an error; decode those first.
		if readErr != nil {
			switch {
			case errors.Is(readErr, os.ErrDeadlineExceeded):
				return replies, context.DeadlineExceeded
			case errors.Is(readErr, io.EOF):
				return replies, io.ErrUnexpectedEOF
			}
			return replies, readErr
		}
		_, readErr = conn.Fill()
	}
	return replies, nil
}

func printReply(w io.Writer, msg []byte) {
	if s, ok := encoding.Text(msg); ok {
		fmt.Fprintln(w, s)
		return
	}
	fmt.Fprintln(w, encoding.HexData(msg).String())
}
