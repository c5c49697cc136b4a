package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/netbuf/pkg/bufconn"
	"github.com/haivivi/netbuf/pkg/capture"
	"github.com/haivivi/netbuf/pkg/kv"
	"github.com/haivivi/netbuf/pkg/server"
)

var (
	serveAddr        string
	serveNetwork     string
	serveMode        string
	serveCapture     string
	serveIdleTimeout string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an echo server",
	Long: `Run a server that splits incoming bytes into lines or length-prefixed
frames and echoes every message back with the same framing.

Flags override the server section of the configuration file.

Examples:
  netbuf serve
  netbuf serve --addr :9000 --mode frame
  netbuf serve --network ws --addr 127.0.0.1:8080 --capture ./captures`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address")
	serveCmd.Flags().StringVar(&serveNetwork, "network", "", "tcp or ws")
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "line or frame")
	serveCmd.Flags().StringVar(&serveCapture, "capture", "", "record traffic into this badger directory")
	serveCmd.Flags().StringVar(&serveIdleTimeout, "idle-timeout", "", "close idle connections after this duration")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if flags.Changed("network") {
		cfg.Server.Network = serveNetwork
	}
	if flags.Changed("mode") {
		cfg.Server.Mode = serveMode
	}
	if flags.Changed("capture") {
		cfg.Capture.Dir = serveCapture
	}
	if flags.Changed("idle-timeout") {
		cfg.Server.IdleTimeout = serveIdleTimeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode, _ := server.ParseMode(cfg.Server.Mode)
	idle, _ := cfg.IdleTimeout()
	srv := &server.Server{
		Mode:        mode,
		Line:        cfg.LineCodec(),
		Length:      cfg.LengthCodec(),
		IdleTimeout: idle,
		Options:     cfg.BufferOptions(),
	}

	if cfg.Capture.Dir != "" {
		store, err := kv.NewBadger(kv.BadgerOptions{Dir: cfg.Capture.Dir})
		if err != nil {
			return fmt.Errorf("open capture store: %w", err)
		}
		defer store.Close()
		srv.Recorder = capture.NewRecorder(store)
	}

	ln, err := bufconn.Listen(cfg.Server.Network, cfg.Server.Addr, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s://%s (%s mode)\n", cfg.Server.Network, ln.Addr(), mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx, ln)
}
