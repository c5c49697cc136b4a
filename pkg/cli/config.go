package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/netbuf/pkg/buffer"
	"github.com/haivivi/netbuf/pkg/bufconn"
	"github.com/haivivi/netbuf/pkg/frame"
	"github.com/haivivi/netbuf/pkg/server"
)

// Config is the netbuf configuration file.
type Config struct {
	Buffer  BufferConfig  `yaml:"buffer"`
	Server  ServerConfig  `yaml:"server"`
	Capture CaptureConfig `yaml:"capture"`
	Log     LogConfig     `yaml:"log"`

	path string
}

// BufferConfig sizes connection buffers.
type BufferConfig struct {
	Prepend     int `yaml:"prepend"`
	InitialSize int `yaml:"initial_size"`
}

// ServerConfig configures `netbuf serve` and the defaults of `netbuf send`.
type ServerConfig struct {
	// Network is tcp, tls, ws or wss.
	Network string `yaml:"network"`
	Addr    string `yaml:"addr"`

	// Mode is line or frame.
	Mode string `yaml:"mode"`

	// CRLF requires "\r\n" line terminators in line mode.
	CRLF          bool `yaml:"crlf,omitempty"`
	MaxLineLength int  `yaml:"max_line_length"`

	HeaderWidth  int `yaml:"header_width"`
	MaxFrameSize int `yaml:"max_frame_size"`

	// IdleTimeout is a Go duration string such as "5m". Empty disables it.
	IdleTimeout string `yaml:"idle_timeout,omitempty"`
}

// CaptureConfig configures traffic capture.
type CaptureConfig struct {
	// Dir is the badger directory. Empty disables capture in serve.
	Dir string `yaml:"dir,omitempty"`

	// Archive is the default target of capture export and import: a
	// directory, file:///path or s3://bucket/prefix.
	Archive string `yaml:"archive,omitempty"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Buffer: BufferConfig{
			Prepend:     buffer.DefaultPrepend,
			InitialSize: buffer.DefaultInitialSize,
		},
		Server: ServerConfig{
			Network:       "tcp",
			Addr:          "127.0.0.1:9000",
			Mode:          string(server.ModeLine),
			MaxLineLength: 64 * 1024,
			HeaderWidth:   frame.DefaultWidth,
			MaxFrameSize:  16 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads the configuration at path, or at DefaultConfigPath when
// path is empty. A missing file yields DefaultConfig. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if c.Buffer.Prepend < 0 || c.Buffer.InitialSize < 0 {
		return fmt.Errorf("buffer sizes must not be negative")
	}
	if _, err := server.ParseMode(c.Server.Mode); err != nil {
		return err
	}
	if err := c.LengthCodec().Validate(); err != nil {
		return err
	}
	if _, err := c.IdleTimeout(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration to its path, creating the directory.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no path")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the file the configuration was loaded from or will be saved
// to.
func (c *Config) Path() string {
	return c.path
}

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) {
	c.path = path
}

// IdleTimeout parses Server.IdleTimeout.
func (c *Config) IdleTimeout() (time.Duration, error) {
	if c.Server.IdleTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("idle_timeout: %w", err)
	}
	return d, nil
}

// BufferOptions returns the connection buffer sizes.
func (c *Config) BufferOptions() bufconn.Options {
	return bufconn.Options{
		Prepend:     c.Buffer.Prepend,
		InitialSize: c.Buffer.InitialSize,
	}
}

// LineCodec returns the line framing settings.
func (c *Config) LineCodec() frame.LineCodec {
	return frame.LineCodec{CRLF: c.Server.CRLF, MaxLength: c.Server.MaxLineLength}
}

// LengthCodec returns the length-prefix framing settings.
func (c *Config) LengthCodec() frame.LengthCodec {
	return frame.LengthCodec{Width: c.Server.HeaderWidth, MaxSize: c.Server.MaxFrameSize}
}
