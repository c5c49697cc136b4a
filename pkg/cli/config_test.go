package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Buffer.Prepend != 8 || cfg.Buffer.InitialSize != 1024 {
		t.Errorf("buffer defaults = %+v", cfg.Buffer)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("LoadConfig created the file: %v", err)
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netbuf", "config.yaml")
	cfg := DefaultConfig()
	cfg.SetPath(path)
	cfg.Server.Mode = "frame"
	cfg.Server.HeaderWidth = 2
	cfg.Server.IdleTimeout = "90s"
	cfg.Capture.Dir = "/tmp/captures"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if loaded.Server.Mode != "frame" || loaded.LengthCodec().Width != 2 {
		t.Errorf("server = %+v", loaded.Server)
	}
	if d, _ := loaded.IdleTimeout(); d != 90*time.Second {
		t.Errorf("IdleTimeout() = %v", d)
	}
	if loaded.Capture.Dir != "/tmp/captures" {
		t.Errorf("Capture.Dir = %q", loaded.Capture.Dir)
	}
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "server:\n  addr: 0.0.0.0:7000\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:7000" || cfg.Log.Level != "debug" {
		t.Errorf("loaded = %+v", cfg)
	}
	if cfg.Server.Mode != "line" || cfg.Buffer.InitialSize != 1024 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"mode", "server:\n  mode: xml\n", "mode"},
		{"width", "server:\n  header_width: 3\n", "width"},
		{"timeout", "server:\n  idle_timeout: soon\n", "idle_timeout"},
		{"level", "log:\n  level: loud\n", "level"},
		{"negative", "buffer:\n  prepend: -1\n", "negative"},
		{"syntax", "server: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(path, []byte(tt.data), 0644)
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("LoadConfig error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestConfig_Codecs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.CRLF = true
	cfg.Server.MaxLineLength = 80

	line := cfg.LineCodec()
	if !line.CRLF || line.MaxLength != 80 {
		t.Errorf("LineCodec() = %+v", line)
	}
	opts := cfg.BufferOptions()
	if opts.Prepend != 8 || opts.InitialSize != 1024 {
		t.Errorf("BufferOptions() = %+v", opts)
	}
}

func TestPaths(t *testing.T) {
	p := &Paths{ConfigDir: "/cfg", CacheDir: "/cache"}
	if got := p.ConfigFile(); got != filepath.Join("/cfg", "netbuf", "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
	if got := p.CaptureDir(); got != filepath.Join("/cache", "netbuf", "captures") {
		t.Errorf("CaptureDir() = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "", "warn", "error"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q) error: %v", s, err)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) succeeded")
	}
}
