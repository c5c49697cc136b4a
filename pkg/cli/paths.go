package cli

import (
	"os"
	"path/filepath"
)

const (
	// AppName names the per-user directories.
	AppName = "netbuf"
	// DefaultConfigFile is the configuration filename inside the app
	// directory.
	DefaultConfigFile = "config.yaml"
)

// Paths locates netbuf's per-user directories.
type Paths struct {
	// ConfigDir is the user configuration root, os.UserConfigDir().
	ConfigDir string

	// CacheDir is the user cache root, os.UserCacheDir().
	CacheDir string
}

// NewPaths resolves the user directories.
func NewPaths() (*Paths, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return &Paths{ConfigDir: cfg, CacheDir: cache}, nil
}

// AppDir returns <config>/netbuf.
func (p *Paths) AppDir() string {
	return filepath.Join(p.ConfigDir, AppName)
}

// ConfigFile returns <config>/netbuf/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// CaptureDir returns <cache>/netbuf/captures, the default capture store.
func (p *Paths) CaptureDir() string {
	return filepath.Join(p.CacheDir, AppName, "captures")
}

// EnsureCaptureDir creates the capture directory if it doesn't exist.
func (p *Paths) EnsureCaptureDir() error {
	return os.MkdirAll(p.CaptureDir(), 0755)
}

// DefaultConfigPath returns the configuration file used when no --config
// flag is given.
func DefaultConfigPath() (string, error) {
	p, err := NewPaths()
	if err != nil {
		return "", err
	}
	return p.ConfigFile(), nil
}
