// Package build holds build-time version information injected via ldflags.
//
//	go build -ldflags "-X github.com/haivivi/netbuf/cmd/netbuf/internal/build.Version=v1.0.0 \
//	  -X github.com/haivivi/netbuf/cmd/netbuf/internal/build.Commit=$(git rev-parse --short HEAD)"
package build

import (
	"fmt"
	"runtime"
)

// These variables are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// Info is the version report printed by `netbuf version`.
type Info struct {
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit" yaml:"commit"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:  Version,
		Commit:   Commit,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line version string.
func String() string {
	i := Get()
	return fmt.Sprintf("netbuf %s (%s) %s %s", i.Version, i.Commit, i.Go, i.Platform)
}
