// Package storage reads and writes whole files on a local directory or an
// S3-compatible bucket. The capture archive is its main user: exported
// sessions are written as a handful of files per session.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// ErrInvalidPath is returned for names that are empty, absolute or contain
// "." or ".." elements.
var ErrInvalidPath = errors.New("storage: invalid path")

// FileStore is a minimal interface for file-oriented storage.
//
// Names are forward-slash separated and relative to the store root. A
// missing file is reported with an error wrapping fs.ErrNotExist.
type FileStore interface {
	// Read opens the named file. The caller closes the returned reader.
	Read(ctx context.Context, name string) (io.ReadCloser, error)

	// Write creates or truncates the named file. The data is stored once
	// the returned writer is closed successfully.
	Write(ctx context.Context, name string) (io.WriteCloser, error)

	// Delete removes the named file. Removing a missing file is not an
	// error.
	Delete(ctx context.Context, name string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, name string) (bool, error)
}

func checkName(name string) error {
	if !fs.ValidPath(name) || name == "." {
		return fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return nil
}

// Open returns the FileStore for target:
//
//	s3://bucket[/prefix]   S3 bucket, client settings from S3ConfigFromEnv
//	file:///path, path     local directory, created if missing
func Open(target string) (FileStore, error) {
	switch {
	case strings.HasPrefix(target, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(target, "s3://"), "/")
		if bucket == "" {
			return nil, fmt.Errorf("storage: missing bucket in %q", target)
		}
		return NewS3(NewS3Client(S3ConfigFromEnv()), bucket, strings.Trim(prefix, "/")), nil
	case strings.HasPrefix(target, "file://"):
		return NewLocal(strings.TrimPrefix(target, "file://"))
	case strings.Contains(target, "://"):
		return nil, fmt.Errorf("storage: unsupported target %q", target)
	case target == "":
		return nil, errors.New("storage: empty target")
	default:
		return NewLocal(target)
	}
}
