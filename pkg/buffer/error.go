package buffer

import (
	"errors"
	"fmt"
)

// Contract violations. Methods that detect one panic with an error wrapping
// the matching sentinel, so a caller that recovers can classify it with
// errors.Is.
var (
	// ErrInsufficientReadable means a peek, read or retrieve asked for more
	// bytes than the readable region holds.
	ErrInsufficientReadable = errors.New("buffer: insufficient readable bytes")

	// ErrInsufficientWritable means HasWritten was called with more bytes
	// than the writable region holds.
	ErrInsufficientWritable = errors.New("buffer: insufficient writable bytes")

	// ErrInsufficientPrependable means a prepend did not fit in front of the
	// readable region.
	ErrInsufficientPrependable = errors.New("buffer: insufficient prependable bytes")

	// ErrInvalidRange means a position or count was negative or fell outside
	// the readable region.
	ErrInvalidRange = errors.New("buffer: invalid range")
)

// Recoverable errors.
var (
	// ErrInvalidUTF8 is returned when bytes retrieved as a string are not
	// valid UTF-8. The buffer is left unchanged.
	ErrInvalidUTF8 = errors.New("buffer: invalid utf-8")

	// ErrInvalidCount is returned when an io.Reader or io.Writer reports a
	// byte count outside the slice it was given.
	ErrInvalidCount = errors.New("buffer: invalid count from collaborator")
)

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// violate panics with an error wrapping sentinel.
func violate(sentinel error, format string, args ...any) {
	panic(errorf(sentinel, format, args...))
}
