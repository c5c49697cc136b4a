package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete is returned when the readable region does not hold a
	// complete message yet.
	ErrIncomplete = errors.New("frame: incomplete")

	// ErrHeaderOverflow is returned when a payload length does not fit the
	// configured header width.
	ErrHeaderOverflow = errors.New("frame: length does not fit header")

	// ErrNoHeadroom is returned by Seal when the buffer's prependable region
	// is smaller than the header.
	ErrNoHeadroom = errors.New("frame: no room to prepend header")

	// ErrInvalidWidth is returned for header widths other than 1, 2, 4 and 8.
	ErrInvalidWidth = errors.New("frame: invalid header width")
)

// TooLargeError reports a message that exceeds the codec's limit.
type TooLargeError struct {
	Size  uint64
	Limit int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("frame: message of %d bytes exceeds limit of %d", e.Size, e.Limit)
}
