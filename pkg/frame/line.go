package frame

import (
	"github.com/haivivi/netbuf/pkg/buffer"
)

// LineCodec splits text lines.
type LineCodec struct {
	// CRLF requires "\r\n" terminators. Otherwise lines end at '\n' and a
	// '\r' in front of it is dropped.
	CRLF bool

	// MaxLength limits the line length, terminator excluded. Zero means no
	// limit.
	MaxLength int
}

// Next removes the first complete line from b and returns it without its
// terminator.
//
// It returns ErrIncomplete when no terminator has arrived yet, or a
// *TooLargeError when the line, or the pending unterminated data, exceeds
// MaxLength. A line that is not valid UTF-8 yields buffer.ErrInvalidUTF8 and
// is left in b.
func (c LineCodec) Next(b *buffer.Buffer) (string, error) {
	var (
		end  int
		ok   bool
		term int
	)
	if c.CRLF {
		end, ok = b.FindCRLF()
		term = 2
	} else {
		end, ok = b.FindEOL()
		term = 1
		if ok && end > b.ReaderIndex() && b.Peek()[end-1-b.ReaderIndex()] == '\r' {
			end--
			term = 2
		}
	}
	if !ok {
		// A trailing '\r' may be the first half of a terminator.
		pending := b.ReadableBytes()
		if pending > 0 && b.Peek()[pending-1] == '\r' {
			pending--
		}
		if c.MaxLength > 0 && pending > c.MaxLength {
			return "", &TooLargeError{Size: uint64(b.ReadableBytes()), Limit: c.MaxLength}
		}
		return "", ErrIncomplete
	}

	n := end - b.ReaderIndex()
	if c.MaxLength > 0 && n > c.MaxLength {
		return "", &TooLargeError{Size: uint64(n), Limit: c.MaxLength}
	}
	line, err := b.RetrieveAsString(n)
	if err != nil {
		return "", err
	}
	b.Retrieve(term)
	return line, nil
}

// Append writes line and its terminator to the end of b.
func (c LineCodec) Append(b *buffer.Buffer, line string) {
	b.AppendString(line)
	if c.CRLF {
		b.AppendString("\r\n")
		return
	}
	b.AppendUint8('\n')
}
