package buffer

import (
	"errors"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ReadChunkSize is the most ReadChunk reads from its source in one call.
const ReadChunkSize = 64 * 1024

var (
	_ io.Reader       = (*Buffer)(nil)
	_ io.Writer       = (*Buffer)(nil)
	_ io.StringWriter = (*Buffer)(nil)
	_ io.ByteWriter   = (*Buffer)(nil)
	_ io.ReaderFrom   = (*Buffer)(nil)
	_ io.WriterTo     = (*Buffer)(nil)
)

// scratch holds the chunks ReadChunk reads into when the writable region is
// smaller than ReadChunkSize.
var scratch bytebufferpool.Pool

// ReadChunk performs a single Read of at most ReadChunkSize bytes from r and
// appends whatever was read.
//
// It returns the number of bytes appended. io.EOF is returned unwrapped; other
// errors from r are wrapped. A Read that returns no data together with an
// error leaves the buffer unchanged. Bytes returned together with an error
// are kept, as the io.Reader contract requires, so a non-EOF error does not
// mean nothing was appended: the returned count says how much was.
func (b *Buffer) ReadChunk(r io.Reader) (int, error) {
	if b.WritableBytes() >= ReadChunkSize {
		n, err := r.Read(b.buf[b.writeIndex : b.writeIndex+ReadChunkSize])
		if n < 0 || n > ReadChunkSize {
			return 0, errorf(ErrInvalidCount, "read returned %d", n)
		}
		b.HasWritten(n)
		return n, readErr(err)
	}

	chunk := scratch.Get()
	defer scratch.Put(chunk)
	if cap(chunk.B) < ReadChunkSize {
		chunk.B = make([]byte, ReadChunkSize)
	}
	p := chunk.B[:ReadChunkSize]

	n, err := r.Read(p)
	if n < 0 || n > len(p) {
		return 0, errorf(ErrInvalidCount, "read returned %d", n)
	}
	b.Append(p[:n])
	return n, readErr(err)
}

func readErr(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	return fmt.Errorf("buffer: read chunk: %w", err)
}

// ReadFrom implements io.ReaderFrom. It calls ReadChunk until r reports
// io.EOF, which is not returned as an error.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		n, err := b.ReadChunk(r)
		total += int64(n)
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// WriteTo implements io.WriterTo. It writes the readable region to w and
// consumes the bytes w accepted.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	readable := b.ReadableBytes()
	if readable == 0 {
		return 0, nil
	}
	n, err := w.Write(b.Peek())
	if n < 0 || n > readable {
		return 0, errorf(ErrInvalidCount, "write returned %d", n)
	}
	b.Retrieve(n)
	if err != nil {
		return int64(n), err
	}
	if n != readable {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// Write implements io.Writer. It appends p and never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (b *Buffer) WriteString(s string) (int, error) {
	b.AppendString(s)
	return len(s), nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	b.AppendUint8(c)
	return nil
}

// Read implements io.Reader. It consumes up to len(p) readable bytes and
// returns io.EOF when the buffer is empty.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.ReadableBytes() == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.Peek())
	b.Retrieve(n)
	return n, nil
}
