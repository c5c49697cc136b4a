package buffer

import (
	"bytes"
)

var crlf = []byte("\r\n")

// FindCRLF returns the absolute position of the first "\r\n" in the readable
// region, pointing at the '\r'. ok is false when there is none.
func (b *Buffer) FindCRLF() (pos int, ok bool) {
	return b.find(b.readIndex, crlf)
}

// FindCRLFFrom is like FindCRLF but starts scanning at the absolute position
// start, which must lie within [ReaderIndex(), WriterIndex()].
func (b *Buffer) FindCRLFFrom(start int) (pos int, ok bool) {
	b.checkPosition("find crlf", start)
	return b.find(start, crlf)
}

// FindEOL returns the absolute position of the first '\n' in the readable
// region.
func (b *Buffer) FindEOL() (pos int, ok bool) {
	return b.findByte(b.readIndex, '\n')
}

// FindEOLFrom is like FindEOL but starts scanning at the absolute position
// start.
func (b *Buffer) FindEOLFrom(start int) (pos int, ok bool) {
	b.checkPosition("find eol", start)
	return b.findByte(start, '\n')
}

func (b *Buffer) find(start int, sep []byte) (int, bool) {
	i := bytes.Index(b.buf[start:b.writeIndex], sep)
	if i < 0 {
		return -1, false
	}
	return start + i, true
}

func (b *Buffer) findByte(start int, c byte) (int, bool) {
	i := bytes.IndexByte(b.buf[start:b.writeIndex], c)
	if i < 0 {
		return -1, false
	}
	return start + i, true
}
