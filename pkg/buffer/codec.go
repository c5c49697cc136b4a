package buffer

import (
	"encoding/binary"
)

// Integers are encoded big-endian (network byte order). Signed values use
// their two's complement bit pattern.

// AppendUint8 appends x.
func (b *Buffer) AppendUint8(x uint8) {
	b.Append([]byte{x})
}

// AppendUint16 appends x as 2 big-endian bytes.
func (b *Buffer) AppendUint16(x uint16) {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], x)
	b.Append(p[:])
}

// AppendUint32 appends x as 4 big-endian bytes.
func (b *Buffer) AppendUint32(x uint32) {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], x)
	b.Append(p[:])
}

// AppendUint64 appends x as 8 big-endian bytes.
func (b *Buffer) AppendUint64(x uint64) {
	var p [8]byte
	binary.BigEndian.PutUint64(p[:], x)
	b.Append(p[:])
}

func (b *Buffer) AppendInt8(x int8)   { b.AppendUint8(uint8(x)) }
func (b *Buffer) AppendInt16(x int16) { b.AppendUint16(uint16(x)) }
func (b *Buffer) AppendInt32(x int32) { b.AppendUint32(uint32(x)) }
func (b *Buffer) AppendInt64(x int64) { b.AppendUint64(uint64(x)) }

// PeekUint8 returns the first readable byte without consuming it.
// It panics if the buffer is empty.
func (b *Buffer) PeekUint8() uint8 {
	b.checkReadable("peek 8-bit integer", 1)
	return b.buf[b.readIndex]
}

// PeekUint16 decodes the first 2 readable bytes without consuming them.
func (b *Buffer) PeekUint16() uint16 {
	b.checkReadable("peek 16-bit integer", 2)
	return binary.BigEndian.Uint16(b.buf[b.readIndex:])
}

// PeekUint32 decodes the first 4 readable bytes without consuming them.
func (b *Buffer) PeekUint32() uint32 {
	b.checkReadable("peek 32-bit integer", 4)
	return binary.BigEndian.Uint32(b.buf[b.readIndex:])
}

// PeekUint64 decodes the first 8 readable bytes without consuming them.
func (b *Buffer) PeekUint64() uint64 {
	b.checkReadable("peek 64-bit integer", 8)
	return binary.BigEndian.Uint64(b.buf[b.readIndex:])
}

func (b *Buffer) PeekInt8() int8   { return int8(b.PeekUint8()) }
func (b *Buffer) PeekInt16() int16 { return int16(b.PeekUint16()) }
func (b *Buffer) PeekInt32() int32 { return int32(b.PeekUint32()) }
func (b *Buffer) PeekInt64() int64 { return int64(b.PeekUint64()) }

// ReadUint8 consumes and returns the first readable byte.
func (b *Buffer) ReadUint8() uint8 {
	x := b.PeekUint8()
	b.Retrieve(1)
	return x
}

// ReadUint16 consumes and decodes 2 bytes.
func (b *Buffer) ReadUint16() uint16 {
	x := b.PeekUint16()
	b.Retrieve(2)
	return x
}

// ReadUint32 consumes and decodes 4 bytes.
func (b *Buffer) ReadUint32() uint32 {
	x := b.PeekUint32()
	b.Retrieve(4)
	return x
}

// ReadUint64 consumes and decodes 8 bytes.
func (b *Buffer) ReadUint64() uint64 {
	x := b.PeekUint64()
	b.Retrieve(8)
	return x
}

func (b *Buffer) ReadInt8() int8   { return int8(b.ReadUint8()) }
func (b *Buffer) ReadInt16() int16 { return int16(b.ReadUint16()) }
func (b *Buffer) ReadInt32() int32 { return int32(b.ReadUint32()) }
func (b *Buffer) ReadInt64() int64 { return int64(b.ReadUint64()) }

// PrependBytes writes p directly in front of the readable region. It panics
// if p is longer than PrependableBytes.
func (b *Buffer) PrependBytes(p []byte) {
	if len(p) > b.PrependableBytes() {
		violate(ErrInsufficientPrependable, "prepend %d bytes, %d prependable", len(p), b.PrependableBytes())
	}
	b.readIndex -= len(p)
	copy(b.buf[b.readIndex:], p)
}

// PrependUint8 writes x in front of the readable region.
func (b *Buffer) PrependUint8(x uint8) {
	b.PrependBytes([]byte{x})
}

// PrependUint16 writes x as 2 big-endian bytes in front of the readable
// region.
func (b *Buffer) PrependUint16(x uint16) {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], x)
	b.PrependBytes(p[:])
}

// PrependUint32 writes x as 4 big-endian bytes in front of the readable
// region.
func (b *Buffer) PrependUint32(x uint32) {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], x)
	b.PrependBytes(p[:])
}

// PrependUint64 writes x as 8 big-endian bytes in front of the readable
// region.
func (b *Buffer) PrependUint64(x uint64) {
	var p [8]byte
	binary.BigEndian.PutUint64(p[:], x)
	b.PrependBytes(p[:])
}

func (b *Buffer) PrependInt8(x int8)   { b.PrependUint8(uint8(x)) }
func (b *Buffer) PrependInt16(x int16) { b.PrependUint16(uint16(x)) }
func (b *Buffer) PrependInt32(x int32) { b.PrependUint32(uint32(x)) }
func (b *Buffer) PrependInt64(x int64) { b.PrependUint64(uint64(x)) }
