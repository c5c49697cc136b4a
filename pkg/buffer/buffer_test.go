package buffer

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

// checkInvariant verifies 0 <= readIndex <= writeIndex <= len(buf).
func checkInvariant(t *testing.T, b *Buffer) {
	t.Helper()
	if b.readIndex < 0 || b.readIndex > b.writeIndex || b.writeIndex > len(b.buf) {
		t.Fatalf("invariant broken: readIndex=%d writeIndex=%d len=%d", b.readIndex, b.writeIndex, len(b.buf))
	}
}

func checkRegions(t *testing.T, b *Buffer, readable, writable, prependable int) {
	t.Helper()
	if got := b.ReadableBytes(); got != readable {
		t.Errorf("ReadableBytes() = %d, want %d", got, readable)
	}
	if got := b.WritableBytes(); got != writable {
		t.Errorf("WritableBytes() = %d, want %d", got, writable)
	}
	if got := b.PrependableBytes(); got != prependable {
		t.Errorf("PrependableBytes() = %d, want %d", got, prependable)
	}
	checkInvariant(t, b)
}

func mustPanic(t *testing.T, want error, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want error wrapping %v", r, want)
		}
	}()
	f()
}

func TestBuffer_New(t *testing.T) {
	buf := New()
	checkRegions(t, buf, 0, DefaultInitialSize, DefaultPrepend)
	if buf.Prepend() != DefaultPrepend {
		t.Fatalf("Prepend() = %d, want %d", buf.Prepend(), DefaultPrepend)
	}
	if buf.InternalCapacity() != DefaultPrepend+DefaultInitialSize {
		t.Fatalf("InternalCapacity() = %d, want %d", buf.InternalCapacity(), DefaultPrepend+DefaultInitialSize)
	}

	custom := NewWithPrepend(16, 100)
	checkRegions(t, custom, 0, 100, 16)
	if custom.ReaderIndex() != 16 || custom.WriterIndex() != 16 {
		t.Fatalf("cursors = (%d, %d), want (16, 16)", custom.ReaderIndex(), custom.WriterIndex())
	}

	mustPanic(t, ErrInvalidRange, func() { NewWithPrepend(-1, 10) })
	mustPanic(t, ErrInvalidRange, func() { N(-1) })
}

func TestBuffer_AppendRetrieve(t *testing.T) {
	buf := New()
	str := strings.Repeat("x", 200)

	buf.AppendString(str)
	checkRegions(t, buf, 200, DefaultInitialSize-200, DefaultPrepend)

	str2, err := buf.RetrieveAsString(50)
	if err != nil {
		t.Fatalf("RetrieveAsString error: %v", err)
	}
	if len(str2) != 50 {
		t.Fatalf("len(RetrieveAsString(50)) = %d, want 50", len(str2))
	}
	checkRegions(t, buf, 150, DefaultInitialSize-200, DefaultPrepend+50)

	buf.AppendString(str)
	checkRegions(t, buf, 350, DefaultInitialSize-400, DefaultPrepend+50)

	str3, err := buf.RetrieveAllAsString()
	if err != nil {
		t.Fatalf("RetrieveAllAsString error: %v", err)
	}
	if str3 != strings.Repeat("x", 350) {
		t.Fatalf("RetrieveAllAsString() returned %d bytes, want 350 'x'", len(str3))
	}
	checkRegions(t, buf, 0, DefaultInitialSize, DefaultPrepend)
}

func TestBuffer_Grow(t *testing.T) {
	buf := New()
	buf.AppendString(strings.Repeat("y", 400))
	checkRegions(t, buf, 400, DefaultInitialSize-400, DefaultPrepend)

	buf.Retrieve(50)
	checkRegions(t, buf, 350, DefaultInitialSize-400, DefaultPrepend+50)

	// 624 writable + 58 prependable cannot hold 8 + 1000, so the buffer grows.
	buf.AppendString(strings.Repeat("z", 1000))
	checkRegions(t, buf, 1350, 0, DefaultPrepend+50)
	if buf.InternalCapacity() != DefaultPrepend+400+1000 {
		t.Fatalf("InternalCapacity() = %d, want %d", buf.InternalCapacity(), DefaultPrepend+400+1000)
	}
	want := strings.Repeat("y", 350) + strings.Repeat("z", 1000)
	if string(buf.Peek()) != want {
		t.Fatal("readable content changed across growth")
	}

	buf.RetrieveAll()
	checkRegions(t, buf, 0, 1400, DefaultPrepend)
}

func TestBuffer_InsideGrow(t *testing.T) {
	buf := New()
	buf.AppendString(strings.Repeat("y", 800))
	checkRegions(t, buf, 800, DefaultInitialSize-800, DefaultPrepend)

	buf.Retrieve(500)
	checkRegions(t, buf, 300, DefaultInitialSize-800, DefaultPrepend+500)

	capBefore := buf.InternalCapacity()
	buf.AppendString(strings.Repeat("z", 300))
	checkRegions(t, buf, 600, DefaultInitialSize-600, DefaultPrepend)
	if buf.InternalCapacity() != capBefore {
		t.Fatalf("compaction reallocated: capacity %d -> %d", capBefore, buf.InternalCapacity())
	}
	if got := string(buf.Peek()); got != strings.Repeat("y", 300)+strings.Repeat("z", 300) {
		t.Fatal("readable content changed across compaction")
	}
}

func TestBuffer_CompactionNeverGrows(t *testing.T) {
	for _, retrieve := range []int{1, 50, 300, 999} {
		buf := New()
		buf.Append(bytes.Repeat([]byte{'a'}, 1000))
		buf.Retrieve(retrieve)
		room := buf.WritableBytes() + buf.PrependableBytes() - buf.Prepend()
		lenBefore := buf.PrependableBytes() + buf.ReadableBytes() + buf.WritableBytes()
		capBefore := buf.InternalCapacity()

		buf.Append(bytes.Repeat([]byte{'b'}, room))

		lenAfter := buf.PrependableBytes() + buf.ReadableBytes() + buf.WritableBytes()
		if lenAfter != lenBefore || buf.InternalCapacity() != capBefore {
			t.Fatalf("retrieve %d: storage changed from len=%d cap=%d to len=%d cap=%d",
				retrieve, lenBefore, capBefore, lenAfter, buf.InternalCapacity())
		}
		if buf.PrependableBytes() != buf.Prepend() {
			t.Fatalf("retrieve %d: PrependableBytes() = %d after compaction", retrieve, buf.PrependableBytes())
		}
	}
}

func TestBuffer_NoCompactionBelowMargin(t *testing.T) {
	buf := NewWithPrepend(8, 16)
	buf.Append(make([]byte, 16))
	buf.PrependBytes([]byte{1, 2, 3, 4})

	// readIndex is below the margin; the buffer must grow rather than slide
	// the readable bytes forward over the margin.
	buf.Append([]byte{9})
	checkRegions(t, buf, 21, 0, 4)
	if got := buf.Peek()[:4]; !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("prepended bytes = %v", got)
	}
}

func TestBuffer_Shrink(t *testing.T) {
	buf := New()
	buf.AppendString(strings.Repeat("y", 2000))
	checkRegions(t, buf, 2000, 0, DefaultPrepend)

	buf.Retrieve(1500)
	checkRegions(t, buf, 500, 0, DefaultPrepend+1500)

	buf.Shrink(0)
	checkRegions(t, buf, 500, DefaultInitialSize-500, DefaultPrepend)
	if buf.InternalCapacity() != DefaultPrepend+DefaultInitialSize {
		t.Fatalf("InternalCapacity() = %d after shrink", buf.InternalCapacity())
	}
	s, err := buf.RetrieveAllAsString()
	if err != nil {
		t.Fatalf("RetrieveAllAsString error: %v", err)
	}
	if s != strings.Repeat("y", 500) {
		t.Fatal("content changed across shrink")
	}
	checkRegions(t, buf, 0, DefaultInitialSize, DefaultPrepend)
}

func TestBuffer_ShrinkWithReserve(t *testing.T) {
	buf := NewWithPrepend(4, 64)
	buf.Append(bytes.Repeat([]byte{'q'}, 5000))
	buf.Retrieve(1000)

	buf.Shrink(100)
	checkRegions(t, buf, 4000, 100, 4)
	if buf.InternalCapacity() != 4+4100 {
		t.Fatalf("InternalCapacity() = %d, want %d", buf.InternalCapacity(), 4+4100)
	}

	mustPanic(t, ErrInvalidRange, func() { buf.Shrink(-1) })
}

func TestBuffer_Prepend(t *testing.T) {
	buf := New()
	buf.AppendString(strings.Repeat("y", 200))
	checkRegions(t, buf, 200, DefaultInitialSize-200, DefaultPrepend)

	capBefore := buf.InternalCapacity()
	buf.PrependBytes([]byte{0, 0, 0, 0})
	checkRegions(t, buf, 204, DefaultInitialSize-200, DefaultPrepend-4)
	if buf.InternalCapacity() != capBefore {
		t.Fatal("prepend reallocated")
	}
	if buf.ReadInt32() != 0 {
		t.Fatal("prepended header is not zero")
	}

	mustPanic(t, ErrInsufficientPrependable, func() { buf.PrependBytes(make([]byte, buf.PrependableBytes()+1)) })
}

func TestBuffer_RetrieveAllIdempotent(t *testing.T) {
	buf := NewWithPrepend(12, 32)
	buf.RetrieveAll()
	checkRegions(t, buf, 0, 32, 12)

	buf.Append(make([]byte, 100))
	buf.Retrieve(30)
	buf.PrependUint16(7)
	buf.RetrieveAll()
	buf.RetrieveAll()
	if buf.ReadableBytes() != 0 || buf.PrependableBytes() != 12 {
		t.Fatalf("after RetrieveAll: readable=%d prependable=%d", buf.ReadableBytes(), buf.PrependableBytes())
	}
}

func TestBuffer_RetrieveExactlyAllResetsMargin(t *testing.T) {
	buf := New()
	buf.AppendString("abcdef")
	buf.Retrieve(2)
	if buf.PrependableBytes() != DefaultPrepend+2 {
		t.Fatalf("PrependableBytes() = %d", buf.PrependableBytes())
	}
	buf.Retrieve(4)
	checkRegions(t, buf, 0, DefaultInitialSize, DefaultPrepend)
}

func TestBuffer_RetrieveUntil(t *testing.T) {
	buf := New()
	buf.AppendString("key: value\r\nrest")

	pos, ok := buf.FindCRLF()
	if !ok {
		t.Fatal("FindCRLF found nothing")
	}
	line, err := buf.RetrieveAsString(pos - buf.ReaderIndex())
	if err != nil {
		t.Fatalf("RetrieveAsString error: %v", err)
	}
	if line != "key: value" {
		t.Fatalf("line = %q", line)
	}
	buf.RetrieveUntil(buf.ReaderIndex() + 2)
	if string(buf.Peek()) != "rest" {
		t.Fatalf("Peek() = %q, want %q", buf.Peek(), "rest")
	}

	mustPanic(t, ErrInvalidRange, func() { buf.RetrieveUntil(buf.ReaderIndex() - 1) })
	mustPanic(t, ErrInvalidRange, func() { buf.RetrieveUntil(buf.WriterIndex() + 1) })
}

func TestBuffer_RetrieveAsBytes(t *testing.T) {
	buf := New()
	buf.Append([]byte{1, 2, 3, 4})
	got := buf.RetrieveAsBytes(3)
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("RetrieveAsBytes(3) = %v", got)
	}
	// The copy must not alias storage that later appends overwrite.
	buf.RetrieveAll()
	buf.Append([]byte{9, 9, 9})
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("RetrieveAsBytes result changed to %v", got)
	}
}

func TestBuffer_RetrieveAsStringInvalidUTF8(t *testing.T) {
	buf := New()
	buf.AppendString("ok")
	buf.Append([]byte{0xff, 0xfe})

	_, err := buf.RetrieveAllAsString()
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	checkRegions(t, buf, 4, DefaultInitialSize-4, DefaultPrepend)

	s, err := buf.RetrieveAsString(2)
	if err != nil || s != "ok" {
		t.Fatalf("RetrieveAsString(2) = %q, %v", s, err)
	}
}

func TestBuffer_StringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "héllo, 世界", strings.Repeat("0123456789", 500)} {
		buf := New()
		buf.AppendString("prefix")
		buf.Retrieve(3)
		before := buf.ReadableBytes()

		buf.AppendString(s)
		buf.Retrieve(before)
		got, err := buf.RetrieveAsString(len(s))
		if err != nil {
			t.Fatalf("RetrieveAsString error: %v", err)
		}
		if got != s {
			t.Fatalf("round trip of %d bytes failed", len(s))
		}
	}
}

func TestBuffer_HasWrittenUnwrite(t *testing.T) {
	buf := N(16)
	n := copy(buf.BeginWrite(), "hello")
	buf.HasWritten(n)
	if string(buf.Peek()) != "hello" {
		t.Fatalf("Peek() = %q", buf.Peek())
	}

	buf.Unwrite(2)
	if string(buf.Peek()) != "hel" {
		t.Fatalf("Peek() after Unwrite = %q", buf.Peek())
	}

	mustPanic(t, ErrInsufficientWritable, func() { buf.HasWritten(buf.WritableBytes() + 1) })
	mustPanic(t, ErrInsufficientReadable, func() { buf.Unwrite(4) })
	mustPanic(t, ErrInvalidRange, func() { buf.HasWritten(-1) })
}

func TestBuffer_PeekIsBounded(t *testing.T) {
	buf := New()
	buf.AppendString("abc")
	view := buf.Peek()
	if cap(view) != 3 {
		t.Fatalf("cap(Peek()) = %d, want 3", cap(view))
	}
	// Appending to the view must not write into the buffer's storage.
	_ = append(view, 'd')
	if buf.WritableBytes() != DefaultInitialSize-3 || buf.buf[buf.writeIndex] == 'd' {
		t.Fatal("append to Peek() leaked into the writable region")
	}
}

func TestBuffer_Swap(t *testing.T) {
	a := NewWithPrepend(4, 10)
	b := New()
	a.AppendString("aaa")
	b.AppendString("bbbbb")

	a.Swap(b)
	if string(a.Peek()) != "bbbbb" || string(b.Peek()) != "aaa" {
		t.Fatalf("after Swap: a=%q b=%q", a.Peek(), b.Peek())
	}
	if a.Prepend() != DefaultPrepend || b.Prepend() != 4 {
		t.Fatalf("margins not swapped: a=%d b=%d", a.Prepend(), b.Prepend())
	}
}

func TestBuffer_ContractViolations(t *testing.T) {
	tests := []struct {
		name string
		want error
		f    func(b *Buffer)
	}{
		{"peek int8 on empty", ErrInsufficientReadable, func(b *Buffer) { b.PeekInt8() }},
		{"peek int64 on short", ErrInsufficientReadable, func(b *Buffer) { b.AppendInt32(1); b.PeekInt64() }},
		{"read int16 on short", ErrInsufficientReadable, func(b *Buffer) { b.AppendInt8(1); b.ReadInt16() }},
		{"retrieve too much", ErrInsufficientReadable, func(b *Buffer) { b.Retrieve(1) }},
		{"retrieve negative", ErrInvalidRange, func(b *Buffer) { b.Retrieve(-1) }},
		{"string too long", ErrInsufficientReadable, func(b *Buffer) { _, _ = b.RetrieveAsString(1) }},
		{"ensure negative", ErrInvalidRange, func(b *Buffer) { b.EnsureWritableBytes(-1) }},
		{"prepend int64 too far", ErrInsufficientPrependable, func(b *Buffer) { b.PrependInt64(1); b.PrependInt8(1) }},
		{"find before reader", ErrInvalidRange, func(b *Buffer) { b.FindEOLFrom(0) }},
		{"find after writer", ErrInvalidRange, func(b *Buffer) { b.FindCRLFFrom(b.WriterIndex() + 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := New()
			mustPanic(t, tt.want, func() { tt.f(buf) })
		})
	}
}

// TestBuffer_RandomOperations drives a buffer with a random mix of
// operations and compares its readable region against a plain slice model.
func TestBuffer_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	buf := NewWithPrepend(8, 64)
	var model []byte

	for i := 0; i < 5000; i++ {
		switch op := rng.IntN(7); op {
		case 0, 1:
			p := make([]byte, rng.IntN(300))
			for j := range p {
				p[j] = byte(rng.Uint32())
			}
			buf.Append(p)
			model = append(model, p...)
		case 2:
			n := 0
			if len(model) > 0 {
				n = rng.IntN(len(model) + 1)
			}
			buf.Retrieve(n)
			model = model[n:]
		case 3:
			n := rng.IntN(buf.PrependableBytes() + 1)
			p := make([]byte, n)
			for j := range p {
				p[j] = byte(rng.Uint32())
			}
			buf.PrependBytes(p)
			model = append(p, model...)
		case 4:
			if len(model) >= 4 {
				v := buf.ReadUint32()
				want := uint32(model[0])<<24 | uint32(model[1])<<16 | uint32(model[2])<<8 | uint32(model[3])
				if v != want {
					t.Fatalf("op %d: ReadUint32() = %#x, want %#x", i, v, want)
				}
				model = model[4:]
			}
		case 5:
			if rng.IntN(20) == 0 {
				buf.Shrink(rng.IntN(64))
			}
		case 6:
			n := rng.IntN(len(model) + 1)
			buf.Unwrite(n)
			model = model[:len(model)-n]
		}

		checkInvariant(t, buf)
		if !bytes.Equal(buf.Peek(), model) {
			t.Fatalf("op %d: readable region diverged from model (%d vs %d bytes)", i, buf.ReadableBytes(), len(model))
		}
	}
}
