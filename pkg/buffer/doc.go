// Package buffer provides a growable byte buffer for network I/O.
//
// A [Buffer] keeps its content between two cursors, which split the backing
// storage into a prependable, a readable and a writable region. Data read from
// a connection lands in the writable region; application code decodes
// big-endian integers, length-delimited records and text lines from the
// readable region; outgoing data is appended, or prepended into the reserved
// margin, before being flushed.
//
// Space management prefers sliding readable bytes back to the prepend margin
// over growing, and grows only by what a single request needs. Storage is
// never released implicitly; call [Buffer.Shrink] for that.
//
// Precondition failures (reading more than is readable, prepending more than
// fits, positions outside the readable region) are programming errors and
// panic with an error wrapping one of the package's Err sentinels. Stream
// failures and invalid UTF-8 are returned as errors and leave the buffer
// unchanged.
//
// Example usage:
//
//	buf := buffer.New()
//
//	// Serialize a payload, then prefix its length.
//	buf.AppendString("hello")
//	buf.PrependInt32(int32(buf.ReadableBytes()))
//
//	// Decode it again.
//	n := buf.ReadInt32()
//	s, err := buf.RetrieveAsString(int(n))
//
// A Buffer is owned by one goroutine at a time; it has no internal locking.
package buffer
