package buffer

// Bytes64KB creates a Buffer with 64KB of writable capacity. A fresh 64KB
// buffer is large enough for ReadChunk to read straight into its writable
// region instead of going through a scratch chunk.
func Bytes64KB() *Buffer {
	return N(ReadChunkSize)
}

// Bytes4KB creates a Buffer with 4KB of writable capacity.
func Bytes4KB() *Buffer {
	return N(1 << 12)
}

// Bytes1KB creates a Buffer with 1KB of writable capacity, the same as New.
func Bytes1KB() *Buffer {
	return N(1 << 10)
}
