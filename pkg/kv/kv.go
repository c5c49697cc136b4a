// Package kv stores captured traffic under hierarchical keys.
//
// Keys are string slices such as {"capture", session, seq} and are encoded by
// joining the segments with a separator (default ':'). Ordering of List
// results follows the encoded bytes, so fixed-width numeric segments list in
// numeric order.
//
// [Badger] persists to disk; [Memory] keeps everything in a map and is used by
// tests.
package kv

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"strings"
)

var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")
)

// Key is a hierarchical path. Segments must not contain the separator.
type Key []string

// String joins the segments with ':' for display.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with path-based keys.
type Store interface {
	// Get returns ErrNotFound if the key is not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a value, replacing any existing one.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries strictly below prefix, in encoded key
	// order. An empty prefix lists everything.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchDelete removes several keys at once.
	BatchDelete(ctx context.Context, keys []Key) error

	Close() error
}

// DefaultSeparator joins key segments when Options.Separator is zero.
const DefaultSeparator byte = ':'

// Options configures key encoding.
type Options struct {
	Separator byte
}

func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

func (o *Options) encode(k Key) []byte {
	var b bytes.Buffer
	for i, seg := range k {
		if i > 0 {
			b.WriteByte(o.sep())
		}
		b.WriteString(seg)
	}
	return b.Bytes()
}

// prefix returns the encoded form of k followed by the separator, so that
// {"a", "b"} does not match "a:bc". An empty key yields nil.
func (o *Options) prefix(k Key) []byte {
	p := o.encode(k)
	if len(p) == 0 {
		return nil
	}
	return append(p, o.sep())
}

func (o *Options) decode(b []byte) Key {
	parts := bytes.Split(b, []byte{o.sep()})
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = string(p)
	}
	return k
}
