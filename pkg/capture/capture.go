// Package capture records the payloads exchanged on connections and replays
// them into buffers.
//
// Records are stored msgpack-encoded in a [kv.Store] under
//
//	capture:{session}:{seq}
//
// where seq is a zero-padded 20-digit sequence number, so listing a session
// returns its records in the order they were captured.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/netbuf/pkg/buffer"
	"github.com/haivivi/netbuf/pkg/kv"
)

const keyPrefix = "capture"

// Direction tells whether a payload was received or sent.
type Direction uint8

const (
	Inbound Direction = iota + 1
	Outbound
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "in"
	case Outbound:
		return "out"
	default:
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
}

// ParseDirection parses "in" or "out".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "in", "inbound":
		return Inbound, nil
	case "out", "outbound":
		return Outbound, nil
	default:
		return 0, fmt.Errorf("capture: unknown direction %q", s)
	}
}

// Record is one captured payload.
type Record struct {
	Session string    `msgpack:"session"`
	Seq     uint64    `msgpack:"seq"`
	Time    time.Time `msgpack:"time"`
	Dir     Direction `msgpack:"dir"`
	Payload []byte    `msgpack:"payload"`
}

func recordKey(session string, seq uint64) kv.Key {
	return kv.Key{keyPrefix, session, fmt.Sprintf("%020d", seq)}
}

func sessionPrefix(session string) kv.Key {
	return kv.Key{keyPrefix, session}
}

// Recorder appends records to a store. It is safe for concurrent use; each
// session gets its own sequence starting at 1.
type Recorder struct {
	store kv.Store

	mu   sync.Mutex
	seqs map[string]uint64
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store kv.Store) *Recorder {
	return &Recorder{
		store: store,
		seqs:  make(map[string]uint64),
	}
}

// Record stores a copy of payload as the next record of session.
func (r *Recorder) Record(ctx context.Context, session string, dir Direction, payload []byte) error {
	if session == "" || strings.Contains(session, string(kv.DefaultSeparator)) {
		return fmt.Errorf("capture: invalid session %q", session)
	}

	r.mu.Lock()
	seq, ok := r.seqs[session]
	if !ok {
		last, err := lastSeq(ctx, r.store, session)
		if err != nil {
			r.mu.Unlock()
			return err
		}
		seq = last
	}
	seq++
	r.seqs[session] = seq
	r.mu.Unlock()

	data, err := msgpackRecord(Record{
		Session: session,
		Seq:     seq,
		Time:    time.Now(),
		Dir:     dir,
		Payload: payload,
	})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, recordKey(session, seq), data)
}

func msgpackRecord(rec Record) ([]byte, error) {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("capture: encode record: %w", err)
	}
	return data, nil
}

// lastSeq returns the highest sequence number stored for session, or 0.
func lastSeq(ctx context.Context, store kv.Store, session string) (uint64, error) {
	var last uint64
	for e, err := range store.List(ctx, sessionPrefix(session)) {
		if err != nil {
			return 0, err
		}
		seq, err := strconv.ParseUint(e.Key[len(e.Key)-1], 10, 64)
		if err != nil {
			continue
		}
		last = max(last, seq)
	}
	return last, nil
}

// Sessions returns the captured session IDs in key order.
func Sessions(ctx context.Context, store kv.Store) ([]string, error) {
	var sessions []string
	for e, err := range store.List(ctx, kv.Key{keyPrefix}) {
		if err != nil {
			return nil, err
		}
		if len(e.Key) != 3 {
			continue
		}
		if n := len(sessions); n == 0 || sessions[n-1] != e.Key[1] {
			sessions = append(sessions, e.Key[1])
		}
	}
	return sessions, nil
}

// List returns the records of session in capture order.
func List(ctx context.Context, store kv.Store, session string) ([]Record, error) {
	var records []Record
	for e, err := range store.List(ctx, sessionPrefix(session)) {
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("capture: decode %s: %w", e.Key, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ErrNoSession is returned by Replay when a session has no records.
var ErrNoSession = errors.New("capture: no such session")

// Replay appends the payloads of session that travelled in direction dir to
// b, in capture order, and returns the number of records replayed.
func Replay(ctx context.Context, store kv.Store, session string, dir Direction, b *buffer.Buffer) (int, error) {
	records, err := List(ctx, store, session)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoSession, session)
	}
	n := 0
	for _, rec := range records {
		if rec.Dir != dir {
			continue
		}
		b.Append(rec.Payload)
		n++
	}
	return n, nil
}

// Delete removes every record of session.
func Delete(ctx context.Context, store kv.Store, session string) error {
	var keys []kv.Key
	for e, err := range store.List(ctx, sessionPrefix(session)) {
		if err != nil {
			return err
		}
		keys = append(keys, e.Key)
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSession, session)
	}
	return store.BatchDelete(ctx, keys)
}
