package capture

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/haivivi/netbuf/pkg/buffer"
	"github.com/haivivi/netbuf/pkg/frame"
	"github.com/haivivi/netbuf/pkg/kv"
	"github.com/haivivi/netbuf/pkg/storage"
)

// Archive file names, relative to the session directory.
const (
	RecordsFile  = "records.frames"
	InboundFile  = "in.bin"
	OutboundFile = "out.bin"
)

// ErrArchiveExists is returned by Export when the session was already
// exported and overwrite was not requested.
var ErrArchiveExists = errors.New("capture: archive exists")

// recordCodec frames archived records. Records of a capture session stay
// well below 4 GiB.
var recordCodec = frame.MsgpackCodec{Length: frame.LengthCodec{Width: 4}}

// ExportResult summarizes an Export.
type ExportResult struct {
	Session  string   `json:"session" yaml:"session"`
	Records  int      `json:"records" yaml:"records"`
	Inbound  int      `json:"inbound_bytes" yaml:"inbound_bytes"`
	Outbound int      `json:"outbound_bytes" yaml:"outbound_bytes"`
	Files    []string `json:"files" yaml:"files"`
}

// Export writes session to files as three files under a directory named
// after the session: every record as a length-prefixed msgpack frame, and
// the inbound and outbound byte streams as replayed by Replay.
func Export(ctx context.Context, store kv.Store, session string, files storage.FileStore, overwrite bool) (*ExportResult, error) {
	records, err := List(ctx, store, session)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, session)
	}

	recordsName := path.Join(session, RecordsFile)
	if !overwrite {
		exists, err := files.Exists(ctx, recordsName)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrArchiveExists, recordsName)
		}
	}

	res := &ExportResult{Session: session, Records: len(records)}
	framed, in, out := buffer.New(), buffer.New(), buffer.New()
	for _, rec := range records {
		if err := recordCodec.AppendTo(framed, rec); err != nil {
			return nil, err
		}
		switch rec.Dir {
		case Inbound:
			in.Append(rec.Payload)
		case Outbound:
			out.Append(rec.Payload)
		}
	}
	res.Inbound, res.Outbound = in.ReadableBytes(), out.ReadableBytes()

	for _, f := range []struct {
		name string
		data *buffer.Buffer
	}{
		{path.Join(session, InboundFile), in},
		{path.Join(session, OutboundFile), out},
		// Written last: its presence marks a complete archive.
		{recordsName, framed},
	} {
		if err := writeFile(ctx, files, f.name, f.data); err != nil {
			// The failed file may exist half written.
			for _, name := range append(res.Files, f.name) {
				files.Delete(ctx, name)
			}
			return nil, err
		}
		res.Files = append(res.Files, f.name)
	}
	return res, nil
}

func writeFile(ctx context.Context, files storage.FileStore, name string, b *buffer.Buffer) error {
	w, err := files.Write(ctx, name)
	if err != nil {
		return err
	}
	if _, err := b.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("capture: write %s: %w", name, err)
	}
	return w.Close()
}

// Import loads an exported session back into store and returns the number
// of records written. Records keep their sequence numbers, so importing the
// same archive twice is idempotent.
func Import(ctx context.Context, files storage.FileStore, session string, store kv.Store) (int, error) {
	name := path.Join(session, RecordsFile)
	r, err := files.Read(ctx, name)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	b := buffer.New()
	if _, err := b.ReadFrom(r); err != nil {
		return 0, fmt.Errorf("capture: read %s: %w", name, err)
	}

	n := 0
	for b.ReadableBytes() > 0 {
		var rec Record
		if err := recordCodec.Decode(b, &rec); err != nil {
			if errors.Is(err, frame.ErrIncomplete) {
				return n, fmt.Errorf("capture: %s: truncated after %d records", name, n)
			}
			return n, fmt.Errorf("capture: %s: record %d: %w", name, n+1, err)
		}
		if rec.Session != session {
			return n, fmt.Errorf("capture: %s: record %d belongs to session %q", name, n+1, rec.Session)
		}
		data, err := msgpackRecord(rec)
		if err != nil {
			return n, err
		}
		if err := store.Set(ctx, recordKey(session, rec.Seq), data); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
