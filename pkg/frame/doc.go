// Package frame splits the readable region of a [buffer.Buffer] into
// messages and writes messages into outgoing buffers.
//
// Three codecs are provided:
//
//   - [LengthCodec]: big-endian unsigned length header followed by the payload
//   - [LineCodec]: text lines terminated by CRLF or LF
//   - [MsgpackCodec]: msgpack values carried in length-prefixed frames
//
// Decoders never consume a partial message. When the readable region does not
// yet hold a complete message they return [ErrIncomplete] and leave the buffer
// untouched, so the caller can read more data and try again:
//
//	for {
//	    if _, err := in.ReadChunk(conn); err != nil {
//	        return err
//	    }
//	    for {
//	        payload, err := codec.Next(in)
//	        if errors.Is(err, frame.ErrIncomplete) {
//	            break
//	        }
//	        if err != nil {
//	            return err
//	        }
//	        handle(payload)
//	    }
//	}
package frame
