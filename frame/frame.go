// Package frame implements the framing and protocol glue of §4.9: a
// minimal header (has_schema_id, message_type, payload_length) optionally
// followed by a 16-byte schema-id UUID and the payload, with helpers to
// combine frames into a buffer and split a buffer back into frames.
package frame

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"io"

	bare "github.com/barewire/barewire"
	"github.com/google/uuid"
	log "github.com/ipfs/go-log/v2"
)

var logger = log.Logger("barewire/frame")

// MessageType distinguishes request, response, and notification frames.
type MessageType uint8

const (
	Request MessageType = iota
	Response
	Notification
)

func (m MessageType) String() string {
	switch m {
	case Request:
		return "request"
	case Response:
		return "response"
	case Notification:
		return "notification"
	default:
		return "unknown"
	}
}

const (
	flagHasSchemaID  = 1 << 0
	flagCompressed   = 1 << 1
	headerFixedBytes = 1 + 4 // flags+type byte, payload_length u32 LE
	schemaIDBytes    = 16
)

// Frame is one decoded protocol frame.
type Frame struct {
	Type        MessageType
	SchemaID    *uuid.UUID
	Payload     []byte
	Checksummed bool
}

// Codec combines and splits frames according to its configured options.
type Codec struct {
	cfg config
}

// New builds a Codec with the given options applied over the defaults.
func New(opts ...Option) *Codec {
	c := defaultConfig()
	for _, o := range opts {
		o(&c)
	}
	return &Codec{cfg: c}
}

// Encode serializes f into a single frame buffer.
func (c *Codec) Encode(f Frame) ([]byte, error) {
	payload := f.Payload
	compressed := false
	if c.cfg.CompressionThreshold > 0 && uint32(len(payload)) >= c.cfg.CompressionThreshold {
		compressedPayload, err := deflate(payload)
		if err != nil {
			return nil, bare.Wrap(bare.Encoding, err, "compress frame payload")
		}
		payload = compressedPayload
		compressed = true
	}

	if uint32(len(payload)) > c.cfg.MaxFrameSize {
		return nil, bare.NewError(bare.Encoding, "payload of %d bytes exceeds max frame size %d", len(payload), c.cfg.MaxFrameSize)
	}

	var flags byte
	if f.SchemaID != nil {
		flags |= flagHasSchemaID
	}
	if compressed {
		flags |= flagCompressed
	}

	header := make([]byte, headerFixedBytes)
	header[0] = flags | byte(f.Type)<<4
	binary.LittleEndian.PutUint32(header[1:5], uint32(len(payload)))

	buf := bytes.NewBuffer(nil)
	buf.Write(header)
	if f.SchemaID != nil {
		id := *f.SchemaID
		buf.Write(id[:])
	}
	buf.Write(payload)

	if c.cfg.Checksum {
		buf.WriteByte(xorChecksum(buf.Bytes()))
	}

	logger.Debugw("encoded frame", "type", f.Type, "payload_bytes", len(f.Payload), "compressed", compressed)
	return buf.Bytes(), nil
}

// needMoreBytes is returned by Decode/Split when buf does not yet hold a
// complete frame; the caller should retry once more data has arrived,
// matching §5's "frame decoding from a stream must be resumable" rule.
type needMoreBytes struct{}

func (needMoreBytes) Error() string { return "frame: need more bytes" }

// ErrNeedMoreBytes is returned as-is (not wrapped) when buf holds an
// incomplete frame.
var ErrNeedMoreBytes error = needMoreBytes{}

// Decode parses one frame from the front of buf, returning the frame, the
// number of bytes consumed, and an error. An incomplete trailing frame
// returns ErrNeedMoreBytes rather than a hard decode error.
func (c *Codec) Decode(buf []byte) (Frame, int, error) {
	if len(buf) < headerFixedBytes {
		return Frame{}, 0, ErrNeedMoreBytes
	}

	flags := buf[0] & 0x0F
	msgType := MessageType(buf[0] >> 4)
	payloadLen := binary.LittleEndian.Uint32(buf[1:5])
	if payloadLen > c.cfg.MaxFrameSize {
		return Frame{}, 0, bare.NewError(bare.Decoding, "frame declares payload of %d bytes, exceeds max frame size %d", payloadLen, c.cfg.MaxFrameSize)
	}

	pos := headerFixedBytes
	var schemaID *uuid.UUID
	if flags&flagHasSchemaID != 0 {
		if len(buf) < pos+schemaIDBytes {
			return Frame{}, 0, ErrNeedMoreBytes
		}
		id, err := uuid.FromBytes(buf[pos : pos+schemaIDBytes])
		if err != nil {
			return Frame{}, 0, bare.Wrap(bare.Decoding, err, "parse schema id")
		}
		schemaID = &id
		pos += schemaIDBytes
	}

	checksummed := false
	want := pos + int(payloadLen)
	if c.cfg.Checksum {
		want++
	}
	if len(buf) < want {
		return Frame{}, 0, ErrNeedMoreBytes
	}

	payload := buf[pos : pos+int(payloadLen)]
	pos += int(payloadLen)

	if c.cfg.Checksum {
		got := buf[pos]
		if got != xorChecksum(buf[:pos]) {
			return Frame{}, 0, bare.NewError(bare.Decoding, "frame checksum mismatch")
		}
		checksummed = true
		pos++
	}

	if flags&flagCompressed != 0 {
		decompressed, err := inflate(payload)
		if err != nil {
			return Frame{}, 0, bare.Wrap(bare.Decoding, err, "decompress frame payload")
		}
		payload = decompressed
	}

	logger.Debugw("decoded frame", "type", msgType, "payload_bytes", len(payload))
	return Frame{Type: msgType, SchemaID: schemaID, Payload: payload, Checksummed: checksummed}, pos, nil
}

// Combine concatenates the encoded form of every frame into one buffer.
func (c *Codec) Combine(frames []Frame) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	for _, f := range frames {
		b, err := c.Encode(f)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// Split decodes every complete frame from the front of buf, returning the
// decoded frames and the unconsumed tail. A partial trailing frame is left
// in the returned tail rather than reported as an error.
func (c *Codec) Split(buf []byte) ([]Frame, []byte, error) {
	var frames []Frame
	for len(buf) > 0 {
		f, n, err := c.Decode(buf)
		if err == ErrNeedMoreBytes {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		frames = append(frames, f)
		buf = buf[n:]
	}
	return frames, buf, nil
}

func xorChecksum(b []byte) byte {
	var x byte
	for _, c := range b {
		x ^= c
	}
	return x
}

func deflate(payload []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w, err := flate.NewWriter(buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(payload []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(payload))
	defer r.Close()
	return io.ReadAll(r)
}
