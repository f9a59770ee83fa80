package wire

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	bare "github.com/barewire/barewire"
	"github.com/multiformats/go-varint"
)

// maxVarintBytes is the longest a BARE uint/int can ever encode to:
// §4.1's "Maximum 10 bytes to cover 64-bit values."
const maxVarintBytes = binary.MaxVarintLen64

// EncodeUint writes v as an unsigned LEB128 varint, delegating to
// multiformats/go-varint rather than hand-rolling LEB128.
func EncodeUint(w *Writer, v uint64) {
	_, _ = w.Write(varint.ToUvarint(v))
}

// DecodeUint reads an unsigned LEB128 varint and returns the value plus
// the number of bytes consumed. It decodes with encoding/binary rather than
// go-varint, whose reader stops at 63-bit values (9 bytes), so that every
// 64-bit value written by EncodeUint reads back.
func DecodeUint(r *Reader) (uint64, int, error) {
	before := r.pos
	v, err := binary.ReadUvarint(r)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, 0, bare.NewError(bare.Decoding, "truncated varint")
		}
		return 0, 0, bare.NewError(bare.Decoding, "overlong or invalid varint: %v", err)
	}
	return v, r.pos - before, nil
}

// EncodeInt zig-zag maps v then writes it as an unsigned varint (§4.1).
func EncodeInt(w *Writer, v int64) {
	z := (uint64(v) << 1) ^ uint64(v>>63)
	EncodeUint(w, z)
}

// DecodeInt reads a zig-zag-encoded signed varint.
func DecodeInt(r *Reader) (int64, int, error) {
	z, n, err := DecodeUint(r)
	if err != nil {
		return 0, 0, err
	}
	v := int64(z>>1) ^ -int64(z&1)
	return v, n, nil
}

func EncodeU8(w *Writer, v uint8) { _ = w.WriteByte(v) }

func DecodeU8(r *Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, bare.NewError(bare.Decoding, "truncated u8")
	}
	return b, nil
}

func EncodeI8(w *Writer, v int8) { EncodeU8(w, uint8(v)) }

func DecodeI8(r *Reader) (int8, error) {
	v, err := DecodeU8(r)
	return int8(v), err
}

func EncodeU16(w *Writer, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, _ = w.Write(buf[:])
}

func DecodeU16(r *Reader) (uint16, error) {
	b, err := r.ReadN(2)
	if err != nil {
		return 0, bare.NewError(bare.Decoding, "truncated u16")
	}
	return binary.LittleEndian.Uint16(b), nil
}

func EncodeI16(w *Writer, v int16) { EncodeU16(w, uint16(v)) }

func DecodeI16(r *Reader) (int16, error) {
	v, err := DecodeU16(r)
	return int16(v), err
}

func EncodeU32(w *Writer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = w.Write(buf[:])
}

func DecodeU32(r *Reader) (uint32, error) {
	b, err := r.ReadN(4)
	if err != nil {
		return 0, bare.NewError(bare.Decoding, "truncated u32")
	}
	return binary.LittleEndian.Uint32(b), nil
}

func EncodeI32(w *Writer, v int32) { EncodeU32(w, uint32(v)) }

func DecodeI32(r *Reader) (int32, error) {
	v, err := DecodeU32(r)
	return int32(v), err
}

func EncodeU64(w *Writer, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = w.Write(buf[:])
}

func DecodeU64(r *Reader) (uint64, error) {
	b, err := r.ReadN(8)
	if err != nil {
		return 0, bare.NewError(bare.Decoding, "truncated u64")
	}
	return binary.LittleEndian.Uint64(b), nil
}

func EncodeI64(w *Writer, v int64) { EncodeU64(w, uint64(v)) }

func DecodeI64(r *Reader) (int64, error) {
	v, err := DecodeU64(r)
	return int64(v), err
}

// EncodeF32 writes v's IEEE-754 bits little-endian, preserving NaN
// bit-patterns verbatim (§4.1: "no canonicalization").
func EncodeF32(w *Writer, v float32) { EncodeU32(w, math.Float32bits(v)) }

func DecodeF32(r *Reader) (float32, error) {
	bits, err := DecodeU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func EncodeF64(w *Writer, v float64) { EncodeU64(w, math.Float64bits(v)) }

func DecodeF64(r *Reader) (float64, error) {
	bits, err := DecodeU64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func EncodeBool(w *Writer, v bool) {
	if v {
		_ = w.WriteByte(0x01)
	} else {
		_ = w.WriteByte(0x00)
	}
}

func DecodeBool(r *Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, bare.NewError(bare.Decoding, "truncated bool")
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, bare.NewError(bare.Decoding, "bool value %#x is neither 0x00 nor 0x01", b)
	}
}

// EncodeString writes the LEB128 byte length followed by the UTF-8 bytes.
func EncodeString(w *Writer, s string) {
	EncodeUint(w, uint64(len(s)))
	_, _ = w.Write([]byte(s))
}

// DecodeString reads a length-prefixed string and validates it is UTF-8.
func DecodeString(r *Reader) (string, error) {
	n, _, err := DecodeUint(r)
	if err != nil {
		return "", err
	}
	b, err := r.ReadN(int(n))
	if err != nil {
		return "", bare.NewError(bare.Decoding, "truncated string payload")
	}
	if !utf8.Valid(b) {
		return "", bare.NewError(bare.Decoding, "invalid UTF-8 in string")
	}
	return string(b), nil
}

// EncodeData writes the LEB128 byte length followed by the raw bytes.
func EncodeData(w *Writer, b []byte) {
	EncodeUint(w, uint64(len(b)))
	_, _ = w.Write(b)
}

func DecodeData(r *Reader) ([]byte, error) {
	n, _, err := DecodeUint(r)
	if err != nil {
		return nil, err
	}
	b, err := r.ReadN(int(n))
	if err != nil {
		return nil, bare.NewError(bare.Decoding, "truncated data payload")
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// EncodeFixedData writes exactly n raw bytes, no length prefix. It returns
// an Encoding error if len(b) != n.
func EncodeFixedData(w *Writer, b []byte, n int) error {
	if len(b) != n {
		return bare.NewError(bare.Encoding, "fixed_data length mismatch: want %d, have %d", n, len(b))
	}
	_, _ = w.Write(b)
	return nil
}

func DecodeFixedData(r *Reader, n int) ([]byte, error) {
	b, err := r.ReadN(n)
	if err != nil {
		return nil, bare.NewError(bare.Decoding, "truncated fixed_data(%d)", n)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// EncodeVoid writes zero bytes.
func EncodeVoid(*Writer) {}

// DecodeVoid consumes zero bytes and always succeeds.
func DecodeVoid(*Reader) error { return nil }

// EncodeEnum writes the numeric value as a varint; the codec layer does
// not validate it against declared entries (§4.1: "enums are open on the
// wire").
func EncodeEnum(w *Writer, v uint64) { EncodeUint(w, v) }

func DecodeEnum(r *Reader) (uint64, error) {
	v, _, err := DecodeUint(r)
	return v, err
}
