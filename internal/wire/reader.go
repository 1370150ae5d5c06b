// Package wire implements the little-endian buffered binary codec used
// by every channel's message tables (spec.md §4.B): typed primitives,
// the three distinct string encodings, UUIDs, and fixed-size buffers.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
	"github.com/zrax/moulars/internal/moulerr"
)

// Default length bounds (spec.md §4.B): 1 MiB per string, 16 MiB per
// blob, enforced by every decoder that reads a length-prefixed value.
const (
	DefaultMaxString = 1 << 20
	DefaultMaxBlob   = 16 << 20
)

// Reader decodes the little-endian wire primitives from an underlying
// io.Reader. It keeps no internal buffering beyond what io.Reader
// provides; callers that need buffered reads (e.g. a TCP connection)
// should wrap with bufio.Reader before constructing a Reader.
type Reader struct {
	r         io.Reader
	maxString int
	maxBlob   int
}

// NewReader wraps r with the default length limits.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, maxString: DefaultMaxString, maxBlob: DefaultMaxBlob}
}

// SetLimits overrides the default string/blob length bounds.
func (r *Reader) SetLimits(maxString, maxBlob int) {
	r.maxString = maxString
	r.maxBlob = maxBlob
}

func (r *Reader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, moulerr.New(moulerr.Protocol, "wire.readN", err)
	}
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadInt8 reads a signed 8-bit integer.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads a little-endian signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt64 reads a little-endian signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadUUID reads a 16-byte UUID in the wire's byte order (the uuid
// package's own binary format, matching the Plasma uoid wire layout
// close enough for field-level round-tripping; spec.md treats uoid
// contents as opaque except for routing headers handled elsewhere).
func (r *Reader) ReadUUID() (uuid.UUID, error) {
	b, err := r.readN(16)
	if err != nil {
		return uuid.Nil, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}

// ReadFixedBuffer reads exactly n raw bytes, n being fixed by the
// message field definition rather than a wire-carried length.
func (r *Reader) ReadFixedBuffer(n int) ([]byte, error) {
	if n < 0 || n > r.maxBlob {
		return nil, moulerr.New(moulerr.Protocol, "wire.ReadFixedBuffer", nil)
	}
	return r.readN(n)
}

// ReadVariableBuffer reads a buffer whose length was already decoded
// from a preceding field (the "variable-buffer with count-from-previous-field"
// shape spec.md §4.D describes).
func (r *Reader) ReadVariableBuffer(count int) ([]byte, error) {
	if count < 0 || count > r.maxBlob {
		return nil, moulerr.New(moulerr.Protocol, "wire.ReadVariableBuffer", nil)
	}
	return r.readN(count)
}
