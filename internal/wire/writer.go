package wire

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
)

// Writer encodes the little-endian wire primitives to an underlying
// io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.write([]byte{v})
}

// WriteInt8 writes a signed 8-bit integer.
func (w *Writer) WriteInt8(v int8) error {
	return w.WriteUint8(uint8(v))
}

// WriteUint16 writes a little-endian unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return w.write(b)
}

// WriteInt16 writes a little-endian signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

// WriteUint32 writes a little-endian unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return w.write(b)
}

// WriteInt32 writes a little-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint64 writes a little-endian unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return w.write(b)
}

// WriteInt64 writes a little-endian signed 64-bit integer.
func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUint64(uint64(v))
}

// WriteUUID writes a 16-byte UUID.
func (w *Writer) WriteUUID(u uuid.UUID) error {
	return w.write(u[:])
}

// WriteFixedBuffer writes raw bytes with no length prefix.
func (w *Writer) WriteFixedBuffer(b []byte) error {
	return w.write(b)
}
