package wire

import (
	"unicode/utf16"

	"github.com/zrax/moulars/internal/moulerr"
)

// safeStringMask carves the 15-bit length out of a safe-string length
// field; the high bit (safeStringFlag) marks the "new" wire format.
const (
	safeStringFlag = 0x8000
	safeStringMask = 0x7FFF
	safeStringMax  = 0x7FFF
)

// ReadSafeString decodes a "safe string" field (spec.md §4.B): a 16-bit
// length with the high bit set, followed by that many bytes XOR-masked
// with 0xFF.
func (r *Reader) ReadSafeString() (string, error) {
	lenField, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	if lenField&safeStringFlag == 0 {
		return "", moulerr.New(moulerr.Protocol, "wire.ReadSafeString", nil)
	}
	n := int(lenField & safeStringMask)
	if n > r.maxString {
		return "", moulerr.New(moulerr.Protocol, "wire.ReadSafeString: over limit", nil)
	}
	buf, err := r.readN(n)
	if err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] ^= 0xFF
	}
	return string(buf), nil
}

// WriteSafeString encodes a "safe string" field. It returns a Protocol
// error if the string is too long to represent in the 15-bit length.
func (w *Writer) WriteSafeString(s string) error {
	b := []byte(s)
	if len(b) > safeStringMax {
		return moulerr.New(moulerr.Protocol, "wire.WriteSafeString: too long", nil)
	}
	if err := w.WriteUint16(uint16(len(b)) | safeStringFlag); err != nil {
		return err
	}
	masked := make([]byte, len(b))
	for i, c := range b {
		masked[i] = c ^ 0xFF
	}
	return w.write(masked)
}

// ReadUTF16String decodes a "UTF-16 string" field (spec.md §4.B): a
// 16-bit length in code units, followed by 2*N bytes, optionally
// terminated by a zero code unit that is included in the length.
func (r *Reader) ReadUTF16String() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	if int(n)*2 > r.maxString {
		return "", moulerr.New(moulerr.Protocol, "wire.ReadUTF16String: over limit", nil)
	}
	units := make([]uint16, n)
	for i := range units {
		u, err := r.ReadUint16()
		if err != nil {
			return "", err
		}
		units[i] = u
	}
	if len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units)), nil
}

// WriteUTF16String encodes a "UTF-16 string" field, always appending the
// optional trailing zero code unit for compatibility with clients that
// expect a null terminator.
func (w *Writer) WriteUTF16String(s string) error {
	units := utf16.Encode([]rune(s))
	total := len(units) + 1
	if total > 0xFFFF {
		return moulerr.New(moulerr.Protocol, "wire.WriteUTF16String: too long", nil)
	}
	if err := w.WriteUint16(uint16(total)); err != nil {
		return err
	}
	for _, u := range units {
		if err := w.WriteUint16(u); err != nil {
			return err
		}
	}
	return w.WriteUint16(0)
}
