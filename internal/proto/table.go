// Package proto implements the declarative, table-driven message
// schemas and dispatch shared by all four channels (spec.md §4.D): a
// message table maps a numeric id to an ordered list of typed fields;
// decoding and encoding are both table-driven so the parser stays
// auditable from one place instead of one function per message.
package proto

import (
	"github.com/google/uuid"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/wire"
)

// FieldKind enumerates the primitive/string/buffer shapes a message
// field can take on the wire (spec.md §4.B/§4.D).
type FieldKind int

const (
	FieldUint8 FieldKind = iota
	FieldInt8
	FieldUint16
	FieldInt16
	FieldUint32
	FieldInt32
	FieldUint64
	FieldInt64
	FieldUUID
	FieldSafeString
	FieldUTF16String
	FieldFixedBuffer
	FieldVariableBuffer
)

// Field describes one ordered field of a message.
type Field struct {
	Name string
	Kind FieldKind
	// Size is the buffer length for FieldFixedBuffer.
	Size int
	// CountFrom names an earlier integer field whose decoded value is
	// the byte count for a FieldVariableBuffer field (spec.md §4.D
	// "variable-buffer with count-from-previous-field").
	CountFrom string
}

// MessageSpec is one row of a channel's message table.
type MessageSpec struct {
	ID     uint16
	Name   string
	Fields []Field
}

// Table maps message id to its spec, one per channel.
type Table map[uint16]*MessageSpec

// Message is a decoded instance of a MessageSpec: the ordered field
// values keyed by field name, plus the id/name for convenience.
type Message struct {
	ID     uint16
	Name   string
	Spec   *MessageSpec
	Values map[string]any
}

// Uint32 fetches an integer-valued field, panicking-free by returning 0
// if absent or of the wrong type (handlers only call this for fields
// their own message's spec declares, so absence indicates a programming
// error rather than a wire condition).
func (m *Message) Uint32(name string) uint32 {
	v, _ := m.Values[name].(uint32)
	return v
}

func (m *Message) Uint16(name string) uint16 {
	v, _ := m.Values[name].(uint16)
	return v
}

func (m *Message) Int32(name string) int32 {
	v, _ := m.Values[name].(int32)
	return v
}

func (m *Message) Uint8(name string) uint8 {
	v, _ := m.Values[name].(uint8)
	return v
}

func (m *Message) String(name string) string {
	v, _ := m.Values[name].(string)
	return v
}

func (m *Message) Bytes(name string) []byte {
	v, _ := m.Values[name].([]byte)
	return v
}

func (m *Message) UUID(name string) uuid.UUID {
	v, _ := m.Values[name].(uuid.UUID)
	return v
}

// Decode reads one wire-framed message (2-byte id + table-shaped body)
// from r using table. An id absent from table is a Protocol error
// (spec.md §4.D "Absence from the table = Protocol error").
func Decode(r *wire.Reader, table Table) (*Message, error) {
	id, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	spec, ok := table[id]
	if !ok {
		return nil, moulerr.New(moulerr.Protocol, "proto.Decode: unknown message id", nil)
	}

	msg := &Message{ID: id, Name: spec.Name, Spec: spec, Values: make(map[string]any, len(spec.Fields))}
	for _, f := range spec.Fields {
		v, err := decodeField(r, f, msg)
		if err != nil {
			return nil, err
		}
		msg.Values[f.Name] = v
	}
	return msg, nil
}

func decodeField(r *wire.Reader, f Field, msg *Message) (any, error) {
	switch f.Kind {
	case FieldUint8:
		return r.ReadUint8()
	case FieldInt8:
		return r.ReadInt8()
	case FieldUint16:
		return r.ReadUint16()
	case FieldInt16:
		return r.ReadInt16()
	case FieldUint32:
		return r.ReadUint32()
	case FieldInt32:
		return r.ReadInt32()
	case FieldUint64:
		return r.ReadUint64()
	case FieldInt64:
		return r.ReadInt64()
	case FieldUUID:
		return r.ReadUUID()
	case FieldSafeString:
		return r.ReadSafeString()
	case FieldUTF16String:
		return r.ReadUTF16String()
	case FieldFixedBuffer:
		return r.ReadFixedBuffer(f.Size)
	case FieldVariableBuffer:
		count, err := countFromField(msg, f.CountFrom)
		if err != nil {
			return nil, err
		}
		return r.ReadVariableBuffer(count)
	default:
		return nil, moulerr.New(moulerr.Protocol, "proto.decodeField: unknown field kind", nil)
	}
}

func countFromField(msg *Message, name string) (int, error) {
	v, ok := msg.Values[name]
	if !ok {
		return 0, moulerr.New(moulerr.Protocol, "proto.decodeField: missing count field "+name, nil)
	}
	switch n := v.(type) {
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case int32:
		return int(n), nil
	default:
		return 0, moulerr.New(moulerr.Protocol, "proto.decodeField: count field "+name+" not an integer", nil)
	}
}

// Encode writes a reply message (2-byte id + table-shaped body) to w
// using table. values must supply every field spec.Fields names.
func Encode(w *wire.Writer, table Table, id uint16, values map[string]any) error {
	spec, ok := table[id]
	if !ok {
		return moulerr.New(moulerr.Protocol, "proto.Encode: unknown message id", nil)
	}
	if err := w.WriteUint16(id); err != nil {
		return err
	}
	for _, f := range spec.Fields {
		if err := encodeField(w, f, values[f.Name]); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(w *wire.Writer, f Field, v any) error {
	switch f.Kind {
	case FieldUint8:
		return w.WriteUint8(v.(uint8))
	case FieldInt8:
		return w.WriteInt8(v.(int8))
	case FieldUint16:
		return w.WriteUint16(v.(uint16))
	case FieldInt16:
		return w.WriteInt16(v.(int16))
	case FieldUint32:
		return w.WriteUint32(v.(uint32))
	case FieldInt32:
		return w.WriteInt32(v.(int32))
	case FieldUint64:
		return w.WriteUint64(v.(uint64))
	case FieldInt64:
		return w.WriteInt64(v.(int64))
	case FieldUUID:
		return w.WriteUUID(v.(uuid.UUID))
	case FieldSafeString:
		return w.WriteSafeString(v.(string))
	case FieldUTF16String:
		return w.WriteUTF16String(v.(string))
	case FieldFixedBuffer:
		return w.WriteFixedBuffer(v.([]byte))
	case FieldVariableBuffer:
		return w.WriteFixedBuffer(v.([]byte))
	default:
		return moulerr.New(moulerr.Protocol, "proto.encodeField: unknown field kind", nil)
	}
}
