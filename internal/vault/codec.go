package vault

import (
	"bytes"
	"time"

	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/wire"
)

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

// EncodeNode serializes n into the flat "node_buffer" shape Auth-channel
// vault messages (VaultNodeCreate/Save/Find, VaultNodeFetched) carry:
// a uint64 field bitmask, then every present field in a fixed order,
// skipping absent ones (grounded on
// original_source/src/vault/vault_node.rs's StreamWrite impl, which
// serializes its own field bitmask the same way; the bit assignment and
// field order here are this package's own rather than a copy of the
// original's, since every reader of this buffer is this same codec).
func EncodeNode(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)

	if err := w.WriteUint64(uint64(n.Fields)); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(n.Idx); err != nil {
		return nil, err
	}
	if err := w.WriteInt32(int32(n.NodeType)); err != nil {
		return nil, err
	}

	for i := 1; i <= 4; i++ {
		if v, ok := n.Int32At(i); ok {
			if err := w.WriteInt32(v); err != nil {
				return nil, err
			}
		}
	}
	for i := 1; i <= 4; i++ {
		if v, ok := n.Uint32At(i); ok {
			if err := w.WriteUint32(v); err != nil {
				return nil, err
			}
		}
	}
	for i := 1; i <= 4; i++ {
		if v, ok := n.UUIDAt(i); ok {
			if err := w.WriteUUID(v); err != nil {
				return nil, err
			}
		}
	}
	for i := 1; i <= 6; i++ {
		if v, ok := n.StringAt(i); ok {
			if err := w.WriteUTF16String(v); err != nil {
				return nil, err
			}
		}
	}
	for i := 1; i <= 2; i++ {
		if v, ok := n.IStringAt(i); ok {
			if err := w.WriteUTF16String(v); err != nil {
				return nil, err
			}
		}
	}
	for i := 1; i <= 2; i++ {
		if v, ok := n.TextAt(i); ok {
			if err := w.WriteUTF16String(v); err != nil {
				return nil, err
			}
		}
	}
	for i := 1; i <= 2; i++ {
		if v, ok := n.BlobAt(i); ok {
			if err := w.WriteUint32(uint32(len(v))); err != nil {
				return nil, err
			}
			if err := w.WriteFixedBuffer(v); err != nil {
				return nil, err
			}
		}
	}

	if n.Has(FieldCreateTime) {
		if err := w.WriteInt64(n.CreateTime.Unix()); err != nil {
			return nil, err
		}
	}
	if n.Has(FieldModifyTime) {
		if err := w.WriteInt64(n.ModifyTime.Unix()); err != nil {
			return nil, err
		}
	}
	if n.Has(FieldCreatorUUID) {
		if err := w.WriteUUID(n.CreatorUUID); err != nil {
			return nil, err
		}
	}
	if n.Has(FieldCreatorIdx) {
		if err := w.WriteUint32(n.CreatorIdx); err != nil {
			return nil, err
		}
	}
	if n.Has(FieldCreateAgeName) {
		if err := w.WriteUTF16String(n.CreateAgeName); err != nil {
			return nil, err
		}
	}
	if n.Has(FieldCreateAgeUUID) {
		if err := w.WriteUUID(n.CreateAgeUUID); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// DecodeNode is EncodeNode's inverse. A template Node decoded this way
// (e.g. from VaultNodeFind's search template) carries only the fields
// the client actually set, which is exactly what Store.FindNodes needs.
func DecodeNode(data []byte) (*Node, error) {
	r := wire.NewReader(bytes.NewReader(data))
	n := &Node{}

	fields, err := r.ReadUint64()
	if err != nil {
		return nil, moulerr.New(moulerr.Protocol, "vault.DecodeNode: fields", err)
	}
	n.Fields = Field(fields)

	idx, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	n.Idx = idx

	nodeType, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	n.NodeType = NodeType(nodeType)

	for i := 1; i <= 4; i++ {
		if n.Has(FieldInt32_1 << uint(i-1)) {
			v, err := r.ReadInt32()
			if err != nil {
				return nil, err
			}
			n.Int32[i-1] = v
		}
	}
	for i := 1; i <= 4; i++ {
		if n.Has(FieldUint32_1 << uint(i-1)) {
			v, err := r.ReadUint32()
			if err != nil {
				return nil, err
			}
			n.Uint32[i-1] = v
		}
	}
	for i := 1; i <= 4; i++ {
		if n.Has(FieldUUID_1 << uint(i-1)) {
			v, err := r.ReadUUID()
			if err != nil {
				return nil, err
			}
			n.UUID[i-1] = v
		}
	}
	for i := 1; i <= 6; i++ {
		if n.Has(FieldString64_1 << uint(i-1)) {
			v, err := r.ReadUTF16String()
			if err != nil {
				return nil, err
			}
			n.String[i-1] = v
		}
	}
	for i := 1; i <= 2; i++ {
		if n.Has(FieldIString64_1 << uint(i-1)) {
			v, err := r.ReadUTF16String()
			if err != nil {
				return nil, err
			}
			n.IString[i-1] = v
		}
	}
	for i := 1; i <= 2; i++ {
		if n.Has(FieldText_1 << uint(i-1)) {
			v, err := r.ReadUTF16String()
			if err != nil {
				return nil, err
			}
			n.Text[i-1] = v
		}
	}
	for i := 1; i <= 2; i++ {
		if n.Has(FieldBlob_1 << uint(i-1)) {
			blobLen, err := r.ReadUint32()
			if err != nil {
				return nil, err
			}
			v, err := r.ReadFixedBuffer(int(blobLen))
			if err != nil {
				return nil, err
			}
			n.Blob[i-1] = v
		}
	}

	if n.Has(FieldCreateTime) {
		v, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		n.CreateTime = unixTime(v)
	}
	if n.Has(FieldModifyTime) {
		v, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		n.ModifyTime = unixTime(v)
	}
	if n.Has(FieldCreatorUUID) {
		v, err := r.ReadUUID()
		if err != nil {
			return nil, err
		}
		n.CreatorUUID = v
	}
	if n.Has(FieldCreatorIdx) {
		v, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		n.CreatorIdx = v
	}
	if n.Has(FieldCreateAgeName) {
		v, err := r.ReadUTF16String()
		if err != nil {
			return nil, err
		}
		n.CreateAgeName = v
	}
	if n.Has(FieldCreateAgeUUID) {
		v, err := r.ReadUUID()
		if err != nil {
			return nil, err
		}
		n.CreateAgeUUID = v
	}

	return n, nil
}

// RefRecord is one flattened NodeRef as carried in a VaultNodeRefsFetched
// reply (spec.md §4.D "VaultFetchNodeRefs"). The Auth channel doesn't
// have a repeated-struct field kind, so a list of these is packed into
// one variable-length buffer by EncodeRefs/DecodeRefs.
type RefRecord struct {
	ParentIdx uint32
	ChildIdx  uint32
	OwnerIdx  uint32
	Seen      bool
}

const refRecordSize = 4 + 4 + 4 + 1

// EncodeRefs packs refs into a flat buffer of fixed-size records.
func EncodeRefs(refs []RefRecord) []byte {
	buf := make([]byte, 0, len(refs)*refRecordSize)
	var w bytes.Buffer
	ww := wire.NewWriter(&w)
	for _, r := range refs {
		_ = ww.WriteUint32(r.ParentIdx)
		_ = ww.WriteUint32(r.ChildIdx)
		_ = ww.WriteUint32(r.OwnerIdx)
		seen := uint8(0)
		if r.Seen {
			seen = 1
		}
		_ = ww.WriteUint8(seen)
	}
	buf = append(buf, w.Bytes()...)
	return buf
}

// DecodeRefs is EncodeRefs's inverse.
func DecodeRefs(data []byte) ([]RefRecord, error) {
	if len(data)%refRecordSize != 0 {
		return nil, moulerr.New(moulerr.Protocol, "vault.DecodeRefs: misaligned buffer", nil)
	}
	r := wire.NewReader(bytes.NewReader(data))
	out := make([]RefRecord, 0, len(data)/refRecordSize)
	for i := 0; i < len(data)/refRecordSize; i++ {
		parent, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		child, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		owner, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		seen, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		out = append(out, RefRecord{ParentIdx: parent, ChildIdx: child, OwnerIdx: owner, Seen: seen != 0})
	}
	return out, nil
}
