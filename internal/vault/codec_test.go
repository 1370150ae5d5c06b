package vault

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEncodeDecodeNodeRoundTrip(t *testing.T) {
	n := &Node{
		Idx:      42,
		NodeType: NodeTypePlayerInfo,
	}
	n.SetUint32(1, 1001)
	n.SetIString(1, "Some Explorer")
	n.SetUUID(1, uuid.New())
	n.SetText(1, "a long note with no cap")
	n.SetBlob(1, []byte{1, 2, 3, 4, 5})
	n.CreatorUUID = uuid.New()
	n.Fields |= FieldCreatorUUID
	n.CreateTime = time.Now().Truncate(time.Second)
	n.Fields |= FieldCreateTime

	buf, err := EncodeNode(n)
	if err != nil {
		t.Fatalf("EncodeNode: %v", err)
	}

	got, err := DecodeNode(buf)
	if err != nil {
		t.Fatalf("DecodeNode: %v", err)
	}

	if got.Idx != n.Idx || got.NodeType != n.NodeType {
		t.Fatalf("idx/type mismatch: got %+v", got)
	}
	if v, ok := got.Uint32At(1); !ok || v != 1001 {
		t.Fatalf("uint32_1 = %d, ok=%v", v, ok)
	}
	if v, ok := got.IStringAt(1); !ok || v != "Some Explorer" {
		t.Fatalf("istring64_1 = %q, ok=%v", v, ok)
	}
	if v, ok := got.TextAt(1); !ok || v != "a long note with no cap" {
		t.Fatalf("text_1 = %q, ok=%v", v, ok)
	}
	if v, ok := got.BlobAt(1); !ok || string(v) != "\x01\x02\x03\x04\x05" {
		t.Fatalf("blob_1 = %v, ok=%v", v, ok)
	}
	if !got.CreateTime.Equal(n.CreateTime) {
		t.Fatalf("create_time = %v, want %v", got.CreateTime, n.CreateTime)
	}
	if got.CreatorUUID != n.CreatorUUID {
		t.Fatalf("creator_uuid mismatch")
	}
	if got.Has(FieldInt32_1) {
		t.Fatal("unset field int32_1 must not decode as present")
	}
}

func TestEncodeDecodeRefsRoundTrip(t *testing.T) {
	refs := []RefRecord{
		{ParentIdx: 1, ChildIdx: 2, OwnerIdx: 1, Seen: true},
		{ParentIdx: 1, ChildIdx: 3, OwnerIdx: 0, Seen: false},
	}
	buf := EncodeRefs(refs)
	got, err := DecodeRefs(buf)
	if err != nil {
		t.Fatalf("DecodeRefs: %v", err)
	}
	if len(got) != len(refs) {
		t.Fatalf("len = %d, want %d", len(got), len(refs))
	}
	for i := range refs {
		if got[i] != refs[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], refs[i])
		}
	}
}

func TestDecodeRefsRejectsMisalignedBuffer(t *testing.T) {
	if _, err := DecodeRefs([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a misaligned buffer")
	}
}
