package gate

import (
	"bytes"
	"testing"

	"github.com/zrax/moulars/internal/proto"
	"github.com/zrax/moulars/internal/wire"
)

func TestFileServIPAddressRoundTrip(t *testing.T) {
	d := NewDispatch(Endpoints{FileServerIP: "file.example.org", AuthServerIP: "auth.example.org"})

	var reqBuf bytes.Buffer
	w := wire.NewWriter(&reqBuf)
	if err := proto.Encode(w, RequestTable, MsgFileServIPAddressRequest, map[string]any{
		"trans_id": uint32(7), "from_patcher": uint8(1),
	}); err != nil {
		t.Fatalf("encode request: %v", err)
	}

	var replyBuf bytes.Buffer
	rw := wire.NewWriter(&replyBuf)
	if err := proto.Serve(wire.NewReader(&reqBuf), rw, RequestTable, ReplyTable, d); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	reply, err := proto.Decode(wire.NewReader(&replyBuf), ReplyTable)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Uint32("trans_id") != 7 {
		t.Errorf("trans_id = %d, want 7", reply.Uint32("trans_id"))
	}
	if reply.String("ip_addr") != "file.example.org" {
		t.Errorf("ip_addr = %q, want file.example.org", reply.String("ip_addr"))
	}
}

func TestAuthServIPAddressRoundTrip(t *testing.T) {
	d := NewDispatch(Endpoints{FileServerIP: "file.example.org", AuthServerIP: "auth.example.org"})

	var reqBuf bytes.Buffer
	w := wire.NewWriter(&reqBuf)
	if err := proto.Encode(w, RequestTable, MsgAuthServIPAddressRequest, map[string]any{
		"trans_id": uint32(3),
	}); err != nil {
		t.Fatalf("encode request: %v", err)
	}

	var replyBuf bytes.Buffer
	rw := wire.NewWriter(&replyBuf)
	if err := proto.Serve(wire.NewReader(&reqBuf), rw, RequestTable, ReplyTable, d); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	reply, err := proto.Decode(wire.NewReader(&replyBuf), ReplyTable)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.String("ip_addr") != "auth.example.org" {
		t.Errorf("ip_addr = %q, want auth.example.org", reply.String("ip_addr"))
	}
}
