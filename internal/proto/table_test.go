package proto

import (
	"bytes"
	"testing"

	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/wire"
)

func pingTable() Table {
	return Table{
		1: {ID: 1, Name: "Ping", Fields: []Field{
			{Name: "Seq", Kind: FieldUint32},
		}},
		2: {ID: 2, Name: "Pong", Fields: []Field{
			{Name: "Seq", Kind: FieldUint32},
		}},
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	table := pingTable()

	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	if err := Encode(w, table, 1, map[string]any{"Seq": uint32(42)}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r := wire.NewReader(&buf)
	msg, err := Decode(r, table)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Name != "Ping" || msg.Uint32("Seq") != 42 {
		t.Fatalf("got %+v", msg)
	}
}

func TestDecodeUnknownIDIsProtocolError(t *testing.T) {
	table := pingTable()
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	_ = w.WriteUint16(99)

	r := wire.NewReader(&buf)
	_, err := Decode(r, table)
	if !moulerr.Is(err, moulerr.Protocol) {
		t.Fatalf("got err=%v, want Protocol error", err)
	}
}

func TestServeDispatchesAndReplies(t *testing.T) {
	table := pingTable()
	d := Dispatch{
		1: func(msg *Message) (uint16, map[string]any, bool, error) {
			return 2, map[string]any{"Seq": msg.Uint32("Seq") + 1}, true, nil
		},
	}

	var in, out bytes.Buffer
	w := wire.NewWriter(&in)
	_ = Encode(w, table, 1, map[string]any{"Seq": uint32(1)})

	r := wire.NewReader(&in)
	replyWriter := wire.NewWriter(&out)
	if err := Serve(r, replyWriter, table, table, d); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	replyReader := wire.NewReader(&out)
	reply, err := Decode(replyReader, table)
	if err != nil {
		t.Fatalf("Decode reply: %v", err)
	}
	if reply.Uint32("Seq") != 2 {
		t.Fatalf("got Seq=%d, want 2", reply.Uint32("Seq"))
	}
}

func TestServeMissingHandlerIsProtocolError(t *testing.T) {
	table := pingTable()
	d := Dispatch{} // no handler for id 1

	var in, out bytes.Buffer
	w := wire.NewWriter(&in)
	_ = Encode(w, table, 1, map[string]any{"Seq": uint32(1)})

	r := wire.NewReader(&in)
	replyWriter := wire.NewWriter(&out)
	err := Serve(r, replyWriter, table, table, d)
	if !moulerr.Is(err, moulerr.Protocol) {
		t.Fatalf("got err=%v, want Protocol error", err)
	}
}
