package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/age"
	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/proto"
	"github.com/zrax/moulars/internal/vault"
)

func newTestDeps() (Deps, chan PushedMessage, *age.Manager) {
	backend := db.NewMemory()
	v := vault.NewStore(backend)
	ages := age.NewManager(backend, v)
	push := make(chan PushedMessage, 256)
	return Deps{Ages: ages, Push: push}, push, ages
}

func call(t *testing.T, d proto.Dispatch, id uint16, values map[string]any) (uint16, map[string]any, bool) {
	t.Helper()
	h, ok := d[id]
	if !ok {
		t.Fatalf("no handler registered for id %d", id)
	}
	replyID, replyValues, hasReply, err := h(&proto.Message{ID: id, Values: values})
	if err != nil {
		t.Fatalf("handler for id %d returned error: %v", id, err)
	}
	return replyID, replyValues, hasReply
}

func TestHandlePing(t *testing.T) {
	deps, _, _ := newTestDeps()
	d := NewDispatch(NewSession(), "conn-1", deps)

	replyID, values, hasReply := call(t, d, MsgPingRequest, map[string]any{"ping_time": uint32(99)})
	if !hasReply || replyID != MsgPingReply || values["ping_time"] != uint32(99) {
		t.Fatalf("got (%d, %v, %v), want (%d, 99, true)", replyID, values, hasReply, MsgPingReply)
	}
}

func TestHandleJoinAgeUnknownInstance(t *testing.T) {
	deps, _, _ := newTestDeps()
	sess := NewSession()
	d := NewDispatch(sess, "conn-1", deps)

	replyID, values, hasReply := call(t, d, MsgJoinAgeRequest, map[string]any{
		"trans_id": uint32(1), "age_instance_id": uuid.New(),
		"account_id": uuid.New(), "player_int": uint32(7),
	})
	if !hasReply || replyID != MsgJoinAgeReply {
		t.Fatalf("expected a JoinAgeReply")
	}
	if values["result"] != int32(gameResultAgeNotFound) {
		t.Fatalf("got result %v, want gameResultAgeNotFound", values["result"])
	}
	if sess.Joined() {
		t.Fatal("session should not be joined after a failed JoinAgeRequest")
	}
}

func TestHandleJoinAgeSuccessFirstJoinerIsGameMaster(t *testing.T) {
	deps, push, ages := newTestDeps()
	inst, err := ages.GetOrCreate(context.Background(), "Garden", "", true)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	sess := NewSession()
	d := NewDispatch(sess, "conn-1", deps)

	accountID := uuid.New()
	_, values, hasReply := call(t, d, MsgJoinAgeRequest, map[string]any{
		"trans_id": uint32(2), "age_instance_id": inst.InstanceUUID,
		"account_id": accountID, "player_int": uint32(3),
	})
	if !hasReply {
		t.Fatal("expected a reply")
	}
	if values["result"] != int32(gameResultSuccess) {
		t.Fatalf("got result %v, want success", values["result"])
	}
	if values["game_master"] != uint8(1) {
		t.Fatalf("got game_master %v, want 1 (first joiner)", values["game_master"])
	}
	if !sess.Joined() || sess.AccountID != accountID || sess.PlayerIdx != 3 {
		t.Fatalf("session not updated correctly after join: %+v", sess)
	}
	_ = push
}

func TestHandleLeaveAgeResetsSession(t *testing.T) {
	deps, _, ages := newTestDeps()
	inst, err := ages.GetOrCreate(context.Background(), "Garden", "", true)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	sess := NewSession()
	d := NewDispatch(sess, "conn-1", deps)

	call(t, d, MsgJoinAgeRequest, map[string]any{
		"trans_id": uint32(1), "age_instance_id": inst.InstanceUUID,
		"account_id": uuid.New(), "player_int": uint32(1),
	})
	if !sess.Joined() {
		t.Fatal("expected session to be joined before leaving")
	}

	_, _, hasReply := call(t, d, MsgLeaveAgeRequest, map[string]any{"trans_id": uint32(2)})
	if hasReply {
		t.Fatal("LeaveAgeRequest should not produce a reply")
	}
	if sess.Joined() {
		t.Fatal("expected session to be reset after LeaveAgeRequest")
	}
}

func TestHandlePropagateBroadcastsToOtherMembers(t *testing.T) {
	deps, push, ages := newTestDeps()
	inst, err := ages.GetOrCreate(context.Background(), "Garden", "", true)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	sessA := NewSession()
	dA := NewDispatch(sessA, "conn-a", deps)
	call(t, dA, MsgJoinAgeRequest, map[string]any{
		"trans_id": uint32(1), "age_instance_id": inst.InstanceUUID,
		"account_id": uuid.New(), "player_int": uint32(1),
	})

	sessB := NewSession()
	dB := NewDispatch(sessB, "conn-b", deps)
	call(t, dB, MsgJoinAgeRequest, map[string]any{
		"trans_id": uint32(2), "age_instance_id": inst.InstanceUUID,
		"account_id": uuid.New(), "player_int": uint32(2),
	})

	// Drain the SDL snapshot pushes both joins triggered before
	// checking for the propagated message below.
	drained := 0
	for len(push) > 0 {
		<-push
		drained++
	}

	header := make([]byte, routingHeaderSize)
	header[0] = 1 // broadcast bit
	payload := append(header, []byte("hello")...)
	_, _, hasReply := call(t, dA, MsgPropagateBuffer, map[string]any{
		"buffer_len": uint32(len(payload)), "buffer": payload,
	})
	if hasReply {
		t.Fatal("PropagateBuffer should not produce a direct reply")
	}

	select {
	case pushed := <-push:
		if pushed.ID != MsgPropagateBufferOut {
			t.Fatalf("got pushed id %d, want %d", pushed.ID, MsgPropagateBufferOut)
		}
		if string(pushed.Values["buffer"].([]byte)) != "hello" {
			t.Fatalf("got payload %q, want %q", pushed.Values["buffer"], "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a pushed PropagateBuffer message for the other member")
	}
}

func TestHandleSDLUpdateIgnoredWhenNotJoined(t *testing.T) {
	deps, _, _ := newTestDeps()
	sess := NewSession()
	d := NewDispatch(sess, "conn-1", deps)

	_, _, hasReply := call(t, d, MsgSDLStateUpdate, map[string]any{
		"descriptor": "Garden", "object_key": "", "version": uint32(1), "blob": []byte("x"),
	})
	if hasReply {
		t.Fatal("SDLStateUpdate should never produce a direct reply")
	}
}

func TestParseRoutingHeaderShortBufferIsBroadcast(t *testing.T) {
	hdr, rest := parseRoutingHeader([]byte{1, 2, 3})
	if !hdr.broadcast || rest != nil {
		t.Fatalf("got %+v, %v, want broadcast with no payload", hdr, rest)
	}
}
