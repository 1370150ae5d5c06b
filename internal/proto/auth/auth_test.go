package auth

import (
	"bytes"
	"testing"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/model"
	"github.com/zrax/moulars/internal/proto"
	"github.com/zrax/moulars/internal/vault"
	"github.com/zrax/moulars/internal/wire"
)

func newTestDeps() (Deps, *vault.Store, db.Backend) {
	backend := db.NewMemory()
	v := vault.NewStore(backend)
	return Deps{Backend: backend, Vault: v}, v, backend
}

// call drives a Dispatch handler directly with a hand-built Message,
// bypassing the wire codec since the handlers only ever read decoded
// field values (table_test.go already covers Decode/Encode themselves).
func call(t *testing.T, d proto.Dispatch, id uint16, values map[string]any) (uint16, map[string]any) {
	t.Helper()
	h, ok := d[id]
	if !ok {
		t.Fatalf("no handler registered for id %d", id)
	}
	replyID, replyValues, hasReply, err := h(&proto.Message{ID: id, Values: values})
	if err != nil {
		t.Fatalf("handler for id %d returned error: %v", id, err)
	}
	if !hasReply {
		t.Fatalf("handler for id %d returned no reply", id)
	}
	return replyID, replyValues
}

func TestHandlePing(t *testing.T) {
	deps, _, _ := newTestDeps()
	d := NewDispatch(NewSession(), wire.NewWriter(&bytes.Buffer{}), deps)

	replyID, vals := call(t, d, MsgPingRequest, map[string]any{
		"ping_time": uint32(123), "trans_id": uint32(7), "payload_len": uint32(3), "payload": []byte{1, 2, 3},
	})
	if replyID != MsgPingReply {
		t.Fatalf("got reply id %d, want MsgPingReply", replyID)
	}
	if vals["ping_time"] != uint32(123) || vals["trans_id"] != uint32(7) {
		t.Fatalf("ping echo mismatch: %+v", vals)
	}
	if !bytes.Equal(vals["payload"].([]byte), []byte{1, 2, 3}) {
		t.Fatalf("payload not echoed: %+v", vals)
	}
}

func TestHandleAcctCreateThenLogin(t *testing.T) {
	deps, _, _ := newTestDeps()
	sess := NewSession()
	var out bytes.Buffer
	d := NewDispatch(sess, wire.NewWriter(&out), deps)

	passHash := model.LegacyPassHash("testuser", "hunter2")
	replyID, vals := call(t, d, MsgAcctCreateRequest, map[string]any{
		"trans_id": uint32(1), "account_name": "testuser", "auth_hash": passHash[:],
		"account_flags": uint32(0), "billing_type": uint32(0),
	})
	if replyID != MsgAcctCreateReply {
		t.Fatalf("got reply id %d, want MsgAcctCreateReply", replyID)
	}
	if vals["result"] != int32(netSuccess) {
		t.Fatalf("account create failed: %+v", vals)
	}

	// AcctLoginRequest pushes its replies directly via w rather than
	// returning through Dispatch, so drive ClientRegisterRequest first to
	// seed sess.ServerChallenge, then inspect what landed in out.
	h := d[MsgClientRegisterRequest]
	if _, _, _, err := h(&proto.Message{ID: MsgClientRegisterRequest, Values: map[string]any{"build_id": uint32(0)}}); err != nil {
		t.Fatalf("ClientRegisterRequest: %v", err)
	}

	clientChallenge := uint32(42)
	submitted := model.ChallengeHash(passHash, sess.ServerChallenge, clientChallenge)

	loginHandler := d[MsgAcctLoginRequest]
	_, _, hasReply, err := loginHandler(&proto.Message{ID: MsgAcctLoginRequest, Values: map[string]any{
		"trans_id": uint32(2), "client_challenge": clientChallenge, "account_name": "testuser",
		"pass_hash": submitted[:], "auth_token": "", "os": "win",
	}})
	if err != nil {
		t.Fatalf("AcctLoginRequest: %v", err)
	}
	if hasReply {
		t.Fatalf("AcctLoginRequest should push its reply via w, not return one")
	}
	if !sess.LoggedIn {
		t.Fatalf("session not marked logged in after a valid login")
	}

	r := wire.NewReader(bytes.NewReader(out.Bytes()))
	msg, err := proto.Decode(r, ReplyTable)
	if err != nil {
		t.Fatalf("decoding pushed ClientRegisterReply: %v", err)
	}
	if msg.ID != MsgClientRegisterReply {
		t.Fatalf("got pushed id %d, want MsgClientRegisterReply", msg.ID)
	}
	msg, err = proto.Decode(r, ReplyTable)
	if err != nil {
		t.Fatalf("decoding pushed AcctLoginReply: %v", err)
	}
	if msg.ID != MsgAcctLoginReply {
		t.Fatalf("got pushed id %d, want MsgAcctLoginReply", msg.ID)
	}
	if msg.Int32("result") != int32(netSuccess) {
		t.Fatalf("login result = %d, want netSuccess", msg.Int32("result"))
	}
}

func TestHandleAcctLoginWrongPassword(t *testing.T) {
	deps, _, _ := newTestDeps()
	sess := NewSession()
	var out bytes.Buffer
	d := NewDispatch(sess, wire.NewWriter(&out), deps)

	passHash := model.LegacyPassHash("testuser", "hunter2")
	call(t, d, MsgAcctCreateRequest, map[string]any{
		"trans_id": uint32(1), "account_name": "testuser", "auth_hash": passHash[:],
		"account_flags": uint32(0), "billing_type": uint32(0),
	})

	loginHandler := d[MsgAcctLoginRequest]
	wrongSubmitted := model.ChallengeHash([20]byte{}, sess.ServerChallenge, 1)
	if _, _, _, err := loginHandler(&proto.Message{ID: MsgAcctLoginRequest, Values: map[string]any{
		"trans_id": uint32(2), "client_challenge": uint32(1), "account_name": "testuser",
		"pass_hash": wrongSubmitted[:], "auth_token": "", "os": "win",
	}}); err != nil {
		t.Fatalf("AcctLoginRequest: %v", err)
	}
	if sess.LoggedIn {
		t.Fatalf("session should not be logged in after a bad password")
	}

	r := wire.NewReader(bytes.NewReader(out.Bytes()))
	msg, err := proto.Decode(r, ReplyTable)
	if err != nil {
		t.Fatalf("decoding pushed AcctLoginReply: %v", err)
	}
	if msg.Int32("result") != int32(netAuthenticationFailed) {
		t.Fatalf("result = %d, want netAuthenticationFailed", msg.Int32("result"))
	}
	// Every AcctLoginReply field must be present even on failure, or
	// Encode's encodeField would have panicked before we got here.
	if _, ok := msg.Values["account_id"]; !ok {
		t.Fatalf("account_id missing from failure reply")
	}
}

func TestHandlePlayerCreateRequiresLogin(t *testing.T) {
	deps, _, _ := newTestDeps()
	sess := NewSession()
	d := NewDispatch(sess, wire.NewWriter(&bytes.Buffer{}), deps)

	replyID, vals := call(t, d, MsgPlayerCreateRequest, map[string]any{
		"trans_id": uint32(5), "player_name": "Atrus", "avatar_shape": "female", "friend_invite": "",
	})
	if replyID != MsgPlayerCreateReply {
		t.Fatalf("got reply id %d, want MsgPlayerCreateReply", replyID)
	}
	if vals["result"] != int32(netAuthenticationFailed) {
		t.Fatalf("result = %v, want netAuthenticationFailed", vals["result"])
	}
	// Regression guard for the playerCreateFailure helper: every field
	// PlayerCreateReply declares must be present, or proto.Encode would
	// panic on the type assertion for a missing one.
	for _, field := range []string{"trans_id", "result", "player_id", "explorer", "player_name", "avatar_shape"} {
		if _, ok := vals[field]; !ok {
			t.Fatalf("PlayerCreateReply failure map missing field %q", field)
		}
	}
}

func TestHandlePlayerCreateSuccess(t *testing.T) {
	deps, _, _ := newTestDeps()
	sess := NewSession()
	sess.LoggedIn = true
	sess.AccountID = uuid.New()
	d := NewDispatch(sess, wire.NewWriter(&bytes.Buffer{}), deps)

	replyID, vals := call(t, d, MsgPlayerCreateRequest, map[string]any{
		"trans_id": uint32(5), "player_name": "Atrus", "avatar_shape": "female", "friend_invite": "",
	})
	if replyID != MsgPlayerCreateReply {
		t.Fatalf("got reply id %d, want MsgPlayerCreateReply", replyID)
	}
	if vals["result"] != int32(netSuccess) {
		t.Fatalf("result = %v, want netSuccess", vals["result"])
	}
	if vals["player_name"] != "Atrus" {
		t.Fatalf("player_name = %v, want Atrus", vals["player_name"])
	}
	if len(sess.Players) != 1 {
		t.Fatalf("session has %d players, want 1", len(sess.Players))
	}
}

func TestHandlePlayerCreateMaxPlayers(t *testing.T) {
	deps, _, _ := newTestDeps()
	sess := NewSession()
	sess.LoggedIn = true
	sess.AccountID = uuid.New()
	for i := 0; i < maxPlayersPerAccount; i++ {
		sess.Players = append(sess.Players, model.Player{AccountID: sess.AccountID, PlayerIdx: uint32(i + 1)})
	}
	d := NewDispatch(sess, wire.NewWriter(&bytes.Buffer{}), deps)

	_, vals := call(t, d, MsgPlayerCreateRequest, map[string]any{
		"trans_id": uint32(9), "player_name": "TooMany", "avatar_shape": "male", "friend_invite": "",
	})
	if vals["result"] != int32(netMaxPlayersOnAcct) {
		t.Fatalf("result = %v, want netMaxPlayersOnAcct", vals["result"])
	}
}

func TestHandleVaultNodeCreateFetchSave(t *testing.T) {
	deps, _, _ := newTestDeps()
	d := NewDispatch(NewSession(), wire.NewWriter(&bytes.Buffer{}), deps)

	n := &vault.Node{NodeType: vault.NodeTypeFolder}
	n.SetString(1, "Inbox")
	buf, err := vault.EncodeNode(n)
	if err != nil {
		t.Fatalf("EncodeNode: %v", err)
	}

	_, vals := call(t, d, MsgVaultNodeCreate, map[string]any{
		"trans_id": uint32(1), "node_buffer_len": uint32(len(buf)), "node_buffer": buf,
	})
	if vals["result"] != int32(netSuccess) {
		t.Fatalf("create result = %v, want netSuccess", vals["result"])
	}
	idx := vals["node_id"].(uint32)

	_, fetched := call(t, d, MsgVaultNodeFetch, map[string]any{"trans_id": uint32(2), "node_id": idx})
	if fetched["result"] != int32(netSuccess) {
		t.Fatalf("fetch result = %v, want netSuccess", fetched["result"])
	}
	roundTripped, err := vault.DecodeNode(fetched["node_buffer"].([]byte))
	if err != nil {
		t.Fatalf("DecodeNode: %v", err)
	}
	if s, ok := roundTripped.StringAt(1); !ok || s != "Inbox" {
		t.Fatalf("String_1 = %q, %v, want Inbox, true", s, ok)
	}

	patch := &vault.Node{}
	patch.SetString(1, "Archive")
	patchBuf, err := vault.EncodeNode(patch)
	if err != nil {
		t.Fatalf("EncodeNode patch: %v", err)
	}
	_, saved := call(t, d, MsgVaultNodeSave, map[string]any{
		"trans_id": uint32(3), "node_id": idx, "revision": uuid.New(),
		"node_buffer_len": uint32(len(patchBuf)), "node_buffer": patchBuf,
	})
	if saved["result"] != int32(netSuccess) {
		t.Fatalf("save result = %v, want netSuccess", saved["result"])
	}

	_, refetched := call(t, d, MsgVaultNodeFetch, map[string]any{"trans_id": uint32(4), "node_id": idx})
	after, err := vault.DecodeNode(refetched["node_buffer"].([]byte))
	if err != nil {
		t.Fatalf("DecodeNode after save: %v", err)
	}
	if s, _ := after.StringAt(1); s != "Archive" {
		t.Fatalf("String_1 after save = %q, want Archive", s)
	}
}

func TestHandleVaultNodeFetchMissing(t *testing.T) {
	deps, _, _ := newTestDeps()
	d := NewDispatch(NewSession(), wire.NewWriter(&bytes.Buffer{}), deps)

	_, vals := call(t, d, MsgVaultNodeFetch, map[string]any{"trans_id": uint32(1), "node_id": uint32(999)})
	if vals["result"] != int32(netVaultNodeNotFound) {
		t.Fatalf("result = %v, want netVaultNodeNotFound", vals["result"])
	}
	if _, ok := vals["node_buffer"]; !ok {
		t.Fatalf("node_buffer missing from not-found reply")
	}
}

func TestHandleAccountExists(t *testing.T) {
	deps, _, _ := newTestDeps()
	d := NewDispatch(NewSession(), wire.NewWriter(&bytes.Buffer{}), deps)

	_, vals := call(t, d, MsgAccountExistsRequest, map[string]any{"trans_id": uint32(1), "account_name": "nobody"})
	if vals["exists"] != uint8(0) {
		t.Fatalf("exists = %v, want 0 for unknown account", vals["exists"])
	}

	passHash := model.LegacyPassHash("somebody", "pw")
	call(t, d, MsgAcctCreateRequest, map[string]any{
		"trans_id": uint32(2), "account_name": "somebody", "auth_hash": passHash[:],
		"account_flags": uint32(0), "billing_type": uint32(0),
	})
	_, vals = call(t, d, MsgAccountExistsRequest, map[string]any{"trans_id": uint32(3), "account_name": "somebody"})
	if vals["exists"] != uint8(1) {
		t.Fatalf("exists = %v, want 1 for known account", vals["exists"])
	}
}

func TestHandleScoreCreateAddAndGet(t *testing.T) {
	deps, _, _ := newTestDeps()
	d := NewDispatch(NewSession(), wire.NewWriter(&bytes.Buffer{}), deps)

	_, created := call(t, d, MsgScoreCreate, map[string]any{
		"trans_id": uint32(1), "owner_id": uint32(10), "game_name": "heek", "game_type": uint32(0), "value": uint32(5),
	})
	if created["result"] != int32(netSuccess) {
		t.Fatalf("create result = %v, want netSuccess", created["result"])
	}
	scoreID := created["score_id"].(uint32)

	_, added := call(t, d, MsgScoreAddPoints, map[string]any{"trans_id": uint32(2), "score_id": scoreID, "points": uint32(3)})
	if added["result"] != int32(netSuccess) {
		t.Fatalf("add result = %v, want netSuccess", added["result"])
	}

	_, got := call(t, d, MsgScoreGetScores, map[string]any{"trans_id": uint32(3), "owner_id": uint32(10), "game_name": "heek"})
	if got["score_count"] != uint32(1) {
		t.Fatalf("score_count = %v, want 1", got["score_count"])
	}
}

func TestStubNotSupported(t *testing.T) {
	deps, _, _ := newTestDeps()
	d := NewDispatch(NewSession(), wire.NewWriter(&bytes.Buffer{}), deps)

	replyID, vals := call(t, d, MsgAcctChangePasswordRequest, map[string]any{
		"trans_id": uint32(1), "account_name": "x", "auth_hash": make([]byte, 20),
	})
	if replyID != MsgAcctChangePasswordReply {
		t.Fatalf("got reply id %d, want MsgAcctChangePasswordReply", replyID)
	}
	if vals["result"] != int32(netNotSupported) {
		t.Fatalf("result = %v, want netNotSupported", vals["result"])
	}
}
