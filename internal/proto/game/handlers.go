package game

import (
	"context"

	"github.com/zrax/moulars/internal/age"
	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/proto"
)

var log = logctx.Logger("game")

// PushedMessage is one server-initiated message queued for a
// connection's write side: Instance-driven deliveries (forwarded
// plMessages, SDL updates) arrive on Instance's own goroutine, never
// the connection's dispatch goroutine, so they cross into the
// connection's outbound path through a channel rather than a direct
// wire.Writer call (spec.md §5 "one read task and one write task per
// connection (joined by a bounded mpsc channel for outbound)").
type PushedMessage struct {
	ID     uint16
	Values map[string]any
}

// Deps bundles the Game channel's dependencies: the age instance
// manager it joins/leaves/routes through, and the bounded outbound
// queue its pushed deliveries are written to.
type Deps struct {
	Ages *age.Manager
	Push chan<- PushedMessage
}

// NewDispatch builds the Game channel's Dispatch bound to sess, connID
// (this connection's age.MemberID), and deps.
func NewDispatch(sess *Session, connID string, deps Deps) proto.Dispatch {
	return proto.Dispatch{
		MsgPingRequest:     handlePing,
		MsgJoinAgeRequest:  handleJoinAge(sess, age.MemberID(connID), deps),
		MsgLeaveAgeRequest: handleLeaveAge(sess),
		MsgPropagateBuffer: handlePropagate(sess),
		MsgSDLStateUpdate:  handleSDLUpdate(sess),
	}
}

// TeardownSession leaves any joined instance, for the connection
// close/idempotent-teardown path (spec.md §5 "Cancellation": "leave all
// age instances").
func TeardownSession(sess *Session) {
	if sess.Joined() {
		sess.Inst.Leave(sess.MemberID)
		sess.Reset()
	}
}

func handlePing(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return MsgPingReply, map[string]any{"ping_time": msg.Uint32("ping_time")}, true, nil
}

// handleJoinAge resolves age_instance_id to a running Instance and
// attaches this connection to it (spec.md §4.F "Join"). The Auth
// channel's AgeRequest has already resolved and possibly created the
// instance before handing its uuid to the client. Neither that request
// nor Join checks that the player is an owner of the age or that the age
// is public (see internal/proto/auth's handleAgeRequest doc comment on
// age_vault_id): Join trusts the instance uuid the client presents.
func handleJoinAge(sess *Session, connID age.MemberID, deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")

		fail := func(result gameResult) (uint16, map[string]any, bool, error) {
			return MsgJoinAgeReply, map[string]any{
				"trans_id": transID, "result": int32(result), "game_master": uint8(0),
			}, true, nil
		}

		if sess.Joined() {
			TeardownSession(sess)
		}

		inst, ok := deps.Ages.ByInstanceUUID(msg.UUID("age_instance_id"))
		if !ok {
			return fail(gameResultAgeNotFound)
		}

		sess.AccountID = msg.UUID("account_id")
		sess.PlayerIdx = msg.Uint32("player_int")

		member := age.Member{
			ID:         connID,
			PlayerIdx:  sess.PlayerIdx,
			LoadedKeys: make(map[string]bool),
			Deliver:    deliverTo(deps, sess),
		}
		global, perObject, gameMaster, err := inst.Join(ctx, member)
		if err != nil {
			return fail(gameResultInternal)
		}

		sess.Inst = inst
		sess.MemberID = connID
		sess.GameMaster = gameMaster

		pushSDLSnapshot(deps, global, perObject)

		gm := uint8(0)
		if gameMaster {
			gm = 1
		}
		return MsgJoinAgeReply, map[string]any{
			"trans_id": transID, "result": int32(gameResultSuccess), "game_master": gm,
		}, true, nil
	}
}

func handleLeaveAge(sess *Session) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		TeardownSession(sess)
		return 0, nil, false, nil
	}
}

// handlePropagate forwards an opaque plMessage to the rest of the
// instance's members per the routing header's broadcast flag (spec.md
// §4.F "Propagate plMessage"). Addressed (non-broadcast) delivery is
// folded into a broadcast here: this server has no wire message in
// scope by which a client reports which object keys it has loaded (see
// internal/age.Member.LoadedKeys), so there is no way to honor
// per-plKey targeting; broadcasting every message to the rest of the
// instance is the safe default (erring toward delivery, not silence).
func handlePropagate(sess *Session) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		if !sess.Joined() {
			return 0, nil, false, nil
		}
		_, payload := parseRoutingHeader(msg.Bytes("buffer"))
		sess.Inst.Propagate(sess.MemberID, age.PlMessage{Broadcast: true, Payload: payload})
		return 0, nil, false, nil
	}
}

func handleSDLUpdate(sess *Session) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		if !sess.Joined() {
			return 0, nil, false, nil
		}
		sess.Inst.UpdateSDL(
			msg.String("descriptor"),
			msg.String("object_key"),
			int(msg.Uint32("version")),
			msg.Bytes("blob"),
		)
		return 0, nil, false, nil
	}
}

// deliverTo adapts an age.Instance's Deliver callback (called from the
// Instance's own goroutine) into a PushedMessage on this connection's
// bounded outbound queue. The send is non-blocking: a full queue means
// one slow connection, and this server's vault notifications already
// accept best-effort, non-globally-ordered delivery under backpressure
// (spec.md §4.E "Delivery is best-effort in order per subscriber") — the
// same tradeoff applies here rather than stalling the Instance's single
// goroutine, and so every other member, behind one slow peer.
func deliverTo(deps Deps, sess *Session) func(age.PlMessage) {
	return func(msg age.PlMessage) {
		select {
		case deps.Push <- PushedMessage{ID: MsgPropagateBufferOut, Values: map[string]any{
			"buffer_len": uint32(len(msg.Payload)), "buffer": msg.Payload,
		}}:
		default:
			log.Warnw("dropped plMessage delivery: outbound queue full", "member", sess.MemberID)
		}
	}
}

func pushSDLSnapshot(deps Deps, global map[string][]byte, perObject map[age.SDLKey][]byte) {
	for descriptor, blob := range global {
		pushSDL(deps, descriptor, "", blob)
	}
	for key, blob := range perObject {
		pushSDL(deps, key.Descriptor(), key.ObjectKey(), blob)
	}
}

func pushSDL(deps Deps, descriptor, objectKey string, blob []byte) {
	values := map[string]any{
		"descriptor": descriptor, "object_key": objectKey,
		"version": uint32(0), "blob_len": uint32(len(blob)), "blob": blob,
	}
	select {
	case deps.Push <- PushedMessage{ID: MsgSDLStateUpdateOut, Values: values}:
	default:
		log.Warnw("dropped SDL snapshot push: outbound queue full", "descriptor", descriptor)
	}
}
