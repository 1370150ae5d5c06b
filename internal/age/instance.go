// Package age implements the Age instance manager (spec.md §4.F):
// instance lifecycle (join/leave/ownership handoff), SDL merge-by-version,
// plMessage routing, and temporary-instance grace-period deletion.
// original_source carries no game/age-instance server at all (there is
// no src/age/ or src/game_srv/ directory), so the domain logic here is
// built straight from spec.md §4.F with no original implementation to
// check against; only the AgeInfo field shapes are grounded, on
// original_source/src/auth_srv/age_info.rs. The concurrency shape is
// grounded on the teacher's own node/candidate/tcp_server.go: one
// goroutine per instance processing a mailbox channel (spec.md §5
// "Stateful services ... run as independent tasks communicating via
// request/reply message channels — no shared locks on domain state").
package age

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/moulerr"
)

var log = logctx.Logger("age")

// DefaultGracePeriod is how long an empty temporary instance survives
// before its server row is deleted (spec.md §4.F "Leave"). Its saved SDL
// rows are not deleted.
const DefaultGracePeriod = 60 * time.Second

// MemberID names a Game-channel connection within an instance. The
// server package supplies concrete ids (e.g. a connection pointer's
// string form); age itself only needs equality and ordering by arrival.
type MemberID string

// PlMessage is the opaque plMessage envelope the server forwards without
// interpreting beyond its routing header (spec.md §4.F, §GLOSSARY
// "plMessage/plKey/uoid").
type PlMessage struct {
	Broadcast  bool
	Receivers  []string // plKey strings; empty + Broadcast means "everyone"
	Payload    []byte
}

// Member is one joined player's bookkeeping: which member-local object
// keys they have loaded (for addressed-message routing) and their
// outbound delivery func.
type Member struct {
	ID        MemberID
	PlayerIdx uint32
	LoadedKeys map[string]bool
	Deliver   func(msg PlMessage)
}

// SDLKey identifies one mergeable SDL blob within an instance (spec.md
// §4.F "SDL update: merge-by-descriptor... (instance, descriptor,
// object_key)").
type SDLKey struct {
	descriptor string
	objectKey  string
}

// Descriptor is the SDL descriptor name this key merges by.
func (k SDLKey) Descriptor() string { return k.descriptor }

// ObjectKey is the per-object plKey this entry is scoped to, or "" for
// a global (age-wide) SDL entry.
func (k SDLKey) ObjectKey() string { return k.objectKey }

type sdlEntry struct {
	version int
	blob    []byte
	dirty   bool
}

// request types sent to an Instance's run loop mailbox. Using one
// channel and a type switch (rather than N separate channels) keeps
// ordering guarantees simple: every request to one instance is
// processed in the order it was sent (spec.md §5 "Age-Instance-Manager
// processes messages in arrival order").
type joinReq struct {
	member   Member
	ownerOK  bool
	reply    chan<- joinResult
}

type joinResult struct {
	globalSDL map[string][]byte
	perObject map[SDLKey][]byte
	gameMaster bool
	err       error
}

type leaveReq struct {
	id MemberID
}

type propagateReq struct {
	from MemberID
	msg  PlMessage
}

type sdlUpdateReq struct {
	descriptor string
	objectKey  string
	version    int
	blob       []byte
}

// Instance is a running Age: one goroutine owns all of its mutable
// state and processes requests off a single mailbox, so no mutex is
// needed (spec.md §5's "no shared locks on domain state").
type Instance struct {
	InstanceUUID uuid.UUID
	AgeFilename  string
	AgeInstName  string
	Temporary    bool

	backend db.Backend

	mailbox chan any
	done    chan struct{}

	onEmpty func(*Instance) // called when membership drops to zero
}

// NewInstance constructs an Instance and starts its run loop. Call Stop
// to shut it down.
func NewInstance(backend db.Backend, instanceUUID uuid.UUID, ageFilename, ageInstName string, temporary bool, onEmpty func(*Instance)) *Instance {
	inst := &Instance{
		InstanceUUID: instanceUUID,
		AgeFilename:  ageFilename,
		AgeInstName:  ageInstName,
		Temporary:    temporary,
		backend:      backend,
		mailbox:      make(chan any, 256),
		done:         make(chan struct{}),
		onEmpty:      onEmpty,
	}
	go inst.run()
	return inst
}

// Stop terminates the run loop. Pending mailbox sends after Stop are
// dropped.
func (inst *Instance) Stop() { close(inst.done) }

// Join attaches member to the instance (spec.md §4.F "Join") after the
// caller has already verified the player holds a Player-type vault node
// and is either a listed owner or the age is public — age itself does
// not re-derive that check, since it has no view of the vault.
func (inst *Instance) Join(ctx context.Context, member Member) (globalSDL map[string][]byte, perObject map[SDLKey][]byte, gameMaster bool, err error) {
	reply := make(chan joinResult, 1)
	select {
	case inst.mailbox <- joinReq{member: member, ownerOK: true, reply: reply}:
	case <-ctx.Done():
		return nil, nil, false, ctx.Err()
	case <-inst.done:
		return nil, nil, false, moulerr.New(moulerr.IO, "age.Join", nil)
	}
	select {
	case res := <-reply:
		return res.globalSDL, res.perObject, res.gameMaster, res.err
	case <-ctx.Done():
		return nil, nil, false, ctx.Err()
	}
}

// Leave detaches member from the instance (spec.md §4.F "Leave").
func (inst *Instance) Leave(id MemberID) {
	select {
	case inst.mailbox <- leaveReq{id: id}:
	case <-inst.done:
	}
}

// Propagate forwards msg per spec.md §4.F's broadcast/addressed rule.
func (inst *Instance) Propagate(from MemberID, msg PlMessage) {
	select {
	case inst.mailbox <- propagateReq{from: from, msg: msg}:
	case <-inst.done:
	}
}

// UpdateSDL submits a new SDL blob version for (descriptor, objectKey)
// (spec.md §4.F "SDL update"). Older-or-equal versions already stored
// are silently discarded by the run loop.
func (inst *Instance) UpdateSDL(descriptor, objectKey string, version int, blob []byte) {
	select {
	case inst.mailbox <- sdlUpdateReq{descriptor: descriptor, objectKey: objectKey, version: version, blob: blob}:
	case <-inst.done:
	}
}

func (inst *Instance) run() {
	members := make(map[MemberID]*Member)
	arrivalOrder := []MemberID{}
	gameMaster := MemberID("")

	global := make(map[string]*sdlEntry) // keyed by descriptor
	perObject := make(map[SDLKey]*sdlEntry)

	flushTicker := time.NewTicker(5 * time.Second)
	defer flushTicker.Stop()

	var graceTimer *time.Timer
	graceFired := make(chan struct{})

	for {
		select {
		case <-inst.done:
			return

		case <-flushTicker.C:
			inst.flushDirty(global, perObject)

		case <-graceFired:
			if len(members) == 0 {
				log.Infow("deleting empty temporary instance", "instance", inst.InstanceUUID, "age", inst.AgeFilename)
				_ = inst.backend.ServerDelete(context.Background(), inst.InstanceUUID)
				if inst.onEmpty != nil {
					inst.onEmpty(inst)
				}
				return
			}

		case raw := <-inst.mailbox:
			switch req := raw.(type) {
			case joinReq:
				if graceTimer != nil {
					graceTimer.Stop()
					graceTimer = nil
				}
				members[req.member.ID] = &req.member
				arrivalOrder = append(arrivalOrder, req.member.ID)
				if gameMaster == "" {
					gameMaster = req.member.ID
				}
				req.reply <- joinResult{
					globalSDL:  snapshotGlobal(global),
					perObject:  snapshotPerObject(perObject),
					gameMaster: gameMaster == req.member.ID,
				}

			case leaveReq:
				delete(members, req.id)
				for i, id := range arrivalOrder {
					if id == req.id {
						arrivalOrder = append(arrivalOrder[:i], arrivalOrder[i+1:]...)
						break
					}
				}
				if req.id == gameMaster {
					// Ownership handoff: next-joined member by arrival
					// order inherits (spec.md §4.F "Ownership handoff").
					if len(arrivalOrder) > 0 {
						gameMaster = arrivalOrder[0]
					} else {
						gameMaster = ""
					}
				}
				if len(members) == 0 && inst.Temporary {
					graceTimer = time.AfterFunc(DefaultGracePeriod, func() {
						select {
						case graceFired <- struct{}{}:
						case <-inst.done:
						}
					})
				}

			case propagateReq:
				inst.deliverPropagate(members, req)

			case sdlUpdateReq:
				mergeSDL(global, perObject, req)
			}
		}
	}
}

func (inst *Instance) deliverPropagate(members map[MemberID]*Member, req propagateReq) {
	if req.msg.Broadcast && len(req.msg.Receivers) == 0 {
		for id, m := range members {
			if id == req.from {
				continue
			}
			m.Deliver(req.msg)
		}
		return
	}
	for _, key := range req.msg.Receivers {
		for id, m := range members {
			if id == req.from {
				continue
			}
			if m.LoadedKeys[key] {
				m.Deliver(req.msg)
			}
		}
	}
}

// mergeSDL implements spec.md §4.F's "latest version wins; older
// arrivals for the same (instance, descriptor, object_key) are
// discarded" rule (testable property 6).
func mergeSDL(global map[string]*sdlEntry, perObject map[SDLKey]*sdlEntry, req sdlUpdateReq) {
	if req.objectKey == "" {
		cur, ok := global[req.descriptor]
		if ok && cur.version >= req.version {
			return
		}
		global[req.descriptor] = &sdlEntry{version: req.version, blob: req.blob, dirty: true}
		return
	}
	key := SDLKey{descriptor: req.descriptor, objectKey: req.objectKey}
	cur, ok := perObject[key]
	if ok && cur.version >= req.version {
		return
	}
	perObject[key] = &sdlEntry{version: req.version, blob: req.blob, dirty: true}
}

func (inst *Instance) flushDirty(global map[string]*sdlEntry, perObject map[SDLKey]*sdlEntry) {
	ctx := context.Background()
	for name, e := range global {
		if !e.dirty {
			continue
		}
		if err := inst.backend.SDLGlobalPut(ctx, &db.SDLRow{Name: name, Version: e.version, Blob: e.blob, SavedTime: time.Now()}); err != nil {
			log.Warnw("flush global SDL failed", "err", err)
			continue
		}
		e.dirty = false
	}
	for key, e := range perObject {
		if !e.dirty {
			continue
		}
		row := &db.SDLRow{Name: key.descriptor + "/" + key.objectKey, AgeUUID: inst.InstanceUUID, Version: e.version, Blob: e.blob, SavedTime: time.Now()}
		if err := inst.backend.SDLAgePut(ctx, row); err != nil {
			log.Warnw("flush per-object SDL failed", "err", err)
			continue
		}
		e.dirty = false
	}
}

func snapshotGlobal(global map[string]*sdlEntry) map[string][]byte {
	out := make(map[string][]byte, len(global))
	for k, e := range global {
		out[k] = e.blob
	}
	return out
}

func snapshotPerObject(perObject map[SDLKey]*sdlEntry) map[SDLKey][]byte {
	out := make(map[SDLKey][]byte, len(perObject))
	for k, e := range perObject {
		out[k] = e.blob
	}
	return out
}
