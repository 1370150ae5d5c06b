package age

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/db"
)

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	inst := NewInstance(db.NewMemory(), uuid.New(), "Garden", "Default", false, nil)
	t.Cleanup(inst.Stop)
	return inst
}

func TestInstanceJoinFirstMemberIsGameMaster(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	_, _, gm, err := inst.Join(ctx, Member{ID: "a", LoadedKeys: map[string]bool{}, Deliver: func(PlMessage) {}})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !gm {
		t.Fatal("first joiner must be game-master")
	}

	_, _, gm2, err := inst.Join(ctx, Member{ID: "b", LoadedKeys: map[string]bool{}, Deliver: func(PlMessage) {}})
	if err != nil {
		t.Fatalf("Join b: %v", err)
	}
	if gm2 {
		t.Fatal("second joiner must not be game-master")
	}
}

func TestInstanceOwnershipHandoffOnLeave(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	inst.Join(ctx, Member{ID: "a", LoadedKeys: map[string]bool{}, Deliver: func(PlMessage) {}})
	inst.Join(ctx, Member{ID: "b", LoadedKeys: map[string]bool{}, Deliver: func(PlMessage) {}})

	inst.Leave("a")

	_, _, gm, err := inst.Join(ctx, Member{ID: "c", LoadedKeys: map[string]bool{}, Deliver: func(PlMessage) {}})
	if err != nil {
		t.Fatalf("Join c: %v", err)
	}
	if gm {
		t.Fatal("b should have inherited game-master on a's departure, not c")
	}
}

func TestInstancePropagateBroadcastExcludesSender(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	received := make(chan PlMessage, 4)
	inst.Join(ctx, Member{ID: "a", LoadedKeys: map[string]bool{}, Deliver: func(m PlMessage) { received <- m }})
	inst.Join(ctx, Member{ID: "b", LoadedKeys: map[string]bool{}, Deliver: func(m PlMessage) { received <- m }})

	inst.Propagate("a", PlMessage{Broadcast: true, Payload: []byte("hi")})

	select {
	case m := <-received:
		if string(m.Payload) != "hi" {
			t.Fatalf("got payload %q", m.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("expected b to receive the broadcast")
	}

	select {
	case <-received:
		t.Fatal("sender should not receive its own broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInstancePropagateAddressedOnlyReachesLoadedKey(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	gotA := make(chan PlMessage, 1)
	gotB := make(chan PlMessage, 1)
	inst.Join(ctx, Member{ID: "a", LoadedKeys: map[string]bool{"obj1": true}, Deliver: func(m PlMessage) { gotA <- m }})
	inst.Join(ctx, Member{ID: "b", LoadedKeys: map[string]bool{}, Deliver: func(m PlMessage) { gotB <- m }})

	inst.Propagate("origin", PlMessage{Receivers: []string{"obj1"}, Payload: []byte("addr")})

	select {
	case <-gotA:
	case <-time.After(time.Second):
		t.Fatal("expected a (holding obj1) to receive the addressed message")
	}
	select {
	case <-gotB:
		t.Fatal("b does not hold obj1, should not receive")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInstanceSDLMergeByVersionIsOrderIndependent(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	inst.UpdateSDL("Garden", "", 3, []byte("v3"))
	inst.UpdateSDL("Garden", "", 1, []byte("v1"))
	inst.UpdateSDL("Garden", "", 2, []byte("v2"))

	global, _, _, err := inst.Join(ctx, Member{ID: "observer", LoadedKeys: map[string]bool{}, Deliver: func(PlMessage) {}})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if string(global["Garden"]) != "v3" {
		t.Fatalf("got %q, want v3 (highest version must win regardless of arrival order)", global["Garden"])
	}
}
