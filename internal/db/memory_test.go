package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/model"
	"github.com/zrax/moulars/internal/moulerr"
)

func TestMemoryAccountCreateAndLookupCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	acc := &model.Account{Name: "Tester"}
	if err := m.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if acc.ID == uuid.Nil {
		t.Fatal("CreateAccount did not assign an id")
	}

	got, err := m.AccountByName(ctx, "TESTER")
	if err != nil {
		t.Fatalf("AccountByName: %v", err)
	}
	if got.ID != acc.ID {
		t.Fatalf("got id %v, want %v", got.ID, acc.ID)
	}
}

func TestMemoryAccountDuplicateNameIsConflict(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.CreateAccount(ctx, &model.Account{Name: "Dup"})
	err := m.CreateAccount(ctx, &model.Account{Name: "dup"})
	if !moulerr.Is(err, moulerr.Conflict) {
		t.Fatalf("got %v, want Conflict", err)
	}
}

func TestMemoryNodeCreateFetchSave(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	n := &model.Node{NodeType: model.NodeTypeFolder}
	n.SetString(1, "Inbox")

	idx, err := m.CreateNode(ctx, n)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if idx < model.FirstUserIdx {
		t.Fatalf("got idx %d, want >= %d", idx, model.FirstUserIdx)
	}

	fetched, err := m.FetchNode(ctx, idx)
	if err != nil {
		t.Fatalf("FetchNode: %v", err)
	}
	if s, ok := fetched.StringAt(1); !ok || s != "Inbox" {
		t.Fatalf("got string1=%q ok=%v, want Inbox/true", s, ok)
	}

	fetched.SetString(1, "Renamed")
	fetched.Idx = idx
	if err := m.SaveNode(ctx, fetched); err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	again, err := m.FetchNode(ctx, idx)
	if err != nil {
		t.Fatalf("FetchNode after save: %v", err)
	}
	if s, _ := again.StringAt(1); s != "Renamed" {
		t.Fatalf("got %q, want Renamed", s)
	}
}

func TestMemoryFindNodesMatchesTemplateExactly(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a := &model.Node{NodeType: model.NodeTypeFolder}
	a.SetInt32(1, 7)
	idxA, _ := m.CreateNode(ctx, a)

	b := &model.Node{NodeType: model.NodeTypeFolder}
	b.SetInt32(1, 9)
	_, _ = m.CreateNode(ctx, b)

	tmpl := &model.Node{NodeType: model.NodeTypeFolder}
	tmpl.SetInt32(1, 7)

	matches, err := m.FindNodes(ctx, tmpl)
	if err != nil {
		t.Fatalf("FindNodes: %v", err)
	}
	if len(matches) != 1 || matches[0] != idxA {
		t.Fatalf("got %v, want [%d]", matches, idxA)
	}
}

func TestMemoryRefAddRemoveIsIdempotentAndBidirectional(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ref := NodeRef{ParentIdx: 1, ChildIdx: 2}
	if err := m.AddRef(ctx, ref); err != nil {
		t.Fatalf("AddRef: %v", err)
	}
	if err := m.AddRef(ctx, ref); err != nil {
		t.Fatalf("AddRef (repeat): %v", err)
	}

	byParent, _ := m.RefsByParent(ctx, 1)
	if len(byParent) != 1 {
		t.Fatalf("got %d refs by parent, want 1", len(byParent))
	}
	byChild, _ := m.RefsByChild(ctx, 2)
	if len(byChild) != 1 {
		t.Fatalf("got %d refs by child, want 1", len(byChild))
	}

	removed, err := m.RemoveRef(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RemoveRef: %v", err)
	}
	if !removed {
		t.Fatal("RemoveRef: got removed=false, want true")
	}
	byParent, _ = m.RefsByParent(ctx, 1)
	if len(byParent) != 0 {
		t.Fatalf("got %d refs by parent after remove, want 0", len(byParent))
	}

	removed, err = m.RemoveRef(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RemoveRef (repeat): %v", err)
	}
	if removed {
		t.Fatal("RemoveRef of an already-removed edge: got removed=true, want false")
	}
}

func TestMemorySDLGlobalRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	row := &SDLRow{Name: "Garden", Version: 3, Blob: []byte{1, 2, 3}}
	if err := m.SDLGlobalPut(ctx, row); err != nil {
		t.Fatalf("SDLGlobalPut: %v", err)
	}
	got, err := m.SDLGlobalGet(ctx, "Garden")
	if err != nil {
		t.Fatalf("SDLGlobalGet: %v", err)
	}
	if got.Version != 3 || len(got.Blob) != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestMemoryServerUpsertLookup(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := &ServerRecord{InstanceUUID: uuid.New(), AgeFilename: "Garden", AgeInstName: "Default"}
	if err := m.ServerUpsert(ctx, rec); err != nil {
		t.Fatalf("ServerUpsert: %v", err)
	}
	got, err := m.ServerByFilenameAndInst(ctx, "Garden", "Default")
	if err != nil {
		t.Fatalf("ServerByFilenameAndInst: %v", err)
	}
	if got.InstanceUUID != rec.InstanceUUID {
		t.Fatalf("got %v, want %v", got.InstanceUUID, rec.InstanceUUID)
	}
}
