package vault

import (
	"context"
	"sync"

	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/moulerr"
)

var log = logctx.Logger("vault")

// Notification is delivered to every subscriber of a node idx when that
// node, or a node reachable via one of its refs, changes (spec.md §4.E
// "per-subscriber notification fan-out").
type Notification struct {
	NodeIdx  uint32
	RefAdded *uint32 // child idx, non-nil for a ref-add notification
	RefRemoved *uint32
	Changed  bool // true for a SaveNode notification
}

// Mailbox is a bounded per-subscriber notification queue. A full mailbox
// drops the oldest notification rather than blocking the mutator
// (spec.md §4.E "fan-out must never block a mutation on a slow
// subscriber").
type Mailbox chan Notification

const mailboxCapacity = 64

// Store is the Vault: a forest-with-sharing of typed nodes, backed by a
// db.Backend, with per-idx subscription fan-out and transactional
// mutation (spec.md §4.E). Grounded on
// original_source/src/vault/server.rs's subscriber-table-plus-backend
// shape.
type Store struct {
	backend db.Backend

	mu   sync.Mutex
	subs map[uint32][]Mailbox
}

// NewStore wraps backend with subscription and cycle-checking logic.
func NewStore(backend db.Backend) *Store {
	return &Store{backend: backend, subs: make(map[uint32][]Mailbox)}
}

// Subscribe registers a mailbox to receive notifications for idx
// (typically a player's own PlayerInfo/folder nodes, and every node
// reachable from an Age's folders while the player is in that age).
// Unsubscribe must be called on connection teardown.
func (s *Store) Subscribe(idx uint32) Mailbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	mb := make(Mailbox, mailboxCapacity)
	s.subs[idx] = append(s.subs[idx], mb)
	return mb
}

// Unsubscribe removes mb from idx's subscriber list.
func (s *Store) Unsubscribe(idx uint32, mb Mailbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.subs[idx]
	for i, m := range list {
		if m == mb {
			s.subs[idx] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (s *Store) notify(idx uint32, n Notification) {
	s.mu.Lock()
	subs := append([]Mailbox(nil), s.subs[idx]...)
	s.mu.Unlock()

	for _, mb := range subs {
		select {
		case mb <- n:
		default:
			// Drop the oldest pending notification to make room rather
			// than block the mutator on a slow reader.
			select {
			case <-mb:
			default:
			}
			select {
			case mb <- n:
			default:
			}
		}
	}
}

// CreateNode persists a new node and returns its assigned idx.
func (s *Store) CreateNode(ctx context.Context, n *Node) (uint32, error) {
	idx, err := s.backend.CreateNode(ctx, n)
	if err != nil {
		return 0, moulerr.New(moulerr.DBError, "vault.CreateNode", err)
	}
	return idx, nil
}

// FetchNode returns a copy of the node at idx.
func (s *Store) FetchNode(ctx context.Context, idx uint32) (*Node, error) {
	n, err := s.backend.FetchNode(ctx, idx)
	if err != nil {
		return nil, moulerr.New(moulerr.DBError, "vault.FetchNode", err)
	}
	return n, nil
}

// SaveNode persists a mutated node (invariant: NodeType and Idx must be
// unchanged from the stored version; callers must have obtained n via
// FetchNode) and notifies idx's subscribers.
func (s *Store) SaveNode(ctx context.Context, n *Node) error {
	if err := s.backend.SaveNode(ctx, n); err != nil {
		return moulerr.New(moulerr.DBError, "vault.SaveNode", err)
	}
	s.notify(n.Idx, Notification{NodeIdx: n.Idx, Changed: true})
	return nil
}

// DeleteNode removes idx and its refs, and notifies idx's own
// subscribers so any connection still watching it (e.g. a stale
// AcctPlayerInfo subscription) can tear down cleanly.
func (s *Store) DeleteNode(ctx context.Context, idx uint32) error {
	if err := s.backend.DeleteNode(ctx, idx); err != nil {
		return moulerr.New(moulerr.DBError, "vault.DeleteNode", err)
	}
	s.notify(idx, Notification{NodeIdx: idx})
	return nil
}

// FindNodes returns the idx of every node matching template's populated
// fields exactly.
func (s *Store) FindNodes(ctx context.Context, template *Node) ([]uint32, error) {
	idxs, err := s.backend.FindNodes(ctx, template)
	if err != nil {
		return nil, moulerr.New(moulerr.DBError, "vault.FindNodes", err)
	}
	return idxs, nil
}

// AddRef creates parentIdx -> childIdx and notifies parentIdx's
// subscribers, after verifying the new edge would not create a cycle
// (invariant iii: the node graph, restricted to ref edges, is acyclic).
func (s *Store) AddRef(ctx context.Context, parentIdx, childIdx, ownerIdx uint32) error {
	if parentIdx == childIdx {
		return moulerr.New(moulerr.Protocol, "vault.AddRef: self-reference", nil)
	}
	creates, err := s.wouldCreateCycle(ctx, parentIdx, childIdx)
	if err != nil {
		return err
	}
	if creates {
		return moulerr.New(moulerr.Protocol, "vault.AddRef: would create a cycle", nil)
	}

	if err := s.backend.AddRef(ctx, db.NodeRef{ParentIdx: parentIdx, ChildIdx: childIdx, OwnerIdx: ownerIdx, Seen: true}); err != nil {
		return moulerr.New(moulerr.DBError, "vault.AddRef", err)
	}
	child := childIdx
	s.notify(parentIdx, Notification{NodeIdx: parentIdx, RefAdded: &child})
	return nil
}

// wouldCreateCycle runs a depth-first search from childIdx looking for
// parentIdx; if found, adding parentIdx -> childIdx would close a cycle
// (spec.md §4.E invariant iii).
func (s *Store) wouldCreateCycle(ctx context.Context, parentIdx, childIdx uint32) (bool, error) {
	visited := make(map[uint32]bool)
	stack := []uint32{childIdx}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == parentIdx {
			return true, nil
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		refs, err := s.backend.RefsByParent(ctx, cur)
		if err != nil {
			return false, moulerr.New(moulerr.DBError, "vault.wouldCreateCycle", err)
		}
		for _, r := range refs {
			stack = append(stack, r.ChildIdx)
		}
	}
	return false, nil
}

// RemoveRef deletes parentIdx -> childIdx and notifies parentIdx's
// subscribers. Removing a nonexistent edge returns NotFound and fires
// no notification (spec.md §4.E, §8 law: RemoveRef of a nonexistent
// edge is a no-op, not a silent success).
func (s *Store) RemoveRef(ctx context.Context, parentIdx, childIdx uint32) error {
	removed, err := s.backend.RemoveRef(ctx, parentIdx, childIdx)
	if err != nil {
		return moulerr.New(moulerr.DBError, "vault.RemoveRef", err)
	}
	if !removed {
		return moulerr.New(moulerr.NotFound, "vault.RemoveRef: no such edge", nil)
	}
	child := childIdx
	s.notify(parentIdx, Notification{NodeIdx: parentIdx, RefRemoved: &child})
	return nil
}

// FetchResult is the de-duplicated node and edge set FetchTree returns.
type FetchResult struct {
	Nodes []uint32
	Edges []db.NodeRef
}

// FetchTree walks the ref graph from rootIdx down to maxDepth levels,
// returning every reachable node exactly once along with every edge
// traversed to reach it (spec.md §4.E "FetchTree: root idx, max depth ->
// de-duplicated node + edge set"). maxDepth <= 0 returns just rootIdx
// with no edges. A node already on the current path being revisited is a
// genuine cycle in stored data (AddRef's own DFS check should have
// prevented one from ever being created, so finding one here means the
// backend's data is corrupt) and fails with Corruption; a node reached
// again through a different parent is the ordinary sharing forest and is
// recorded once, not treated as an error.
func (s *Store) FetchTree(ctx context.Context, rootIdx uint32, maxDepth int) (*FetchResult, error) {
	visited := map[uint32]bool{rootIdx: true}
	onPath := map[uint32]bool{rootIdx: true}
	out := &FetchResult{Nodes: []uint32{rootIdx}}

	var walk func(idx uint32, depth int) error
	walk = func(idx uint32, depth int) error {
		if depth >= maxDepth {
			return nil
		}
		refs, err := s.backend.RefsByParent(ctx, idx)
		if err != nil {
			return moulerr.New(moulerr.DBError, "vault.FetchTree", err)
		}
		for _, r := range refs {
			if onPath[r.ChildIdx] {
				return moulerr.New(moulerr.Corruption, "vault.FetchTree: cycle detected", nil)
			}
			out.Edges = append(out.Edges, r)
			if visited[r.ChildIdx] {
				continue
			}
			visited[r.ChildIdx] = true
			out.Nodes = append(out.Nodes, r.ChildIdx)
			onPath[r.ChildIdx] = true
			if err := walk(r.ChildIdx, depth+1); err != nil {
				return err
			}
			onPath[r.ChildIdx] = false
		}
		return nil
	}
	if err := walk(rootIdx, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// ChildRefs returns the full ref records (not just child idx) for every
// direct child of parentIdx, for callers that need OwnerIdx/Seen too
// (e.g. VaultFetchNodeRefs's flattened reply, spec.md §4.D).
func (s *Store) ChildRefs(ctx context.Context, parentIdx uint32) ([]db.NodeRef, error) {
	refs, err := s.backend.RefsByParent(ctx, parentIdx)
	if err != nil {
		return nil, moulerr.New(moulerr.DBError, "vault.ChildRefs", err)
	}
	return refs, nil
}

// Children returns the idx of every direct child of parentIdx.
func (s *Store) Children(ctx context.Context, parentIdx uint32) ([]uint32, error) {
	refs, err := s.backend.RefsByParent(ctx, parentIdx)
	if err != nil {
		return nil, moulerr.New(moulerr.DBError, "vault.Children", err)
	}
	out := make([]uint32, len(refs))
	for i, r := range refs {
		out[i] = r.ChildIdx
	}
	return out, nil
}

// Parents returns the idx of every direct parent of childIdx (a node
// may have more than one, per the sharing forest, invariant iv).
func (s *Store) Parents(ctx context.Context, childIdx uint32) ([]uint32, error) {
	refs, err := s.backend.RefsByChild(ctx, childIdx)
	if err != nil {
		return nil, moulerr.New(moulerr.DBError, "vault.Parents", err)
	}
	out := make([]uint32, len(refs))
	for i, r := range refs {
		out[i] = r.ParentIdx
	}
	return out, nil
}

// ProvisionSkeleton creates a Folder node for every StandardNodeKind in
// NewSystemSkeleton(ownerType) and refs it under rootIdx, returning a map
// from kind to the new child's idx. Used when creating a new Player or
// Age vault subtree (SPEC_FULL.md §4.E).
func (s *Store) ProvisionSkeleton(ctx context.Context, rootIdx uint32, ownerType NodeType, ownerIdx uint32) (map[StandardNodeKind]uint32, error) {
	out := make(map[StandardNodeKind]uint32)
	for _, kind := range NewSystemSkeleton(ownerType) {
		child := &Node{NodeType: NodeTypeFolder}
		child.SetInt32(1, int32(kind))
		idx, err := s.CreateChild(ctx, rootIdx, child, ownerIdx)
		if err != nil {
			return nil, err
		}
		out[kind] = idx
	}
	return out, nil
}

// CreateChild is a convenience wrapper that creates child under
// parentIdx in one transaction-equivalent step (spec.md §4.E
// "transactional mutation": the node and the ref it needs to be visible
// are created together or not at all).
func (s *Store) CreateChild(ctx context.Context, parentIdx uint32, child *Node, ownerIdx uint32) (uint32, error) {
	idx, err := s.CreateNode(ctx, child)
	if err != nil {
		return 0, err
	}
	if err := s.AddRef(ctx, parentIdx, idx, ownerIdx); err != nil {
		log.Warnw("rolling back orphaned node after failed AddRef", "idx", idx, "err", err)
		_ = s.backend.DeleteNode(ctx, idx)
		return 0, err
	}
	return idx, nil
}
