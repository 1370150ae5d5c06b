package db

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/model"
)

// Memory is a process-local Backend for tests and single-process
// deployments where durability across restarts does not matter
// (spec.md §6.4 "none" backend). All state lives behind a single mutex;
// the store is small enough (tens of thousands of nodes at most for a
// hobby shard) that this is not a contention problem in practice.
type Memory struct {
	mu sync.Mutex

	accountsByID   map[uuid.UUID]*model.Account
	accountsByName map[string]uuid.UUID
	tokens         map[string]*model.APIToken

	players map[uuid.UUID][]model.Player

	scores    map[uint32]*model.Score
	nextScore uint32

	nodes    map[uint32]*model.Node
	nextNode uint32

	refsByParent map[uint32][]NodeRef
	refsByChild  map[uint32][]NodeRef

	sdlGlobal map[string]*SDLRow
	sdlAge    map[sdlAgeKey]*SDLRow

	servers map[uuid.UUID]*ServerRecord
}

type sdlAgeKey struct {
	age  uuid.UUID
	name string
}

// NewMemory constructs an empty in-memory Backend.
func NewMemory() *Memory {
	return &Memory{
		accountsByID:   make(map[uuid.UUID]*model.Account),
		accountsByName: make(map[string]uuid.UUID),
		tokens:         make(map[string]*model.APIToken),
		players:        make(map[uuid.UUID][]model.Player),
		scores:         make(map[uint32]*model.Score),
		nextScore:      1,
		nodes:          make(map[uint32]*model.Node),
		nextNode:       model.FirstUserIdx,
		refsByParent:   make(map[uint32][]NodeRef),
		refsByChild:    make(map[uint32][]NodeRef),
		sdlGlobal:      make(map[string]*SDLRow),
		sdlAge:         make(map[sdlAgeKey]*SDLRow),
		servers:        make(map[uuid.UUID]*ServerRecord),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) AccountByName(_ context.Context, name string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.accountsByName[strings.ToLower(name)]
	if !ok {
		return nil, errNotFound("db.AccountByName")
	}
	acc := *m.accountsByID[id]
	return &acc, nil
}

func (m *Memory) AccountByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accountsByID[id]
	if !ok {
		return nil, errNotFound("db.AccountByID")
	}
	cp := *acc
	return &cp, nil
}

func (m *Memory) CreateAccount(_ context.Context, acc *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(acc.Name)
	if _, exists := m.accountsByName[key]; exists {
		return errConflict("db.CreateAccount")
	}
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	cp := *acc
	m.accountsByID[acc.ID] = &cp
	m.accountsByName[key] = acc.ID
	return nil
}

func (m *Memory) APITokenLookup(_ context.Context, token string) (*model.APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, errNotFound("db.APITokenLookup")
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) PlayersForAccount(_ context.Context, accountID uuid.UUID) ([]model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.players[accountID]
	out := make([]model.Player, len(src))
	copy(out, src)
	return out, nil
}

func (m *Memory) CreatePlayer(_ context.Context, p *model.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.players[p.AccountID] {
		if existing.PlayerIdx == p.PlayerIdx {
			return errConflict("db.CreatePlayer")
		}
	}
	m.players[p.AccountID] = append(m.players[p.AccountID], *p)
	return nil
}

func (m *Memory) DeletePlayer(_ context.Context, accountID uuid.UUID, playerIdx uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.players[accountID]
	for i, p := range list {
		if p.PlayerIdx == playerIdx {
			m.players[accountID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return errNotFound("db.DeletePlayer")
}

func (m *Memory) ScoreByID(_ context.Context, id uint32) (*model.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[id]
	if !ok {
		return nil, errNotFound("db.ScoreByID")
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) DeleteScore(_ context.Context, id uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scores[id]; !ok {
		return errNotFound("db.DeleteScore")
	}
	delete(m.scores, id)
	return nil
}

func (m *Memory) ScoresForOwner(_ context.Context, ownerIdx uint32, scoreType int32) ([]model.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Score
	for _, s := range m.scores {
		if s.OwnerIdx == ownerIdx && (scoreType < 0 || s.Type == scoreType) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *Memory) CreateScore(_ context.Context, s *model.Score) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextScore
	m.nextScore++
	cp := *s
	cp.ID = id
	m.scores[id] = &cp
	return id, nil
}

func (m *Memory) AddScorePoints(_ context.Context, id uint32, delta int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[id]
	if !ok {
		return errNotFound("db.AddScorePoints")
	}
	s.Points += delta
	return nil
}

func (m *Memory) SetScorePoints(_ context.Context, id uint32, points int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[id]
	if !ok {
		return errNotFound("db.SetScorePoints")
	}
	s.Points = points
	return nil
}

func (m *Memory) CreateNode(_ context.Context, n *model.Node) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.nextNode
	m.nextNode++
	cp := n.Clone()
	cp.Idx = idx
	m.nodes[idx] = cp
	return idx, nil
}

func (m *Memory) FetchNode(_ context.Context, idx uint32) (*model.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[idx]
	if !ok {
		return nil, errNotFound("db.FetchNode")
	}
	return n.Clone(), nil
}

func (m *Memory) SaveNode(_ context.Context, n *model.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[n.Idx]; !ok {
		return errNotFound("db.SaveNode")
	}
	m.nodes[n.Idx] = n.Clone()
	return nil
}

// DeleteNode removes idx and every ref that names it as parent or
// child, matching SaveNode's "caller must have obtained n via
// FetchNode" contract: the caller is responsible for deciding whether
// a node with remaining parents may be deleted.
func (m *Memory) DeleteNode(_ context.Context, idx uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[idx]; !ok {
		return errNotFound("db.DeleteNode")
	}
	delete(m.nodes, idx)
	for _, r := range m.refsByParent[idx] {
		m.refsByChild[r.ChildIdx] = removeRef(m.refsByChild[r.ChildIdx], idx, false)
	}
	delete(m.refsByParent, idx)
	for _, r := range m.refsByChild[idx] {
		m.refsByParent[r.ParentIdx] = removeRef(m.refsByParent[r.ParentIdx], idx, true)
	}
	delete(m.refsByChild, idx)
	return nil
}

// FindNodes does a linear scan comparing the fields set in template
// against stored nodes: node type, creator idx/uuid, and every numbered
// Int32/Uint32/UUID/String/IString/Text/Blob slot. CreateTime,
// ModifyTime, CreateAgeName and CreateAgeUUID are not compared even when
// set. This is adequate for the in-memory backend; SQL backends
// prefilter by node type and then use the same comparison.
func (m *Memory) FindNodes(_ context.Context, template *model.Node) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint32
	for idx, n := range m.nodes {
		if nodeMatchesTemplate(n, template) {
			out = append(out, idx)
		}
	}
	return out, nil
}

func nodeMatchesTemplate(n, tmpl *model.Node) bool {
	if tmpl.Has(model.FieldNodeType) && n.NodeType != tmpl.NodeType {
		return false
	}
	if tmpl.Has(model.FieldCreatorIdx) && n.CreatorIdx != tmpl.CreatorIdx {
		return false
	}
	if tmpl.Has(model.FieldCreatorUUID) && n.CreatorUUID != tmpl.CreatorUUID {
		return false
	}
	for i := 1; i <= 4; i++ {
		if v, ok := tmpl.Int32At(i); ok {
			if nv, nok := n.Int32At(i); !nok || nv != v {
				return false
			}
		}
		if v, ok := tmpl.Uint32At(i); ok {
			if nv, nok := n.Uint32At(i); !nok || nv != v {
				return false
			}
		}
		if v, ok := tmpl.UUIDAt(i); ok {
			if nv, nok := n.UUIDAt(i); !nok || nv != v {
				return false
			}
		}
	}
	for i := 1; i <= 6; i++ {
		if v, ok := tmpl.StringAt(i); ok {
			if nv, nok := n.StringAt(i); !nok || nv != v {
				return false
			}
		}
	}
	for i := 1; i <= 2; i++ {
		if v, ok := tmpl.IStringAt(i); ok {
			nv, nok := n.IStringAt(i)
			if !nok || !strings.EqualFold(nv, v) {
				return false
			}
		}
		if v, ok := tmpl.TextAt(i); ok {
			if nv, nok := n.TextAt(i); !nok || nv != v {
				return false
			}
		}
		if v, ok := tmpl.BlobAt(i); ok {
			if nv, nok := n.BlobAt(i); !nok || !bytes.Equal(nv, v) {
				return false
			}
		}
	}
	return true
}

func (m *Memory) AddRef(_ context.Context, ref NodeRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.refsByParent[ref.ParentIdx] {
		if r.ChildIdx == ref.ChildIdx {
			return nil // idempotent
		}
	}
	m.refsByParent[ref.ParentIdx] = append(m.refsByParent[ref.ParentIdx], ref)
	m.refsByChild[ref.ChildIdx] = append(m.refsByChild[ref.ChildIdx], ref)
	return nil
}

func (m *Memory) RemoveRef(_ context.Context, parentIdx, childIdx uint32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.refsByParent[parentIdx])
	m.refsByParent[parentIdx] = removeRef(m.refsByParent[parentIdx], childIdx, true)
	removed := len(m.refsByParent[parentIdx]) != before
	m.refsByChild[childIdx] = removeRef(m.refsByChild[childIdx], parentIdx, false)
	return removed, nil
}

func removeRef(list []NodeRef, idx uint32, byChild bool) []NodeRef {
	out := list[:0]
	for _, r := range list {
		match := r.ChildIdx == idx
		if !byChild {
			match = r.ParentIdx == idx
		}
		if !match {
			out = append(out, r)
		}
	}
	return out
}

func (m *Memory) RefsByParent(_ context.Context, parentIdx uint32) ([]NodeRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.refsByParent[parentIdx]
	out := make([]NodeRef, len(src))
	copy(out, src)
	return out, nil
}

func (m *Memory) RefsByChild(_ context.Context, childIdx uint32) ([]NodeRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.refsByChild[childIdx]
	out := make([]NodeRef, len(src))
	copy(out, src)
	return out, nil
}

func (m *Memory) SDLGlobalGet(_ context.Context, name string) (*SDLRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.sdlGlobal[name]
	if !ok {
		return nil, errNotFound("db.SDLGlobalGet")
	}
	cp := *row
	return &cp, nil
}

func (m *Memory) SDLGlobalPut(_ context.Context, row *SDLRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *row
	m.sdlGlobal[row.Name] = &cp
	return nil
}

func (m *Memory) SDLAgeGet(_ context.Context, ageUUID uuid.UUID, name string) (*SDLRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.sdlAge[sdlAgeKey{ageUUID, name}]
	if !ok {
		return nil, errNotFound("db.SDLAgeGet")
	}
	cp := *row
	return &cp, nil
}

func (m *Memory) SDLAgePut(_ context.Context, row *SDLRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *row
	m.sdlAge[sdlAgeKey{row.AgeUUID, row.Name}] = &cp
	return nil
}

func (m *Memory) ServerUpsert(_ context.Context, rec *ServerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.servers[rec.InstanceUUID] = &cp
	return nil
}

func (m *Memory) ServerDelete(_ context.Context, instanceUUID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.servers, instanceUUID)
	return nil
}

func (m *Memory) ServerByInstance(_ context.Context, instanceUUID uuid.UUID) (*ServerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.servers[instanceUUID]
	if !ok {
		return nil, errNotFound("db.ServerByInstance")
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) ServerByFilenameAndInst(_ context.Context, ageFilename, ageInstName string) (*ServerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.servers {
		if rec.AgeFilename == ageFilename && rec.AgeInstName == ageInstName {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, errNotFound("db.ServerByFilenameAndInst")
}
