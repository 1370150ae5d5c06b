package age

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/vault"
)

// Manager tracks every running Instance and creates new ones on demand
// (spec.md §4.F, the "age instance manager" as a whole). One Manager is
// shared by the Auth channel (which resolves "age request" to an
// instance's host/port) and the Game channel (which joins/leaves/routes
// through the resolved Instance directly).
type Manager struct {
	backend db.Backend
	store   *vault.Store

	mu        sync.Mutex
	instances map[uuid.UUID]*Instance
}

// NewManager constructs an empty Manager.
func NewManager(backend db.Backend, store *vault.Store) *Manager {
	return &Manager{backend: backend, store: store, instances: make(map[uuid.UUID]*Instance)}
}

// GetOrCreate returns the running Instance for (ageFilename, ageInstName),
// restoring it from the DB's ServerRecord if known, or creating a fresh
// instance otherwise, temporary or not as the temporary argument says
// (spec.md §4.F "age request").
func (m *Manager) GetOrCreate(ctx context.Context, ageFilename, ageInstName string, temporary bool) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, err := m.backend.ServerByFilenameAndInst(ctx, ageFilename, ageInstName); err == nil {
		if inst, ok := m.instances[rec.InstanceUUID]; ok {
			return inst, nil
		}
		inst := m.spawn(rec.InstanceUUID, ageFilename, ageInstName, rec.Temporary)
		return inst, nil
	} else if !moulerr.Is(err, moulerr.NotFound) {
		return nil, moulerr.New(moulerr.DBError, "age.GetOrCreate", err)
	}

	instanceUUID := uuid.New()
	rec := &db.ServerRecord{InstanceUUID: instanceUUID, AgeFilename: ageFilename, AgeInstName: ageInstName, Temporary: temporary}
	if err := m.backend.ServerUpsert(ctx, rec); err != nil {
		return nil, moulerr.New(moulerr.DBError, "age.GetOrCreate", err)
	}
	return m.spawn(instanceUUID, ageFilename, ageInstName, temporary), nil
}

// ByInstanceUUID returns the running Instance for an already-known
// instance uuid, e.g. when a Game-channel client reconnects to an age it
// was already routed to.
func (m *Manager) ByInstanceUUID(instanceUUID uuid.UUID) (*Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[instanceUUID]
	return inst, ok
}

func (m *Manager) spawn(instanceUUID uuid.UUID, ageFilename, ageInstName string, temporary bool) *Instance {
	inst := NewInstance(m.backend, instanceUUID, ageFilename, ageInstName, temporary, m.remove)
	m.instances[instanceUUID] = inst
	return inst
}

func (m *Manager) remove(inst *Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, inst.InstanceUUID)
}

// Shutdown stops every running instance (server shutdown teardown,
// spec.md §5 "Cancellation").
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inst := range m.instances {
		inst.Stop()
	}
}
