// Package db defines the storage interface shared by the Vault and Age
// instance manager (spec.md §6.4), and provides memory, sqlite,
// postgres, and mysql implementations of it. Grounded on the node's
// db_interface.rs trait shape and on the teacher's sqlx-based
// node/sqldb/mysql.go persistence layer.
package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/model"
)

var log = logctx.Logger("db")

// NodeRef is a forest edge: parent owns (or merely points to) child,
// optionally tagged with who created the ref and whether it is a
// sharing/"owner" edge as opposed to a structural folder edge
// (spec.md §3.2, §4.E "refs may be shared: a node can have more than
// one parent").
type NodeRef struct {
	ParentIdx uint32 `db:"parent_idx"`
	ChildIdx  uint32 `db:"child_idx"`
	OwnerIdx  uint32 `db:"owner_idx"`
	Seen      bool   `db:"seen"`
}

// SDLRow is one saved, versioned SDL blob (spec.md §4.F).
type SDLRow struct {
	Name      string
	AgeUUID   uuid.UUID // zero UUID for a global SDL row
	Version   int
	Blob      []byte
	SavedTime time.Time
}

// ServerRecord is a currently-registered Age instance (spec.md §4.F
// "age instance manager"), keyed by instance UUID.
type ServerRecord struct {
	InstanceUUID uuid.UUID
	AgeFilename  string
	AgeInstName  string
	SequenceNum  uint32
	Temporary    bool
}

// Backend is the storage seam every component that needs durability
// goes through: the Vault, the Age instance manager's SDL/server
// bookkeeping, and Auth's account/score lookups (spec.md §6.4). All
// methods are safe for concurrent use; callers do not hold any lock
// across a Backend call.
type Backend interface {
	// Accounts
	AccountByName(ctx context.Context, name string) (*model.Account, error)
	AccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	CreateAccount(ctx context.Context, acc *model.Account) error
	APITokenLookup(ctx context.Context, token string) (*model.APIToken, error)

	// Players
	PlayersForAccount(ctx context.Context, accountID uuid.UUID) ([]model.Player, error)
	CreatePlayer(ctx context.Context, p *model.Player) error
	DeletePlayer(ctx context.Context, accountID uuid.UUID, playerIdx uint32) error

	// Scores
	ScoreByID(ctx context.Context, id uint32) (*model.Score, error)
	ScoresForOwner(ctx context.Context, ownerIdx uint32, scoreType int32) ([]model.Score, error)
	CreateScore(ctx context.Context, s *model.Score) (uint32, error)
	DeleteScore(ctx context.Context, id uint32) error
	AddScorePoints(ctx context.Context, id uint32, delta int32) error
	SetScorePoints(ctx context.Context, id uint32, points int32) error

	// Vault nodes and refs. Node.Idx of 0 on FetchNode/SaveNode/CreateNode
	// input means "not yet assigned"; CreateNode returns the assigned idx.
	CreateNode(ctx context.Context, n *model.Node) (uint32, error)
	FetchNode(ctx context.Context, idx uint32) (*model.Node, error)
	SaveNode(ctx context.Context, n *model.Node) error
	DeleteNode(ctx context.Context, idx uint32) error
	FindNodes(ctx context.Context, template *model.Node) ([]uint32, error)

	AddRef(ctx context.Context, ref NodeRef) error
	// RemoveRef deletes the parentIdx -> childIdx edge, reporting whether
	// an edge was actually present and removed (spec.md §4.E "RemoveRef
	// of a nonexistent edge returns NotFound without side effect").
	RemoveRef(ctx context.Context, parentIdx, childIdx uint32) (bool, error)
	RefsByParent(ctx context.Context, parentIdx uint32) ([]NodeRef, error)
	RefsByChild(ctx context.Context, childIdx uint32) ([]NodeRef, error)

	// SDL
	SDLGlobalGet(ctx context.Context, name string) (*SDLRow, error)
	SDLGlobalPut(ctx context.Context, row *SDLRow) error
	SDLAgeGet(ctx context.Context, ageUUID uuid.UUID, name string) (*SDLRow, error)
	SDLAgePut(ctx context.Context, row *SDLRow) error

	// Age instance server records
	ServerUpsert(ctx context.Context, rec *ServerRecord) error
	ServerDelete(ctx context.Context, instanceUUID uuid.UUID) error
	ServerByInstance(ctx context.Context, instanceUUID uuid.UUID) (*ServerRecord, error)
	ServerByFilenameAndInst(ctx context.Context, ageFilename, ageInstName string) (*ServerRecord, error)

	// Close releases any pooled resources (connection pools, handles).
	Close() error
}

// Open dispatches to the configured backend kind (spec.md §6.4: "none"
// selects the in-memory backend, "sqlite"/"postgres"/"mysql" select the
// corresponding SQL driver). dsn is ignored for "none".
func Open(kind, dsn string) (Backend, error) {
	log.Infow("opening backend", "kind", kind)
	switch kind {
	case "", "none":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(dsn)
	case "mysql":
		return OpenMySQL(dsn)
	default:
		return nil, errUnknownBackend(kind)
	}
}
