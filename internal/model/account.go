// Package model holds the data types shared across the DB backend,
// Vault, and Age instance manager (spec.md §3): accounts, API tokens,
// scores, vault nodes and refs, SDL rows, and server (age instance)
// records.
package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountFlags is a bitmask (spec.md §3.1).
type AccountFlags uint32

const (
	AccountAdmin       AccountFlags = 1 << 0
	AccountBetaTester  AccountFlags = 1 << 1
	AccountBanned      AccountFlags = 1 << 2
)

// Has reports whether all bits of want are set.
func (f AccountFlags) Has(want AccountFlags) bool { return f&want == want }

// Account is a login identity (spec.md §3.1).
type Account struct {
	ID         uuid.UUID
	Name       string // unique, case-insensitive
	PassHash   [20]byte
	Flags      AccountFlags
	BillingTier int
}

// APIToken is an opaque out-of-band admin credential tied to an account
// (spec.md §3.1).
type APIToken struct {
	AccountID uuid.UUID
	Token     string
	Comment   string
}

// Score is an owned, named point value (spec.md §3.1). Mutations
// (Add/Set) are atomic at the DB backend.
type Score struct {
	ID         uint32
	OwnerIdx   uint32
	Type       int32
	Name       string
	Points     int32
	CreateTime time.Time
}

// Player is a lightweight reference to one of an account's playable
// avatars: a vault Player node plus its PlayerInfo node.
type Player struct {
	AccountID   uuid.UUID
	PlayerIdx   uint32
	PlayerName  string
	Explorer    bool
}
