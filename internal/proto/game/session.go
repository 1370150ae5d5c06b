package game

import (
	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/age"
)

// Session is the Game channel's per-connection state: which account and
// player are speaking, and which Instance (if any) they have joined
// (spec.md §4.F "Join"/"Leave" hold this for the connection's
// lifetime, mirroring internal/proto/auth.Session's own login state).
type Session struct {
	AccountID uuid.UUID
	PlayerIdx uint32

	Inst     *age.Instance
	MemberID age.MemberID
	GameMaster bool
}

// NewSession constructs an empty, not-yet-joined Session.
func NewSession() *Session {
	return &Session{}
}

// Joined reports whether the session currently belongs to a running
// Instance.
func (s *Session) Joined() bool {
	return s.Inst != nil
}

// Reset clears join state after a Leave or disconnect teardown.
func (s *Session) Reset() {
	s.Inst = nil
	s.MemberID = ""
	s.GameMaster = false
}
