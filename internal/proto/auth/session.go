package auth

import (
	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/manifest"
	"github.com/zrax/moulars/internal/model"
)

// Session is the Auth channel's per-connection state (spec.md §4.D
// "Auth (10)" holds login/selection state across the connection's
// lifetime): the server challenge handed out at ClientRegisterRequest,
// the account once AcctLoginRequest succeeds, its playable avatars, and
// whichever chunked file download is in flight.
type Session struct {
	ServerChallenge uint32

	LoggedIn    bool
	AccountID   uuid.UUID
	AccountFlags model.AccountFlags
	BillingTier int

	Players         []model.Player
	ActivePlayerIdx uint32

	download     *manifest.Download
	downloadTrans uint32
	downloadSeq   uint32
}

// NewSession constructs an empty, not-yet-registered Session.
func NewSession() *Session {
	return &Session{}
}

// PlayerByIdx reports whether playerIdx belongs to this session's
// account, guarding AcctSetPlayerRequest/PlayerDeleteRequest against a
// client naming another account's player (spec.md §4.D "a player
// selection must name one of the logged-in account's own players").
func (s *Session) PlayerByIdx(playerIdx uint32) (model.Player, bool) {
	for _, p := range s.Players {
		if p.PlayerIdx == playerIdx {
			return p, true
		}
	}
	return model.Player{}, false
}

func (s *Session) removePlayer(playerIdx uint32) {
	for i, p := range s.Players {
		if p.PlayerIdx == playerIdx {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			return
		}
	}
}
