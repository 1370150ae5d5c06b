// Package game implements the Game channel's message table and
// handlers (spec.md §4.D "Game (11)": join age, leave age, propagate
// plMessage, game manager messages, SDL state update). Unlike Gate,
// Auth, and File, no original_source/src/game_srv reference exists for
// this channel (only gate_keeper/auth_srv/file_srv/vault/sdl/plasma are
// present), so the message numbering here is this repo's own, grounded
// on the table/dispatch convention the other three channels already
// use and on internal/age.Manager/Instance's existing Join/Leave/
// Propagate/UpdateSDL operations, which this package exists to drive.
package game

// Client -> server message ids.
const (
	MsgPingRequest     uint16 = 0
	MsgJoinAgeRequest  uint16 = 1
	MsgLeaveAgeRequest uint16 = 2
	MsgPropagateBuffer uint16 = 3
	MsgSDLStateUpdate  uint16 = 4
)

// Server -> client message ids.
const (
	MsgPingReply          uint16 = 0
	MsgJoinAgeReply       uint16 = 1
	MsgPropagateBufferOut uint16 = 3
	MsgSDLStateUpdateOut  uint16 = 4
)
