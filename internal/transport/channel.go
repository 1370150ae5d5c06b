// Package transport turns a raw TCP stream into a per-channel encrypted
// framed transport: the Connect header, the DH/RC4 handshake, and the
// resulting message-oriented Conn (spec.md §4.C).
package transport

import (
	"github.com/google/uuid"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/wire"
)

// ChannelID is the 1-byte selector read right after TCP accept that
// picks which of the four wire protocols a connection speaks
// (spec.md §4.C, GLOSSARY "Channel").
type ChannelID uint8

const (
	ChannelAuth ChannelID = 10
	ChannelGame ChannelID = 11
	ChannelFile ChannelID = 20
	ChannelGate ChannelID = 22
)

func (c ChannelID) String() string {
	switch c {
	case ChannelAuth:
		return "Cli2Auth"
	case ChannelGame:
		return "Cli2Game"
	case ChannelFile:
		return "Cli2File"
	case ChannelGate:
		return "Cli2Gate"
	default:
		return "Unknown"
	}
}

// RequiresEncryption reports whether the channel runs the DH/RC4
// handshake. The File channel is degenerate: no encryption after
// Connect (spec.md §4.C).
func (c ChannelID) RequiresEncryption() bool {
	return c != ChannelFile
}

// connectHeaderFixedLen is the size, in bytes, of the fixed portion of
// the Connect record shared by every channel: build id, build type,
// branch id, product id.
const connectHeaderFixedLen = 4 + 4 + 4 + 16

// ConnectHeader is the plaintext record sent immediately after the
// channel selector byte (spec.md §4.C). BuildType is additive metadata
// carried from the original moulars implementation
// (SPEC_FULL.md "Connection header validation"); it is read but neither
// logged nor enforced.
type ConnectHeader struct {
	Channel     ChannelID
	HeaderLen   uint8
	BuildID     uint32
	BuildType   uint32
	BranchID    uint32
	ProductID   uuid.UUID
	TargetUUID  uuid.UUID // present only for Auth/Game
	hasTarget   bool
}

// HasTarget reports whether TargetUUID was present on the wire (Auth and
// Game channels carry one; Gate and File do not).
func (h *ConnectHeader) HasTarget() bool { return h.hasTarget }

// ReadConnectHeader reads the header length byte and Connect record
// from r. The channel selector itself must already have been consumed by the
// caller (internal/server's lobby demux owns that byte so it can route
// before constructing a channel-specific reader); pass it in as channel.
func ReadConnectHeader(r *wire.Reader, channel ChannelID) (*ConnectHeader, error) {
	headerLen, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	h := &ConnectHeader{Channel: channel, HeaderLen: headerLen}

	if h.BuildID, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if h.BuildType, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if h.BranchID, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if h.ProductID, err = r.ReadUUID(); err != nil {
		return nil, err
	}

	consumed := 1 + connectHeaderFixedLen
	if channel == ChannelAuth || channel == ChannelGame {
		if h.TargetUUID, err = r.ReadUUID(); err != nil {
			return nil, err
		}
		h.hasTarget = true
		consumed += 16
	}

	if int(headerLen) != consumed {
		return nil, moulerr.New(moulerr.Protocol, "transport.ReadConnectHeader: length mismatch", nil)
	}

	return h, nil
}

// WriteConnectHeader encodes a Connect record, used by tests that play
// the client side of the handshake.
func WriteConnectHeader(w *wire.Writer, h *ConnectHeader) error {
	consumed := 1 + connectHeaderFixedLen
	if h.hasTarget {
		consumed += 16
	}
	if err := w.WriteUint8(uint8(consumed)); err != nil {
		return err
	}
	if err := w.WriteUint32(h.BuildID); err != nil {
		return err
	}
	if err := w.WriteUint32(h.BuildType); err != nil {
		return err
	}
	if err := w.WriteUint32(h.BranchID); err != nil {
		return err
	}
	if err := w.WriteUUID(h.ProductID); err != nil {
		return err
	}
	if h.hasTarget {
		if err := w.WriteUUID(h.TargetUUID); err != nil {
			return err
		}
	}
	return nil
}
