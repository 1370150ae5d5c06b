package proto

import (
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/wire"
)

// Handler processes one decoded message and optionally produces a reply
// message id + values to encode back to the same connection. hasReply
// false means "no reply" (e.g. a fire-and-forget propagate message).
type Handler func(msg *Message) (replyID uint16, replyValues map[string]any, hasReply bool, err error)

// Dispatch maps message id to its Handler; one per channel.
type Dispatch map[uint16]Handler

// Serve decodes one message from r using table, looks it up in d, and if
// found and produced a reply, encodes it to w using replyTable. A
// message id present in table but absent from d is a Protocol error,
// matching table's own "absence is fatal" rule (spec.md §4.D).
func Serve(r *wire.Reader, w *wire.Writer, table Table, replyTable Table, d Dispatch) error {
	msg, err := Decode(r, table)
	if err != nil {
		return err
	}
	return dispatchOne(w, replyTable, d, msg)
}

func dispatchOne(w *wire.Writer, replyTable Table, d Dispatch, msg *Message) error {
	h, ok := d[msg.ID]
	if !ok {
		return moulerr.New(moulerr.Protocol, "proto.dispatchOne: no handler for "+msg.Name, nil)
	}
	replyID, replyValues, hasReply, err := h(msg)
	if err != nil {
		return err
	}
	if !hasReply {
		return nil
	}
	return Encode(w, replyTable, replyID, replyValues)
}

