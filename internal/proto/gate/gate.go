// Package gate implements the Gate channel's message table and
// handlers (spec.md §4.D "Gate (22)"): ping, and the two IP-address
// lookups that are a freshly-connected client's only way to learn the
// File and Auth server endpoints. Grounded directly on
// original_source/src/gate_keeper/messages.rs's ClientMsgId/ServerMsgId
// wire shape and server.rs's request/reply pairing.
package gate

import (
	"github.com/zrax/moulars/internal/proto"
)

// Client -> server message ids (original_source ClientMsgId).
const (
	MsgPingRequest               uint16 = 0
	MsgFileServIPAddressRequest  uint16 = 1
	MsgAuthServIPAddressRequest  uint16 = 2
)

// Server -> client message ids (original_source ServerMsgId).
const (
	MsgPingReply               uint16 = 0
	MsgFileServIPAddressReply  uint16 = 1
	MsgAuthServIPAddressReply  uint16 = 2
)

// RequestTable decodes Cli2Gate messages.
var RequestTable = proto.Table{
	MsgPingRequest: {
		ID: MsgPingRequest, Name: "PingRequest",
		Fields: []proto.Field{
			{Name: "trans_id", Kind: proto.FieldUint32},
			{Name: "ping_time", Kind: proto.FieldUint32},
			{Name: "payload_len", Kind: proto.FieldUint32},
			{Name: "payload", Kind: proto.FieldVariableBuffer, CountFrom: "payload_len"},
		},
	},
	MsgFileServIPAddressRequest: {
		ID: MsgFileServIPAddressRequest, Name: "FileServIpAddressRequest",
		Fields: []proto.Field{
			{Name: "trans_id", Kind: proto.FieldUint32},
			{Name: "from_patcher", Kind: proto.FieldUint8},
		},
	},
	MsgAuthServIPAddressRequest: {
		ID: MsgAuthServIPAddressRequest, Name: "AuthServIpAddressRequest",
		Fields: []proto.Field{
			{Name: "trans_id", Kind: proto.FieldUint32},
		},
	},
}

// ReplyTable encodes GateKeeper -> client replies.
var ReplyTable = proto.Table{
	MsgPingReply: {
		ID: MsgPingReply, Name: "PingReply",
		Fields: []proto.Field{
			{Name: "trans_id", Kind: proto.FieldUint32},
			{Name: "ping_time", Kind: proto.FieldUint32},
			{Name: "payload_len", Kind: proto.FieldUint32},
			{Name: "payload", Kind: proto.FieldVariableBuffer, CountFrom: "payload_len"},
		},
	},
	MsgFileServIPAddressReply: {
		ID: MsgFileServIPAddressReply, Name: "FileServIpAddressReply",
		Fields: []proto.Field{
			{Name: "trans_id", Kind: proto.FieldUint32},
			{Name: "ip_addr", Kind: proto.FieldUTF16String},
		},
	},
	MsgAuthServIPAddressReply: {
		ID: MsgAuthServIPAddressReply, Name: "AuthServIpAddressReply",
		Fields: []proto.Field{
			{Name: "trans_id", Kind: proto.FieldUint32},
			{Name: "ip_addr", Kind: proto.FieldUTF16String},
		},
	},
}

// Endpoints supplies the externally-resolvable host strings a Gate
// handler replies with (spec.md §4.D "the replies are the externally
// resolvable host strings from config; they are the only mechanism by
// which a client learns the file/auth endpoints").
type Endpoints struct {
	FileServerIP string
	AuthServerIP string
}

// NewDispatch builds the Gate channel's Dispatch bound to eps.
func NewDispatch(eps Endpoints) proto.Dispatch {
	return proto.Dispatch{
		MsgPingRequest: func(msg *proto.Message) (uint16, map[string]any, bool, error) {
			return MsgPingReply, map[string]any{
				"trans_id":    msg.Uint32("trans_id"),
				"ping_time":   msg.Uint32("ping_time"),
				"payload_len": uint32(len(msg.Bytes("payload"))),
				"payload":     msg.Bytes("payload"),
			}, true, nil
		},
		MsgFileServIPAddressRequest: func(msg *proto.Message) (uint16, map[string]any, bool, error) {
			return MsgFileServIPAddressReply, map[string]any{
				"trans_id": msg.Uint32("trans_id"),
				"ip_addr":  eps.FileServerIP,
			}, true, nil
		},
		MsgAuthServIPAddressRequest: func(msg *proto.Message) (uint16, map[string]any, bool, error) {
			return MsgAuthServIPAddressReply, map[string]any{
				"trans_id": msg.Uint32("trans_id"),
				"ip_addr":  eps.AuthServerIP,
			}, true, nil
		},
	}
}
