package game

import "github.com/zrax/moulars/internal/proto"

// RequestTable decodes Cli2Game messages.
var RequestTable = proto.Table{
	MsgPingRequest: {ID: MsgPingRequest, Name: "PingRequest", Fields: []proto.Field{
		{Name: "ping_time", Kind: proto.FieldUint32},
	}},
	MsgJoinAgeRequest: {ID: MsgJoinAgeRequest, Name: "JoinAgeRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "age_instance_id", Kind: proto.FieldUUID},
		{Name: "account_id", Kind: proto.FieldUUID},
		{Name: "player_int", Kind: proto.FieldUint32},
	}},
	MsgLeaveAgeRequest: {ID: MsgLeaveAgeRequest, Name: "LeaveAgeRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
	}},
	MsgPropagateBuffer: {ID: MsgPropagateBuffer, Name: "PropagateBuffer", Fields: []proto.Field{
		{Name: "buffer_len", Kind: proto.FieldUint32},
		{Name: "buffer", Kind: proto.FieldVariableBuffer, CountFrom: "buffer_len"},
	}},
	MsgSDLStateUpdate: {ID: MsgSDLStateUpdate, Name: "SDLStateUpdate", Fields: []proto.Field{
		{Name: "descriptor", Kind: proto.FieldSafeString},
		{Name: "object_key", Kind: proto.FieldSafeString},
		{Name: "version", Kind: proto.FieldUint32},
		{Name: "blob_len", Kind: proto.FieldUint32},
		{Name: "blob", Kind: proto.FieldVariableBuffer, CountFrom: "blob_len"},
	}},
}

// ReplyTable encodes Game -> client messages.
var ReplyTable = proto.Table{
	MsgPingReply: {ID: MsgPingReply, Name: "PingReply", Fields: []proto.Field{
		{Name: "ping_time", Kind: proto.FieldUint32},
	}},
	MsgJoinAgeReply: {ID: MsgJoinAgeReply, Name: "JoinAgeReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "game_master", Kind: proto.FieldUint8},
	}},
	MsgPropagateBufferOut: {ID: MsgPropagateBufferOut, Name: "PropagateBuffer", Fields: []proto.Field{
		{Name: "buffer_len", Kind: proto.FieldUint32},
		{Name: "buffer", Kind: proto.FieldVariableBuffer, CountFrom: "buffer_len"},
	}},
	MsgSDLStateUpdateOut: {ID: MsgSDLStateUpdateOut, Name: "SDLStateUpdate", Fields: []proto.Field{
		{Name: "descriptor", Kind: proto.FieldSafeString},
		{Name: "object_key", Kind: proto.FieldSafeString},
		{Name: "version", Kind: proto.FieldUint32},
		{Name: "blob_len", Kind: proto.FieldUint32},
		{Name: "blob", Kind: proto.FieldVariableBuffer, CountFrom: "blob_len"},
	}},
}
