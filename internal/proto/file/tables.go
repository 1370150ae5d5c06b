package file

import "github.com/zrax/moulars/internal/proto"

const fixedPathWidth = 260 * 2 // original_source reads a 260-UTF16-unit fixed buffer

// RequestTable decodes Cli2File messages.
var RequestTable = proto.Table{
	MsgPingRequest: {ID: MsgPingRequest, Name: "PingRequest", Fields: []proto.Field{
		{Name: "ping_time", Kind: proto.FieldUint32},
	}},
	MsgBuildIdRequest: {ID: MsgBuildIdRequest, Name: "BuildIdRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
	}},
	MsgManifestRequest: {ID: MsgManifestRequest, Name: "ManifestRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "manifest_name", Kind: proto.FieldFixedBuffer, Size: fixedPathWidth},
		{Name: "build_id", Kind: proto.FieldUint32},
	}},
	MsgDownloadRequest: {ID: MsgDownloadRequest, Name: "DownloadRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "filename", Kind: proto.FieldFixedBuffer, Size: fixedPathWidth},
		{Name: "build_id", Kind: proto.FieldUint32},
	}},
	MsgManifestEntryAck: {ID: MsgManifestEntryAck, Name: "ManifestEntryAck", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "reader_id", Kind: proto.FieldUint32},
	}},
	MsgDownloadChunkAck: {ID: MsgDownloadChunkAck, Name: "DownloadChunkAck", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "reader_id", Kind: proto.FieldUint32},
	}},
}

// ReplyTable encodes File -> client messages.
var ReplyTable = proto.Table{
	MsgPingReply: {ID: MsgPingReply, Name: "PingReply", Fields: []proto.Field{
		{Name: "ping_time", Kind: proto.FieldUint32},
	}},
	MsgBuildIdReply: {ID: MsgBuildIdReply, Name: "BuildIdReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldUint32},
		{Name: "build_id", Kind: proto.FieldUint32},
	}},
	MsgBuildIdUpdate: {ID: MsgBuildIdUpdate, Name: "BuildIdUpdate", Fields: []proto.Field{
		{Name: "build_id", Kind: proto.FieldUint32},
	}},
	MsgManifestReply: {ID: MsgManifestReply, Name: "ManifestReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldUint32},
		{Name: "reader_id", Kind: proto.FieldUint32},
		{Name: "manifest_len", Kind: proto.FieldUint32},
		{Name: "manifest", Kind: proto.FieldVariableBuffer, CountFrom: "manifest_len"},
	}},
	MsgFileDownloadReply: {ID: MsgFileDownloadReply, Name: "FileDownloadReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldUint32},
		{Name: "reader_id", Kind: proto.FieldUint32},
		{Name: "file_size", Kind: proto.FieldUint32},
		{Name: "data_len", Kind: proto.FieldUint32},
		{Name: "file_data", Kind: proto.FieldVariableBuffer, CountFrom: "data_len"},
	}},
}
