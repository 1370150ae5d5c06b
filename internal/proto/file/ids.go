// Package file implements the File channel's message table and
// handlers (spec.md §4.D "File (20)": build id check, manifest request,
// chunked file download). Grounded directly on
// original_source/src/file_srv/messages.rs's CliToFile/FileToCli enums
// for id numbering and field shapes, and on original_source/src/
// file_srv/server.rs for which operation maps to which manifest.Manager
// call.
package file

// Client -> server message ids (original_source CliToFile).
const (
	MsgPingRequest      uint16 = 0
	MsgBuildIdRequest   uint16 = 10
	MsgManifestRequest  uint16 = 20
	MsgDownloadRequest  uint16 = 21
	MsgManifestEntryAck uint16 = 22
	MsgDownloadChunkAck uint16 = 23
)

// Server -> client message ids (original_source FileToCli).
const (
	MsgPingReply         uint16 = 0
	MsgBuildIdReply      uint16 = 10
	MsgBuildIdUpdate     uint16 = 11
	MsgManifestReply     uint16 = 20
	MsgFileDownloadReply uint16 = 21
)
