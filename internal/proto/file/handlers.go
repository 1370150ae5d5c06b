package file

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"github.com/zrax/moulars/internal/manifest"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/proto"
)

// Deps bundles the File channel's one dependency: the manifest engine
// that owns build-id checking, manifest assembly, and download path
// resolution (spec.md §4.G).
type Deps struct {
	Manifest *manifest.Manager
}

// Session is the File channel's per-connection state: whichever
// chunked download is in flight, mirroring internal/proto/auth.Session's
// download bookkeeping (spec.md §4.G "Download": one unacknowledged
// chunk outstanding at a time).
type Session struct {
	download      *manifest.Download
	downloadTrans uint32
	downloadSeq   uint32
}

// NewSession constructs an empty Session.
func NewSession() *Session {
	return &Session{}
}

// NewDispatch builds the File channel's Dispatch bound to sess and deps.
func NewDispatch(sess *Session, deps Deps) proto.Dispatch {
	return proto.Dispatch{
		MsgPingRequest:      handlePing,
		MsgBuildIdRequest:   handleBuildIDRequest(deps),
		MsgManifestRequest:  handleManifestRequest(deps),
		MsgDownloadRequest:  handleDownloadRequest(sess, deps),
		MsgManifestEntryAck: handleNoReply,
		MsgDownloadChunkAck: handleDownloadChunkAck(sess),
	}
}

func handleNoReply(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return 0, nil, false, nil
}

func handlePing(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return MsgPingReply, map[string]any{"ping_time": msg.Uint32("ping_time")}, true, nil
}

func handleBuildIDRequest(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		return MsgBuildIdReply, map[string]any{
			"trans_id": transID, "result": uint32(fileResultSuccess), "build_id": deps.Manifest.BuildID(),
		}, true, nil
	}
}

// handleManifestRequest answers with the built manifest for the
// requested name, resolved to a (Flavor, Category) pair by
// parseManifestName (spec.md §4.D "manifest request (by manifest name +
// build id)"). ManifestEntryAck is a no-op: this server sends the whole
// manifest body in one ManifestReply rather than streaming it one entry
// at a time, so there is nothing for the ack to unblock.
func handleManifestRequest(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		name := decodeFixedUTF16(msg.Bytes("manifest_name"))
		flavor, category := parseManifestName(name)

		buf, err := deps.Manifest.ManifestBytes(flavor, string(category))
		if err != nil {
			if moulerr.Is(err, moulerr.NotFound) {
				return MsgManifestReply, map[string]any{
					"trans_id": transID, "result": uint32(fileResultFileNotFound),
					"reader_id": uint32(0), "manifest_len": uint32(0), "manifest": []byte{},
				}, true, nil
			}
			return 0, nil, false, err
		}
		return MsgManifestReply, map[string]any{
			"trans_id": transID, "result": uint32(fileResultSuccess),
			"reader_id": uint32(1), "manifest_len": uint32(len(buf)), "manifest": buf,
		}, true, nil
	}
}

// handleDownloadRequest opens the requested file and sends its first
// chunk; further chunks are pushed one at a time from
// handleDownloadChunkAck as the client acknowledges each one (spec.md
// §4.G "the server does not send chunk N+1 until ACK(N) is received").
func handleDownloadRequest(sess *Session, deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		fail := func(result fileResult) (uint16, map[string]any, bool, error) {
			return MsgFileDownloadReply, map[string]any{
				"trans_id": transID, "result": uint32(result), "reader_id": uint32(0),
				"file_size": uint32(0), "data_len": uint32(0), "file_data": []byte{},
			}, true, nil
		}

		if sess.download != nil {
			_ = sess.download.Close()
			sess.download = nil
		}
		filename := decodeFixedUTF16(msg.Bytes("filename"))
		dl, err := deps.Manifest.OpenFileDownload(filename, nil)
		if err != nil {
			return fail(fileResultFileNotFound)
		}

		seq, data, done, err := dl.NextChunk()
		if err != nil {
			_ = dl.Close()
			return fail(fileResultInternalErr)
		}
		sess.download = dl
		sess.downloadTrans = transID
		sess.downloadSeq = seq
		if done {
			_ = dl.Close()
			sess.download = nil
		}

		return MsgFileDownloadReply, map[string]any{
			"trans_id": transID, "result": uint32(fileResultSuccess), "reader_id": uint32(1),
			"file_size": uint32(dl.TotalSize()), "data_len": uint32(len(data)), "file_data": data,
		}, true, nil
	}
}

func handleDownloadChunkAck(sess *Session) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		if sess.download == nil {
			return 0, nil, false, nil
		}
		if err := sess.download.Ack(sess.downloadSeq); err != nil {
			return 0, nil, false, err
		}
		seq, data, done, err := sess.download.NextChunk()
		if err != nil {
			return 0, nil, false, err
		}
		size := uint32(sess.download.TotalSize())
		if done {
			_ = sess.download.Close()
			sess.download = nil
			return 0, nil, false, nil
		}
		sess.downloadSeq = seq

		return MsgFileDownloadReply, map[string]any{
			"trans_id": sess.downloadTrans, "result": uint32(fileResultSuccess), "reader_id": uint32(1),
			"file_size": size, "data_len": uint32(len(data)), "file_data": data,
		}, true, nil
	}
}

// parseManifestName resolves a client-supplied manifest name to the
// (Flavor, Category) pair it asks for. spec.md §4.G names the four
// flavors and five categories but never specifies how the client's
// single manifest-name string selects between them (an Open Question,
// resolved here): "64"/"x64" selects the 64-bit flavor, a leading "thin"
// or an "extern" anywhere selects the external variant, and a trailing category word
// ("dat"/"sdl"/"avi"/"sfx") selects that category; anything else falls
// back to the ia32/internal flavor and the combined "All" category,
// matching the real client's default full-install manifest request.
func parseManifestName(name string) (manifest.Flavor, manifest.Category) {
	lower := strings.ToLower(name)

	flavor := manifest.FlavorWindowsIA32Internal
	switch {
	case strings.Contains(lower, "x64") || strings.Contains(lower, "64"):
		if strings.Contains(lower, "extern") || strings.HasPrefix(lower, "thin") {
			flavor = manifest.FlavorWindowsX64External
		} else {
			flavor = manifest.FlavorWindowsX64Internal
		}
	case strings.Contains(lower, "extern") || strings.HasPrefix(lower, "thin"):
		flavor = manifest.FlavorWindowsIA32External
	}

	category := manifest.CategoryAll
	switch {
	case strings.Contains(lower, "sdl"):
		category = manifest.CategorySDL
	case strings.Contains(lower, "avi") || strings.Contains(lower, "video"):
		category = manifest.CategoryAVI
	case strings.Contains(lower, "sfx") || strings.Contains(lower, "sound") || strings.Contains(lower, "audio"):
		category = manifest.CategorySFX
	case strings.Contains(lower, "dat"):
		category = manifest.CategoryDat
	}
	return flavor, category
}

// decodeFixedUTF16 decodes a fixed-width little-endian UTF-16 buffer
// (original_source's read_fixed_utf16! macro), truncating at the first
// null code unit.
func decodeFixedUTF16(buf []byte) string {
	units := make([]uint16, len(buf)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(buf[i*2:])
	}
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units))
}
