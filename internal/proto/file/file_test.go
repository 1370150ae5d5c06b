package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/zrax/moulars/internal/manifest"
	"github.com/zrax/moulars/internal/proto"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestManager(t *testing.T) (*manifest.Manager, string) {
	t.Helper()
	root := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	m, err := manifest.NewManager(root, cacheDir, 16, 42)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, root
}

// encodeFixedUTF16 builds the fixed-width buffer decodeFixedUTF16 reads.
func encodeFixedUTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, fixedPathWidth)
	for i, u := range units {
		buf[i*2] = byte(u)
		buf[i*2+1] = byte(u >> 8)
	}
	return buf
}

func call(t *testing.T, d proto.Dispatch, id uint16, values map[string]any) (uint16, map[string]any) {
	t.Helper()
	h, ok := d[id]
	if !ok {
		t.Fatalf("no handler registered for id %d", id)
	}
	replyID, replyValues, hasReply, err := h(&proto.Message{ID: id, Values: values})
	if err != nil {
		t.Fatalf("handler for id %d returned error: %v", id, err)
	}
	if !hasReply {
		t.Fatalf("handler for id %d returned no reply", id)
	}
	return replyID, replyValues
}

func TestHandlePing(t *testing.T) {
	m, _ := newTestManager(t)
	d := NewDispatch(NewSession(), Deps{Manifest: m})

	replyID, values := call(t, d, MsgPingRequest, map[string]any{"ping_time": uint32(12345)})
	if replyID != MsgPingReply {
		t.Fatalf("got reply id %d, want %d", replyID, MsgPingReply)
	}
	if values["ping_time"] != uint32(12345) {
		t.Fatalf("got ping_time %v, want 12345", values["ping_time"])
	}
}

func TestHandleBuildIdRequest(t *testing.T) {
	m, _ := newTestManager(t)
	d := NewDispatch(NewSession(), Deps{Manifest: m})

	_, values := call(t, d, MsgBuildIdRequest, map[string]any{"trans_id": uint32(7)})
	if values["result"] != uint32(fileResultSuccess) {
		t.Fatalf("got result %v, want success", values["result"])
	}
	if values["build_id"] != uint32(42) {
		t.Fatalf("got build_id %v, want 42", values["build_id"])
	}
	if values["trans_id"] != uint32(7) {
		t.Fatalf("got trans_id %v, want 7", values["trans_id"])
	}
}

func TestHandleManifestRequest(t *testing.T) {
	m, root := newTestManager(t)
	writeFile(t, filepath.Join(root, "dat", "GlobalAnimations.age"), strings.Repeat("a", 4096))
	writeFile(t, filepath.Join(root, "sdl", "Garden.sdl"), "sdl-blob")
	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	d := NewDispatch(NewSession(), Deps{Manifest: m})

	_, values := call(t, d, MsgManifestRequest, map[string]any{
		"trans_id":      uint32(1),
		"manifest_name": encodeFixedUTF16("DataFile.dat"),
		"build_id":      uint32(42),
	})
	if values["result"] != uint32(fileResultSuccess) {
		t.Fatalf("got result %v, want success", values["result"])
	}
	manifestLen, ok := values["manifest_len"].(uint32)
	if !ok || manifestLen == 0 {
		t.Fatalf("got manifest_len %v, want non-zero", values["manifest_len"])
	}
	if len(values["manifest"].([]byte)) != int(manifestLen) {
		t.Fatalf("manifest bytes length %d does not match manifest_len %d", len(values["manifest"].([]byte)), manifestLen)
	}
}

func TestHandleManifestRequestUnknownFlavor(t *testing.T) {
	// An unrecognized name falls back to the ia32/internal "All"
	// manifest (see TestParseManifestName); nothing has been built yet,
	// so that flavor is unknown to the manager.
	m, _ := newTestManager(t)
	d := NewDispatch(NewSession(), Deps{Manifest: m})

	_, values := call(t, d, MsgManifestRequest, map[string]any{
		"trans_id":      uint32(2),
		"manifest_name": encodeFixedUTF16("NotARealManifest"),
		"build_id":      uint32(42),
	})
	if values["result"] != uint32(fileResultFileNotFound) {
		t.Fatalf("got result %v, want file not found", values["result"])
	}
	if values["manifest_len"] != uint32(0) {
		t.Fatalf("got manifest_len %v, want 0", values["manifest_len"])
	}
}

func TestHandleDownloadRequestChunkedRoundTrip(t *testing.T) {
	m, root := newTestManager(t)
	content := strings.Repeat("x", 128*1024+17)
	writeFile(t, filepath.Join(root, "dat", "Big.age"), content)
	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	d := NewDispatch(NewSession(), Deps{Manifest: m})

	_, first := call(t, d, MsgDownloadRequest, map[string]any{
		"trans_id": uint32(3),
		"filename": encodeFixedUTF16(`dat\Big.age`),
		"build_id": uint32(42),
	})
	if first["result"] != uint32(fileResultSuccess) {
		t.Fatalf("got result %v, want success", first["result"])
	}
	totalSize, ok := first["file_size"].(uint32)
	if !ok || totalSize == 0 {
		t.Fatalf("got file_size %v, want non-zero", first["file_size"])
	}

	got := append([]byte{}, first["file_data"].([]byte)...)
	for uint32(len(got)) < totalSize {
		replyID, next := call(t, d, MsgDownloadChunkAck, map[string]any{
			"trans_id": uint32(3), "reader_id": uint32(1),
		})
		if replyID != MsgFileDownloadReply {
			t.Fatalf("got reply id %d, want %d", replyID, MsgFileDownloadReply)
		}
		got = append(got, next["file_data"].([]byte)...)
	}
	if uint32(len(got)) != totalSize {
		t.Fatalf("got %d total bytes, want %d", len(got), totalSize)
	}
}

func TestHandleDownloadRequestMissingFile(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	d := NewDispatch(NewSession(), Deps{Manifest: m})

	_, values := call(t, d, MsgDownloadRequest, map[string]any{
		"trans_id": uint32(4),
		"filename": encodeFixedUTF16(`dat\NoSuchFile.age`),
		"build_id": uint32(42),
	})
	if values["result"] != uint32(fileResultFileNotFound) {
		t.Fatalf("got result %v, want file not found", values["result"])
	}
	if values["file_size"] != uint32(0) {
		t.Fatalf("got file_size %v, want 0", values["file_size"])
	}
}

func TestHandleManifestEntryAckIsNoOp(t *testing.T) {
	m, _ := newTestManager(t)
	d := NewDispatch(NewSession(), Deps{Manifest: m})

	h, ok := d[MsgManifestEntryAck]
	if !ok {
		t.Fatal("no handler registered for MsgManifestEntryAck")
	}
	_, _, hasReply, err := h(&proto.Message{ID: MsgManifestEntryAck, Values: map[string]any{
		"trans_id": uint32(1), "reader_id": uint32(1),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasReply {
		t.Fatal("expected no reply for ManifestEntryAck")
	}
}

func TestParseManifestName(t *testing.T) {
	cases := []struct {
		name     string
		flavor   manifest.Flavor
		category manifest.Category
	}{
		{"DataFile.dat", manifest.FlavorWindowsIA32Internal, manifest.CategoryDat},
		{"SDLFile.sdl", manifest.FlavorWindowsIA32Internal, manifest.CategorySDL},
		{"AVIFile.avi", manifest.FlavorWindowsIA32Internal, manifest.CategoryAVI},
		{"SoundFile.sfx", manifest.FlavorWindowsIA32Internal, manifest.CategorySFX},
		{"Thin64Dat", manifest.FlavorWindowsX64External, manifest.CategoryDat},
		{"ExternalManifest", manifest.FlavorWindowsIA32External, manifest.CategoryAll},
		{"EverythingManifest", manifest.FlavorWindowsIA32Internal, manifest.CategoryAll},
	}
	for _, c := range cases {
		flavor, category := parseManifestName(c.name)
		if flavor != c.flavor || category != c.category {
			t.Errorf("parseManifestName(%q) = (%v, %v), want (%v, %v)", c.name, flavor, category, c.flavor, c.category)
		}
	}
}
