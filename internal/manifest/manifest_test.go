package manifest

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
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

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	m, err := NewManager(root, cacheDir, 16, 42)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, root
}

func TestBuildRecognizesCategoriesAndCompresses(t *testing.T) {
	m, root := newTestManager(t)
	writeFile(t, filepath.Join(root, "dat", "GlobalAnimations.age"), strings.Repeat("a", 4096))
	writeFile(t, filepath.Join(root, "sdl", "Garden.sdl"), "sdl-blob")
	writeFile(t, filepath.Join(root, "readme.txt"), "not tracked")

	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	b, err := m.ManifestBytes(FlavorWindowsIA32Internal, "dat")
	if err != nil {
		t.Fatalf("ManifestBytes dat: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("expected non-empty dat manifest")
	}

	allBytes, err := m.ManifestBytes(FlavorWindowsIA32Internal, "All")
	if err != nil {
		t.Fatalf("ManifestBytes All: %v", err)
	}
	if len(allBytes) == 0 {
		t.Fatal("expected non-empty All manifest")
	}
}

func TestBuildMarksMissingFilesDeleted(t *testing.T) {
	m, root := newTestManager(t)
	path := filepath.Join(root, "dat", "Temp.age")
	writeFile(t, path, "temporary")

	if err := m.Rebuild(); err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
	e, ok := m.builder.Entry("dat\\Temp.age")
	if !ok || e.IsDeleted() {
		t.Fatalf("expected a live entry after first scan, got %+v ok=%v", e, ok)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.Rebuild(); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	e, ok = m.builder.Entry("dat\\Temp.age")
	if !ok || !e.IsDeleted() {
		t.Fatalf("expected entry to be marked deleted after removal, got %+v ok=%v", e, ok)
	}
}

func TestFlavorFilteringExcludesOtherArchAndVariant(t *testing.T) {
	m, root := newTestManager(t)
	writeFile(t, filepath.Join(root, "dat", "common.age"), "common")
	writeFile(t, filepath.Join(root, "x64", "internal", "dat", "only_x64_internal.age"), "x64-internal")

	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	ia32Bytes, err := m.ManifestBytes(FlavorWindowsIA32Internal, "dat")
	if err != nil {
		t.Fatalf("ManifestBytes: %v", err)
	}
	if strings.Contains(decodeUTF16(ia32Bytes), "only_x64_internal") {
		t.Fatal("windows_ia32/internal manifest should not include an x64-only file")
	}

	x64Bytes, err := m.ManifestBytes(FlavorWindowsX64Internal, "dat")
	if err != nil {
		t.Fatalf("ManifestBytes: %v", err)
	}
	decoded := decodeUTF16(x64Bytes)
	if !strings.Contains(decoded, "only_x64_internal") {
		t.Fatal("windows_x64/internal manifest should include the x64-only file")
	}
	if !strings.Contains(decoded, "common") {
		t.Fatal("windows_x64/internal manifest should still include the common file")
	}
}

func TestChunkedDownloadRequiresAckBeforeNextChunk(t *testing.T) {
	m, root := newTestManager(t)
	// Random bytes do not compress, so the entry is served uncompressed
	// and its download is exactly ChunkSize+10 bytes long.
	raw := make([]byte, ChunkSize+10)
	rand.New(rand.NewSource(1)).Read(raw)
	content := string(raw)
	writeFile(t, filepath.Join(root, "dat", "Big.age"), content)

	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	dl, err := m.OpenFileDownload("dat\\Big.age", nil)
	if err != nil {
		t.Fatalf("OpenFileDownload: %v", err)
	}
	defer dl.Close()

	seq0, chunk0, done, err := dl.NextChunk()
	if err != nil || done {
		t.Fatalf("NextChunk: err=%v done=%v", err, done)
	}
	if len(chunk0) != ChunkSize {
		t.Fatalf("first chunk len = %d, want %d", len(chunk0), ChunkSize)
	}

	if _, _, _, err := dl.NextChunk(); err == nil {
		t.Fatal("expected Busy before ACK(0)")
	}

	if err := dl.Ack(seq0); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	seq1, chunk1, done, err := dl.NextChunk()
	if err != nil || done {
		t.Fatalf("NextChunk after ack: err=%v done=%v", err, done)
	}
	if seq1 != seq0+1 {
		t.Fatalf("seq1 = %d, want %d", seq1, seq0+1)
	}
	if len(chunk1) != 10 {
		t.Fatalf("second chunk len = %d, want 10", len(chunk1))
	}
	if err := dl.Ack(seq1); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	_, _, done, err = dl.NextChunk()
	if err != nil || !done {
		t.Fatalf("expected done=true at EOF, got done=%v err=%v", done, err)
	}
}

func TestDownloadTimeoutFiresWhenUnacked(t *testing.T) {
	m, root := newTestManager(t)
	writeFile(t, filepath.Join(root, "dat", "Small.age"), "hello")
	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	timedOut := make(chan struct{}, 1)
	dl, err := m.OpenFileDownload("dat\\Small.age", func() { timedOut <- struct{}{} })
	if err != nil {
		t.Fatalf("OpenFileDownload: %v", err)
	}
	defer dl.Close()

	// UnackedTimeout is a 30s const, too slow to wait out here; this only
	// confirms a prompt ACK does not spuriously fire the callback.
	seq, _, _, err := dl.NextChunk()
	if err != nil {
		t.Fatalf("NextChunk: %v", err)
	}
	if err := dl.Ack(seq); err != nil {
		t.Fatalf("Ack: %v", err)
	}
	select {
	case <-timedOut:
		t.Fatal("timeout fired despite prompt ACK")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCheckBuildID(t *testing.T) {
	m, _ := newTestManager(t)
	if !m.CheckBuildID(42) {
		t.Fatal("expected matching build id to pass")
	}
	if m.CheckBuildID(43) {
		t.Fatal("expected mismatched build id to fail")
	}
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[i*2]) | uint16(b[i*2+1])<<8
	}
	runes := make([]rune, 0, len(units))
	for _, u := range units {
		if u == 0 {
			runes = append(runes, ' ')
			continue
		}
		runes = append(runes, rune(u))
	}
	return string(runes)
}
