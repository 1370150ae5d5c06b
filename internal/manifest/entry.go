// Package manifest implements the file manifest engine (spec.md §4.G):
// a directory scan that gzip-compresses and hashes every recognized
// content file, a staleness-keyed on-disk cache of the compressed
// blobs, per-flavor/per-category manifest assembly, and the chunked,
// ACK-gated download that serves both to File-channel clients.
//
// Grounded on original_source/src/file_srv/manifest.rs's FileInfo/
// Manifest shape, re-expressed with spec.md's SHA-1 (rather than the
// original's MD5) hashing and its explicit on-disk cache-file layout.
package manifest

import (
	"crypto/sha1"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Flags mirror the original client-visible per-file bits (spec.md
// §3.6/§4.G); only Compressed and Deleted are set by this engine today,
// but the others are kept so a future audio/redist pipeline can set
// them without changing the wire shape.
type Flags uint32

const (
	FlagOggSplitChannels  Flags = 1 << 0
	FlagOggStreamCompressed Flags = 1 << 1
	FlagOggStereo         Flags = 1 << 2
	FlagCompressedGz      Flags = 1 << 3
	FlagRedistUpdate      Flags = 1 << 4
	FlagDeleted           Flags = 1 << 21
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// Entry is one manifest cache record (spec.md §3.6): a source file's
// staleness key, its uncompressed and compressed hash/size, the path
// clients download it from, and its flags.
type Entry struct {
	ClientPath   string
	DownloadPath string
	SourceHash   [sha1.Size]byte
	DownloadHash [sha1.Size]byte
	SourceSize   uint32
	DownloadSize uint32
	Flags        Flags

	// staleness key, not emitted to clients
	modTime int64
	size    int64
}

func (e *Entry) IsCompressed() bool { return e.Flags.has(FlagCompressedGz) }
func (e *Entry) IsDeleted() bool    { return e.Flags.has(FlagDeleted) }

// staleAgainst reports whether info's (mtime, size) differs from the
// staleness key this entry was last built from (spec.md §3.6
// "Staleness key: (mtime, size) of the source file").
func (e *Entry) staleAgainst(info os.FileInfo) bool {
	return e.modTime != info.ModTime().UnixNano() || e.size != info.Size()
}

// sha1File hashes path's full contents.
func sha1File(path string) ([sha1.Size]byte, error) {
	var out [sha1.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, err
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// toDownloadPath mirrors the client's expected backslash separators
// (spec.md §4.G manifest format is consumed by a Windows client).
func toDownloadPath(relPath string) string {
	return strings.ReplaceAll(relPath, string(filepath.Separator), "\\")
}
