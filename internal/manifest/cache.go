package manifest

import (
	"compress/gzip"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"

	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/moulerr"
)

var log = logctx.Logger("manifest")

// Cache owns the on-disk gzip blob store under cacheDir, named
// <compressed_hash>.gz (spec.md §4.G), plus a bounded in-memory hot set
// of recently-served blob sizes so repeat download starts skip a stat.
// Grounded on the teacher's node/asset/lru.go use of
// hashicorp/golang-lru for a bounded blob hot set.
type Cache struct {
	dir string
	hot *lru.Cache
}

// NewCache opens (creating if necessary) the gzip blob cache directory.
func NewCache(dir string, entries int) (*Cache, error) {
	if entries <= 0 {
		entries = 256
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, moulerr.New(moulerr.IO, "manifest.NewCache", err)
	}
	hot, err := lru.New(entries)
	if err != nil {
		return nil, moulerr.New(moulerr.IO, "manifest.NewCache", err)
	}
	return &Cache{dir: dir, hot: hot}, nil
}

// BlobPath returns the path a compressed hash is stored at.
func (c *Cache) BlobPath(compressedHash [sha1.Size]byte) string {
	return filepath.Join(c.dir, fmt.Sprintf("%x.gz", compressedHash))
}

// BlobSize returns a cached blob's size, consulting the hot set before
// falling back to stat.
func (c *Cache) BlobSize(compressedHash [sha1.Size]byte) (int64, error) {
	key := compressedHash
	if v, ok := c.hot.Get(key); ok {
		return v.(int64), nil
	}
	info, err := os.Stat(c.BlobPath(compressedHash))
	if err != nil {
		return 0, moulerr.New(moulerr.NotFound, "manifest.BlobSize", err)
	}
	c.hot.Add(key, info.Size())
	return info.Size(), nil
}

// compressAndStore gzips srcPath into the cache under a temp name, then
// atomically renames it to its compressed-hash-named final path (spec.md
// §4.G "gzip into a temp file, SHA-1 both streams, atomically rename").
// It returns the source and compressed hashes/sizes.
func (c *Cache) compressAndStore(srcPath string) (srcHash, dstHash [sha1.Size]byte, srcSize, dstSize int64, err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return srcHash, dstHash, 0, 0, moulerr.New(moulerr.IO, "manifest.compressAndStore", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(c.dir, "build-*.gz.tmp")
	if err != nil {
		return srcHash, dstHash, 0, 0, moulerr.New(moulerr.IO, "manifest.compressAndStore", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed away

	gz := gzip.NewWriter(tmp)
	srcDigest := sha1.New()
	n, err := io.Copy(io.MultiWriter(gz, srcDigest), src)
	if err != nil {
		tmp.Close()
		return srcHash, dstHash, 0, 0, moulerr.New(moulerr.IO, "manifest.compressAndStore", err)
	}
	if err := gz.Close(); err != nil {
		tmp.Close()
		return srcHash, dstHash, 0, 0, moulerr.New(moulerr.IO, "manifest.compressAndStore", err)
	}
	if err := tmp.Close(); err != nil {
		return srcHash, dstHash, 0, 0, moulerr.New(moulerr.IO, "manifest.compressAndStore", err)
	}

	copy(srcHash[:], srcDigest.Sum(nil))
	dstHash, dstSize, err = sha1SizeOf(tmpPath)
	if err != nil {
		return srcHash, dstHash, 0, 0, err
	}

	finalPath := c.BlobPath(dstHash)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return srcHash, dstHash, 0, 0, moulerr.New(moulerr.IO, "manifest.compressAndStore", err)
	}
	c.hot.Add(dstHash, dstSize)
	return srcHash, dstHash, n, dstSize, nil
}

func sha1SizeOf(path string) ([sha1.Size]byte, int64, error) {
	var out [sha1.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return out, 0, moulerr.New(moulerr.IO, "manifest.sha1SizeOf", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return out, 0, moulerr.New(moulerr.IO, "manifest.sha1SizeOf", err)
	}
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, 0, moulerr.New(moulerr.IO, "manifest.sha1SizeOf", err)
	}
	copy(out[:], h.Sum(nil))
	return out, info.Size(), nil
}
