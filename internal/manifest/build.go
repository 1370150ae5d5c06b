package manifest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zrax/moulars/internal/moulerr"
)

// Flavor names one of the four client variants a manifest can target
// (spec.md §4.G). A data file not rooted under one of the flavor/arch
// marker directories below is common to every flavor.
type Flavor string

const (
	FlavorWindowsIA32Internal Flavor = "windows_ia32/internal"
	FlavorWindowsIA32External Flavor = "windows_ia32/external"
	FlavorWindowsX64Internal  Flavor = "windows_x64/internal"
	FlavorWindowsX64External  Flavor = "windows_x64/external"
)

var AllFlavors = []Flavor{
	FlavorWindowsIA32Internal, FlavorWindowsIA32External,
	FlavorWindowsX64Internal, FlavorWindowsX64External,
}

// Category names one of the per-data-type manifests spec.md §4.G asks
// for, plus the combined "All" manifest.
type Category string

const (
	CategoryDat Category = "dat"
	CategorySDL Category = "sdl"
	CategoryAVI Category = "avi"
	CategorySFX Category = "sfx"
	CategoryAll Category = "All"
)

var dataCategories = []Category{CategoryDat, CategorySDL, CategoryAVI, CategorySFX}

func categoryFor(ext string) (Category, bool) {
	switch strings.ToLower(ext) {
	case ".age", ".fni", ".csv", ".dat":
		return CategoryDat, true
	case ".sdl":
		return CategorySDL, true
	case ".avi", ".webm":
		return CategoryAVI, true
	case ".ogg", ".wav":
		return CategorySFX, true
	default:
		return "", false
	}
}

// matchesFlavor reports whether relPath applies to flavor: files under
// an arch-specific directory ("ia32"/"x64") only apply to that arch,
// and likewise for an "internal"/"external" directory component; a
// path with neither marker is common to all four flavors.
func matchesFlavor(relPath string, flavor Flavor) bool {
	parts := strings.Split(string(flavor), "/")
	arch, variant := parts[0], parts[1] // e.g. "windows_ia32", "internal"
	archMarker := strings.TrimPrefix(arch, "windows_")

	segs := strings.FieldsFunc(relPath, func(r rune) bool { return r == '/' || r == '\\' })
	for _, seg := range segs {
		switch strings.ToLower(seg) {
		case "ia32":
			if archMarker != "ia32" {
				return false
			}
		case "x64":
			if archMarker != "x64" {
				return false
			}
		case "internal":
			if variant != "internal" {
				return false
			}
		case "external":
			if variant != "external" {
				return false
			}
		}
	}
	return true
}

// Manifest is one built (flavor, category) manifest (spec.md §4.G).
type Manifest struct {
	Flavor   Flavor
	Category Category
	Entries  []*Entry
}

// Builder walks a data root, maintaining one Entry per recognized file
// keyed by its manifest-relative client path, reusing cached compressed
// blobs when the source file's staleness key has not changed (spec.md
// §4.G "Build algorithm").
type Builder struct {
	dataRoot string
	cache    *Cache

	mu      sync.Mutex
	entries map[string]*Entry // keyed by clientPath
}

func NewBuilder(dataRoot string, cache *Cache) *Builder {
	return &Builder{dataRoot: dataRoot, cache: cache, entries: make(map[string]*Entry)}
}

// Scan walks dataRoot, updating or creating an Entry for every
// recognized file and marking any previously-seen file that no longer
// exists as deleted (spec.md §3.6 "destroyed only by explicit unlink" —
// the manifest analog is the DELETED flag, not removal from the cache,
// so stale client caches still resolve the record).
func (b *Builder) Scan() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]bool, len(b.entries))
	err := filepath.Walk(b.dataRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if _, ok := categoryFor(filepath.Ext(path)); !ok {
			return nil
		}
		relPath, err := filepath.Rel(b.dataRoot, path)
		if err != nil {
			return err
		}
		clientPath := toDownloadPath(relPath)
		seen[clientPath] = true
		if err := b.updateEntry(clientPath, path, info); err != nil {
			log.Warnw("manifest: failed to update entry", "path", path, "err", err)
		}
		return nil
	})
	if err != nil {
		return moulerr.New(moulerr.IO, "manifest.Scan", err)
	}

	for clientPath, e := range b.entries {
		if !seen[clientPath] && !e.IsDeleted() {
			e.Flags = FlagDeleted
			e.SourceHash, e.DownloadHash = [20]byte{}, [20]byte{}
			e.SourceSize, e.DownloadSize = 0, 0
		}
	}
	return nil
}

func (b *Builder) updateEntry(clientPath, srcPath string, info os.FileInfo) error {
	e, known := b.entries[clientPath]
	if known && !e.staleAgainst(info) && !e.IsDeleted() {
		return nil
	}

	srcHash, dstHash, srcSize, dstSize, err := b.cache.compressAndStore(srcPath)
	if err != nil {
		return err
	}

	flags := FlagCompressedGz
	downloadPath := toDownloadPath(clientPath) + ".gz"
	if dstSize >= int64(float64(srcSize)*0.9) {
		// Not worth the round trip; the download cache still has the
		// compressed blob, but clients fetch the plain source instead
		// (spec.md §4.G "gzip into a temp file" is attempted
		// unconditionally; the 10% rule is the original's own, carried
		// forward as a cache/bandwidth tradeoff).
		flags = 0
		downloadPath = clientPath
		dstHash, dstSize = srcHash, srcSize
	}

	b.entries[clientPath] = &Entry{
		ClientPath:   clientPath,
		DownloadPath: downloadPath,
		SourceHash:   srcHash,
		DownloadHash: dstHash,
		SourceSize:   uint32(srcSize),
		DownloadSize: uint32(dstSize),
		Flags:        flags,
		modTime:      info.ModTime().UnixNano(),
		size:         info.Size(),
	}
	return nil
}

// Entry looks up the current Entry for a manifest-relative client path,
// as served in a download request (spec.md §4.G "Download").
func (b *Builder) Entry(clientPath string) (*Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[clientPath]
	return e, ok
}

// TotalDownloadBytes sums the on-wire size of every non-deleted entry,
// for the build-summary log line Rebuild emits.
func (b *Builder) TotalDownloadBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total int64
	for _, e := range b.entries {
		if e.IsDeleted() {
			continue
		}
		total += int64(e.DownloadSize)
	}
	return total
}

// Build assembles the per-category manifests (plus the combined "All")
// for one flavor from the current entry set (spec.md §4.G).
func (b *Builder) Build(flavor Flavor) map[Category]*Manifest {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[Category]*Manifest, len(dataCategories)+1)
	for _, cat := range dataCategories {
		out[cat] = &Manifest{Flavor: flavor, Category: cat}
	}
	all := &Manifest{Flavor: flavor, Category: CategoryAll}
	out[CategoryAll] = all

	for clientPath, e := range b.entries {
		if !matchesFlavor(clientPath, flavor) {
			continue
		}
		cat, ok := categoryFor(filepath.Ext(clientPath))
		if !ok {
			continue
		}
		out[cat].Entries = append(out[cat].Entries, e)
		all.Entries = append(all.Entries, e)
	}
	return out
}

// CompilePak compiles every Python/*.py file under dataRoot into a
// single RC4-encrypted .pak using an external interpreter (spec.md
// §4.G, §9 design note). It is a no-op when interpreterPath is empty.
func CompilePak(interpreterPath, dataRoot, outPath string) error {
	if interpreterPath == "" {
		log.Infow("manifest: no python interpreter configured, skipping .pak compile")
		return nil
	}
	pySrc := filepath.Join(dataRoot, "Python")
	if _, err := os.Stat(pySrc); os.IsNotExist(err) {
		log.Infow("manifest: no Python/ directory present, skipping .pak compile")
		return nil
	}

	cmd := exec.Command(interpreterPath, "-m", "compileall", "-q", pySrc)
	if err := cmd.Run(); err != nil {
		return moulerr.New(moulerr.IO, "manifest.CompilePak: compileall", err)
	}

	// The compiled .pyc tree is packed by packPak (pak.go) so the RC4
	// keying stays in this module rather than shelling out twice.
	return packPak(pySrc, outPath)
}
